package converters

import (
	"github.com/google/uuid"
	"github.com/trandev/salesdesk/internal/service/models/customer"
	"github.com/trandev/salesdesk/internal/service/models/variant"
	"github.com/trandev/salesdesk/internal/service/services/composersvc"
)

// LineItemResponse represents a draft line in API responses.
type LineItemResponse struct {
	ID             uuid.UUID `json:"id"`
	ProductVariant *int64    `json:"product_variant"`
	Qty            int       `json:"qty"`
	UnitPrice      int64     `json:"unit_price"`
	AvailableStock int       `json:"available_stock"`
	LineTotal      int64     `json:"line_total"`
}

// DraftResponse represents the order draft in API responses, totals included.
type DraftResponse struct {
	Code     string             `json:"code"`
	Customer *int64             `json:"customer"`
	Status   string             `json:"status"`
	Note     string             `json:"note"`
	Currency string             `json:"currency"`
	Items    []LineItemResponse `json:"items"`
	Total    int64              `json:"total"`
	TotalQty int                `json:"total_qty"`
}

// VariantResponse represents a selectable product variant.
type VariantResponse struct {
	ID          int64  `json:"id"`
	SKU         string `json:"sku"`
	DisplayName string `json:"display_name"`
	Price       int64  `json:"price"`
}

// CustomerResponse represents a selectable customer.
type CustomerResponse struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// SessionResponse is the full view of a composition session.
type SessionResponse struct {
	SessionID uuid.UUID          `json:"session_id"`
	State     string             `json:"state"`
	Draft     DraftResponse      `json:"draft"`
	Variants  []VariantResponse  `json:"variants"`
	Customers []CustomerResponse `json:"customers"`
}

// ToSessionResponse converts a service snapshot to the API representation.
func ToSessionResponse(s composersvc.Snapshot) SessionResponse {
	items := make([]LineItemResponse, len(s.Draft.Items))
	for i, item := range s.Draft.Items {
		items[i] = LineItemResponse{
			ID:             item.ID,
			ProductVariant: item.VariantID,
			Qty:            item.Qty,
			UnitPrice:      item.UnitPrice,
			AvailableStock: item.AvailableStock,
			LineTotal:      item.LineTotal(),
		}
	}

	return SessionResponse{
		SessionID: s.SessionID,
		State:     s.State,
		Draft: DraftResponse{
			Code:     s.Draft.Code,
			Customer: s.Draft.CustomerID,
			Status:   s.Draft.Status.String(),
			Note:     s.Draft.Note,
			Currency: s.Draft.Currency.String(),
			Items:    items,
			Total:    s.Total,
			TotalQty: s.TotalQty,
		},
		Variants:  toVariantResponses(s.Variants),
		Customers: toCustomerResponses(s.Customers),
	}
}

func toVariantResponses(variants []variant.Variant) []VariantResponse {
	out := make([]VariantResponse, len(variants))
	for i, v := range variants {
		out[i] = VariantResponse{
			ID:          v.ID,
			SKU:         v.SKU,
			DisplayName: v.DisplayName(),
			Price:       v.Price,
		}
	}

	return out
}

func toCustomerResponses(customers []customer.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i, c := range customers {
		out[i] = CustomerResponse{
			ID:    c.ID,
			Label: c.Label(),
		}
	}

	return out
}
