package restrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/trandev/salesdesk/internal/dal/rest"
	"github.com/trandev/salesdesk/internal/service/models/draft"
)

// genericSubmitMessage is surfaced when the backend error payload carries no
// recognizable field.
const genericSubmitMessage = "an error occurred while creating the order"

// SubmissionError is a backend rejection of an order, mapped to a single
// user-facing message.
type SubmissionError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	return e.Message
}

// itemInCreateOrderRequest carries only the variant reference and quantity.
// Unit price and stock are deliberately absent: the backend is the source of
// truth for pricing at creation time.
type itemInCreateOrderRequest struct {
	ProductVariant int64 `json:"product_variant"`
	Qty            int   `json:"qty"`
}

type createOrderRequest struct {
	Code     string                     `json:"code"`
	Customer *int64                     `json:"customer"`
	Status   string                     `json:"status"`
	Note     string                     `json:"note"`
	Items    []itemInCreateOrderRequest `json:"items"`
}

type createOrderResponse struct {
	ID int64 `json:"id"`
}

func requestFromDraft(d *draft.OrderDraft) createOrderRequest {
	items := make([]itemInCreateOrderRequest, len(d.Items))
	for i, item := range d.Items {
		var variantID int64
		if item.VariantID != nil {
			variantID = *item.VariantID
		}
		items[i] = itemInCreateOrderRequest{
			ProductVariant: variantID,
			Qty:            item.Qty,
		}
	}

	return createOrderRequest{
		Code:     d.Code,
		Customer: d.CustomerID,
		Status:   d.Status.String(),
		Note:     d.Note,
		Items:    items,
	}
}

type RestOrderRepository struct {
	client *rest.Client
}

func NewRestOrderRepository(client *rest.Client) *RestOrderRepository {
	return &RestOrderRepository{client: client}
}

// Create submits a validated draft to the order-creation endpoint and returns
// the created order id. Backend rejections come back as *SubmissionError.
func (r *RestOrderRepository) Create(ctx context.Context, d *draft.OrderDraft) (int64, error) {
	body, err := r.client.PostJSON(ctx, "/orders/", requestFromDraft(d))
	if err != nil {
		var apiErr *rest.APIError
		if errors.As(err, &apiErr) {
			return 0, mapAPIError(apiErr)
		}

		return 0, fmt.Errorf("failed to create order: %w", err)
	}

	var resp createOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("failed to decode order response: %w", err)
	}

	return resp.ID, nil
}

// mapAPIError maps a structured backend error to a single message, falling
// through detail, error, then the first field-keyed message.
func mapAPIError(apiErr *rest.APIError) *SubmissionError {
	submitErr := &SubmissionError{
		StatusCode: apiErr.StatusCode,
		Message:    genericSubmitMessage,
	}

	var payload map[string]any
	if err := json.Unmarshal(apiErr.Body, &payload); err != nil {
		return submitErr
	}

	if detail, ok := payload["detail"].(string); ok && detail != "" {
		submitErr.Message = detail

		return submitErr
	}
	if msg, ok := payload["error"].(string); ok && msg != "" {
		submitErr.Message = msg

		return submitErr
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if msg := firstMessage(payload[key]); msg != "" {
			submitErr.Message = fmt.Sprintf("%s: %s", key, msg)

			return submitErr
		}
	}

	return submitErr
}

func firstMessage(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any:
		for _, entry := range v {
			if s, ok := entry.(string); ok && s != "" {
				return s
			}
		}
	}

	return ""
}
