package lineitem

import "github.com/google/uuid"

// LineItem represents one line of an order draft. UnitPrice and
// AvailableStock are derived from the catalog and inventory services whenever
// the variant changes; they are never user-editable.
type LineItem struct {
	ID             uuid.UUID `json:"id"`
	VariantID      *int64    `json:"variantId"`
	Qty            int       `json:"qty"`
	UnitPrice      int64     `json:"unitPrice"`
	AvailableStock int       `json:"availableStock"`
}

// New creates a blank line with the default quantity of one.
func New() LineItem {
	return LineItem{
		ID:  uuid.New(),
		Qty: 1,
	}
}

// LineTotal returns quantity times unit price.
func (l LineItem) LineTotal() int64 {
	return int64(l.Qty) * l.UnitPrice
}
