package draft

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/trandev/salesdesk/internal/service/models/currency"
	"github.com/trandev/salesdesk/internal/service/models/lineitem"
)

// Status is the state an order is created in. Cancellation happens after
// creation, on the backend side.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

var ErrInvalidStatus = errors.New("invalid status")

func (s Status) String() string {
	return string(s)
}

func ParseStatus(s string) (Status, error) {
	switch s {
	case StatusPending.String():
		return StatusPending, nil
	case StatusPaid.String():
		return StatusPaid, nil
	default:
		return "", ErrInvalidStatus
	}
}

var (
	// ErrLastLine is returned when removing the only remaining line.
	ErrLastLine = errors.New("an order must keep at least one line")
	// ErrLineNotFound is returned when a line identity does not exist.
	ErrLineNotFound = errors.New("line not found")
)

// ValidationError reports the first failing line of a draft.
type ValidationError struct {
	Line    int
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// OrderDraft is the in-memory, not-yet-persisted representation of an order
// being composed. It exclusively owns its line items and is discarded on
// close or successful submission.
type OrderDraft struct {
	Code       string              `json:"code"`
	CustomerID *int64              `json:"customerId"`
	Status     Status              `json:"status"`
	Note       string              `json:"note"`
	Currency   currency.Currency   `json:"currency"`
	Items      []lineitem.LineItem `json:"items"`
}

// New creates a draft with a generated code and a single blank line.
func New() *OrderDraft {
	return &OrderDraft{
		Code:     GenerateCode(),
		Status:   StatusPending,
		Currency: currency.CurrencyVND,
		Items:    []lineitem.LineItem{lineitem.New()},
	}
}

// GenerateCode builds a human-readable order code from the last eight digits
// of the current unix-millisecond timestamp.
func GenerateCode() string {
	ms := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}

	return "ORD-" + ms
}

// AddLine appends a blank line and returns it. There is no upper bound on the
// line count.
func (d *OrderDraft) AddLine() lineitem.LineItem {
	line := lineitem.New()
	d.Items = append(d.Items, line)

	return line
}

// RemoveLine removes the given line, preserving the order of the remaining
// lines. Removing the last remaining line is rejected.
func (d *OrderDraft) RemoveLine(id uuid.UUID) error {
	if len(d.Items) == 1 {
		return ErrLastLine
	}

	for i := range d.Items {
		if d.Items[i].ID == id {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)

			return nil
		}
	}

	return ErrLineNotFound
}

// Line returns a pointer into the draft for the given line identity.
func (d *OrderDraft) Line(id uuid.UUID) (*lineitem.LineItem, bool) {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return &d.Items[i], true
		}
	}

	return nil, false
}

// SetQty sets the user-entered quantity. Out-of-range values are tolerated
// here and rejected by Validate.
func (d *OrderDraft) SetQty(id uuid.UUID, qty int) error {
	line, ok := d.Line(id)
	if !ok {
		return ErrLineNotFound
	}
	line.Qty = qty

	return nil
}

// SetVariant switches a line to the given variant and snapshots its catalog
// price. The available stock is reset to zero until a lookup resolves, so an
// unresolved line fails closed.
func (d *OrderDraft) SetVariant(id uuid.UUID, variantID int64, unitPrice int64) error {
	line, ok := d.Line(id)
	if !ok {
		return ErrLineNotFound
	}
	line.VariantID = &variantID
	line.UnitPrice = unitPrice
	line.AvailableStock = 0

	return nil
}

// ApplyAvailability writes a resolved stock lookup into a line. The write is
// discarded when the line no longer exists or its variant changed while the
// lookup was in flight, so the last selection always wins.
func (d *OrderDraft) ApplyAvailability(id uuid.UUID, variantID int64, available int) bool {
	line, ok := d.Line(id)
	if !ok {
		return false
	}
	if line.VariantID == nil || *line.VariantID != variantID {
		return false
	}
	line.AvailableStock = available

	return true
}

// Total returns the sum of all line totals. It is recomputed on every call,
// never cached.
func (d *OrderDraft) Total() int64 {
	var total int64
	for _, item := range d.Items {
		total += item.LineTotal()
	}

	return total
}

// TotalQty returns the sum of all line quantities.
func (d *OrderDraft) TotalQty() int {
	var total int
	for _, item := range d.Items {
		total += item.Qty
	}

	return total
}

// Validate scans the lines in order and reports the first failure with a
// 1-indexed line number. The check is advisory; the backend performs the
// authoritative stock check at creation time.
func (d *OrderDraft) Validate() error {
	for i := range d.Items {
		item := d.Items[i]
		n := i + 1

		if item.VariantID == nil {
			return &ValidationError{
				Line:    n,
				Message: fmt.Sprintf("select a product for line %d", n),
			}
		}
		if item.Qty <= 0 {
			return &ValidationError{
				Line:    n,
				Message: fmt.Sprintf("quantity for line %d must be greater than 0", n),
			}
		}
		if item.Qty > item.AvailableStock {
			return &ValidationError{
				Line:    n,
				Message: fmt.Sprintf("line %d: only %d items in stock", n, item.AvailableStock),
			}
		}
	}

	return nil
}

// Copy returns a deep copy of the draft so a submission can work on a
// snapshot while the session stays editable.
func (d *OrderDraft) Copy() *OrderDraft {
	cp := *d
	cp.Items = make([]lineitem.LineItem, len(d.Items))
	copy(cp.Items, d.Items)

	return &cp
}
