package composersvc

import (
	"sync"

	"github.com/google/uuid"
	"github.com/trandev/salesdesk/internal/service/models/customer"
	"github.com/trandev/salesdesk/internal/service/models/draft"
	"github.com/trandev/salesdesk/internal/service/models/variant"
)

// sessionState tracks where a composition dialog is in its lifecycle. A
// session in flight rejects further edits until the submission settles.
type sessionState string

const (
	stateEditing    sessionState = "editing"
	stateSubmitting sessionState = "submitting"
)

// session is one open composition dialog. It exclusively owns its draft; all
// access goes through the session lock.
type session struct {
	id        uuid.UUID
	mu        sync.Mutex
	state     sessionState
	draft     *draft.OrderDraft
	variants  []variant.Variant
	customers []customer.Customer
}

func newSession(variants []variant.Variant, customers []customer.Customer) *session {
	return &session{
		id:        uuid.New(),
		state:     stateEditing,
		draft:     draft.New(),
		variants:  variants,
		customers: customers,
	}
}

// variantByID resolves a variant from the catalog snapshot loaded at open
// time.
func (s *session) variantByID(id int64) (variant.Variant, bool) {
	for _, v := range s.variants {
		if v.ID == id {
			return v, true
		}
	}

	return variant.Variant{}, false
}

// Snapshot is a point-in-time copy of a session handed to the transport
// layer. Totals are derived on every call, so a snapshot is always
// consistent with its items.
type Snapshot struct {
	SessionID uuid.UUID
	State     string
	Draft     draft.OrderDraft
	Total     int64
	TotalQty  int
	Variants  []variant.Variant
	Customers []customer.Customer
}

// snapshotLocked builds a Snapshot. The session lock must be held.
func (s *session) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID: s.id,
		State:     string(s.state),
		Draft:     *s.draft.Copy(),
		Total:     s.draft.Total(),
		TotalQty:  s.draft.TotalQty(),
		Variants:  s.variants,
		Customers: s.customers,
	}
}
