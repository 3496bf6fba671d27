package composersvc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/trandev/salesdesk/internal/service/models/availability"
	"github.com/trandev/salesdesk/internal/service/models/customer"
	"github.com/trandev/salesdesk/internal/service/models/draft"
	"github.com/trandev/salesdesk/internal/service/models/variant"
)

var (
	ErrSessionNotFound = errors.New("composition session not found")
	ErrUnknownVariant  = errors.New("unknown product variant")
	ErrSubmitInFlight  = errors.New("a submission is already in flight")
)

// stockRepository reads live availability. Implementations fail closed: any
// lookup failure resolves to zero availability.
type stockRepository interface {
	FetchAvailability(ctx context.Context, variantID int64) availability.Availability
}

type catalogRepository interface {
	ListVariants(ctx context.Context) ([]variant.Variant, error)
}

type customerRepository interface {
	ListCustomers(ctx context.Context) ([]customer.Customer, error)
}

type orderRepository interface {
	Create(ctx context.Context, d *draft.OrderDraft) (int64, error)
}

type eventPublisher interface {
	PublishOrderCreated(ev OrderCreatedEvent) error
}

// listingCache caches the picker listings loaded at dialog open. Stock reads
// never go through it.
type listingCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GenerateKey(operation, key string) string
}

// OrderCreatedEvent notifies the dashboard that an order was created.
type OrderCreatedEvent struct {
	OrderID   int64  `json:"orderId"`
	Code      string `json:"code"`
	Total     int64  `json:"total"`
	ItemCount int    `json:"itemCount"`
}

// OrderUpdate carries the editable order-level fields of a draft. Nil fields
// are left untouched.
type OrderUpdate struct {
	Code          *string
	CustomerID    *int64
	ClearCustomer bool
	Status        *draft.Status
	Note          *string
}

// ComposerService owns the live composition sessions, one per open dialog.
type ComposerService struct {
	stockRepo     stockRepository
	catalogRepo   catalogRepository
	customerRepo  customerRepository
	orderRepo     orderRepository
	events        eventPublisher
	cache         listingCache
	cacheTTL      time.Duration
	lookupTimeout time.Duration

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session

	lookups sync.WaitGroup
}

// option is a function that configures the ComposerService.
type option func(*ComposerService)

// MustNewComposerService creates a new ComposerService.
func MustNewComposerService(opts ...option) *ComposerService {
	s := &ComposerService{
		sessions:      make(map[uuid.UUID]*session),
		cacheTTL:      time.Minute,
		lookupTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithStockRepository sets the inventory repository for the ComposerService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStockRepository(repo stockRepository) option {
	return func(s *ComposerService) {
		s.stockRepo = repo
	}
}

// WithCatalogRepository sets the variant catalog repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalogRepository(repo catalogRepository) option {
	return func(s *ComposerService) {
		s.catalogRepo = repo
	}
}

// WithCustomerRepository sets the customer repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCustomerRepository(repo customerRepository) option {
	return func(s *ComposerService) {
		s.customerRepo = repo
	}
}

// WithOrderRepository sets the order-creation repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderRepository(repo orderRepository) option {
	return func(s *ComposerService) {
		s.orderRepo = repo
	}
}

// WithEventPublisher sets the order-created event publisher. Publishing is
// best effort; a nil publisher disables it.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEventPublisher(events eventPublisher) option {
	return func(s *ComposerService) {
		s.events = events
	}
}

// WithListingCache sets the listing cache. A nil cache disables caching.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithListingCache(cache listingCache, ttl time.Duration) option {
	return func(s *ComposerService) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// Open starts a new composition session with a fresh draft and the picker
// listings. Listing failures are tolerated: the dialog opens with empty
// pickers rather than not at all.
func (s *ComposerService) Open(ctx context.Context) (Snapshot, error) {
	var variants []variant.Variant
	if err := s.cachedListing(ctx, "variants", &variants, func() (any, error) {
		return s.catalogRepo.ListVariants(ctx)
	}); err != nil {
		slog.WarnContext(ctx, "Failed to load variant catalog", "error", err)
		variants = nil
	}

	var customers []customer.Customer
	if err := s.cachedListing(ctx, "customers", &customers, func() (any, error) {
		return s.customerRepo.ListCustomers(ctx)
	}); err != nil {
		slog.WarnContext(ctx, "Failed to load customer listing", "error", err)
		customers = nil
	}

	sess := newSession(variants, customers)

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.snapshotLocked(), nil
}

// cachedListing loads a listing through the cache, falling back to the
// repository and refreshing the cache on a miss.
func (s *ComposerService) cachedListing(ctx context.Context, name string, out any, load func() (any, error)) error {
	var key string
	if s.cache != nil {
		key = s.cache.GenerateKey("listing", name)
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
			if err := json.Unmarshal([]byte(cached), out); err == nil {
				return nil
			}
		}
	}

	loaded, err := load()
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(loaded)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, string(encoded), s.cacheTTL); err != nil {
			slog.WarnContext(ctx, "Failed to refresh listing cache", "listing", name, "error", err)
		}
	}

	return nil
}

func (s *ComposerService) session(id uuid.UUID) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return sess, nil
}

// Get returns the current view of a session.
func (s *ComposerService) Get(sessionID uuid.UUID) (Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.snapshotLocked(), nil
}

// UpdateOrder applies order-level field changes to the draft.
func (s *ComposerService) UpdateOrder(sessionID uuid.UUID, upd OrderUpdate) (Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state == stateSubmitting {
		return Snapshot{}, ErrSubmitInFlight
	}

	if upd.Code != nil {
		sess.draft.Code = *upd.Code
	}
	if upd.ClearCustomer {
		sess.draft.CustomerID = nil
	} else if upd.CustomerID != nil {
		sess.draft.CustomerID = upd.CustomerID
	}
	if upd.Status != nil {
		sess.draft.Status = *upd.Status
	}
	if upd.Note != nil {
		sess.draft.Note = *upd.Note
	}

	return sess.snapshotLocked(), nil
}

// AddLine appends a blank line to the draft.
func (s *ComposerService) AddLine(sessionID uuid.UUID) (Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state == stateSubmitting {
		return Snapshot{}, ErrSubmitInFlight
	}

	sess.draft.AddLine()

	return sess.snapshotLocked(), nil
}

// RemoveLine removes a line. Removing the last remaining line is rejected
// with draft.ErrLastLine.
func (s *ComposerService) RemoveLine(sessionID, lineID uuid.UUID) (Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state == stateSubmitting {
		return Snapshot{}, ErrSubmitInFlight
	}

	if err := sess.draft.RemoveLine(lineID); err != nil {
		return Snapshot{}, err
	}

	return sess.snapshotLocked(), nil
}

// SetQty sets the quantity of a line.
func (s *ComposerService) SetQty(sessionID, lineID uuid.UUID, qty int) (Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state == stateSubmitting {
		return Snapshot{}, ErrSubmitInFlight
	}

	if err := sess.draft.SetQty(lineID, qty); err != nil {
		return Snapshot{}, err
	}

	return sess.snapshotLocked(), nil
}

// SelectVariant switches a line to the given variant, snapshots its catalog
// price, and kicks an asynchronous stock lookup. The lookup is keyed by line
// identity and target variant; a result arriving after the line changed again
// or was removed is discarded, so rapid re-selection is safe.
func (s *ComposerService) SelectVariant(ctx context.Context, sessionID, lineID uuid.UUID, variantID int64) (Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()

	if sess.state == stateSubmitting {
		sess.mu.Unlock()

		return Snapshot{}, ErrSubmitInFlight
	}

	v, ok := sess.variantByID(variantID)
	if !ok {
		sess.mu.Unlock()

		return Snapshot{}, ErrUnknownVariant
	}

	if err := sess.draft.SetVariant(lineID, variantID, v.Price); err != nil {
		sess.mu.Unlock()

		return Snapshot{}, err
	}

	snapshot := sess.snapshotLocked()
	sess.mu.Unlock()

	s.lookups.Add(1)
	go func() {
		defer s.lookups.Done()

		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.lookupTimeout)
		defer cancel()

		avail := s.stockRepo.FetchAvailability(lookupCtx, variantID)

		sess.mu.Lock()
		defer sess.mu.Unlock()

		if !sess.draft.ApplyAvailability(lineID, variantID, avail.Available()) {
			slog.DebugContext(lookupCtx, "Discarded stale stock lookup",
				"line_id", lineID, "variant_id", variantID)
		}
	}()

	return snapshot, nil
}

// Submit validates the draft and sends it to the order-creation endpoint. On
// success the session is discarded and an order-created event is published
// best effort. On any failure the draft is left intact for correction.
func (s *ComposerService) Submit(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return 0, err
	}

	sess.mu.Lock()

	if sess.state == stateSubmitting {
		sess.mu.Unlock()

		return 0, ErrSubmitInFlight
	}

	if err := sess.draft.Validate(); err != nil {
		sess.mu.Unlock()

		return 0, err
	}

	sess.state = stateSubmitting
	submitted := sess.draft.Copy()
	sess.mu.Unlock()

	orderID, err := s.orderRepo.Create(ctx, submitted)
	if err != nil {
		sess.mu.Lock()
		sess.state = stateEditing
		sess.mu.Unlock()

		return 0, err
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if s.events != nil {
		ev := OrderCreatedEvent{
			OrderID:   orderID,
			Code:      submitted.Code,
			Total:     submitted.Total(),
			ItemCount: len(submitted.Items),
		}
		if err := s.events.PublishOrderCreated(ev); err != nil {
			slog.ErrorContext(ctx, "Failed to publish order-created event",
				"order_id", orderID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Order created", "order_id", orderID, "code", submitted.Code)

	return orderID, nil
}

// Discard drops a session and its draft.
func (s *ComposerService) Discard(sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)

	return nil
}

// WaitForLookups blocks until all in-flight stock lookups have settled. Used
// on shutdown; each lookup is bounded by its own timeout.
func (s *ComposerService) WaitForLookups() {
	s.lookups.Wait()
}
