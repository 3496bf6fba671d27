package composersvc

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/trandev/salesdesk/internal/service/models/availability"
	"github.com/trandev/salesdesk/internal/service/models/customer"
	"github.com/trandev/salesdesk/internal/service/models/draft"
	"github.com/trandev/salesdesk/internal/service/models/variant"
)

// Mock stock repository. A variant listed in blocked waits on the release
// channel before resolving, which lets tests order concurrent lookups.
type mockStockRepo struct {
	mu      sync.Mutex
	avail   map[int64]availability.Availability
	blocked map[int64]chan struct{}
	calls   []int64
}

func newMockStockRepo() *mockStockRepo {
	return &mockStockRepo{
		avail:   make(map[int64]availability.Availability),
		blocked: make(map[int64]chan struct{}),
	}
}

func (m *mockStockRepo) FetchAvailability(ctx context.Context, variantID int64) availability.Availability {
	m.mu.Lock()
	release := m.blocked[variantID]
	m.calls = append(m.calls, variantID)
	a := m.avail[variantID]
	m.mu.Unlock()

	if release != nil {
		<-release
	}

	return a
}

type mockCatalogRepo struct {
	variants []variant.Variant
	err      error
}

func (m *mockCatalogRepo) ListVariants(ctx context.Context) ([]variant.Variant, error) {
	return m.variants, m.err
}

type mockCustomerRepo struct {
	customers []customer.Customer
	err       error
}

func (m *mockCustomerRepo) ListCustomers(ctx context.Context) ([]customer.Customer, error) {
	return m.customers, m.err
}

type mockOrderRepo struct {
	mu        sync.Mutex
	submitted []*draft.OrderDraft
	orderID   int64
	err       error
}

func (m *mockOrderRepo) Create(ctx context.Context, d *draft.OrderDraft) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.submitted = append(m.submitted, d)
	if m.err != nil {
		return 0, m.err
	}

	return m.orderID, nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []OrderCreatedEvent
	err    error
}

func (m *mockPublisher) PublishOrderCreated(ev OrderCreatedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, ev)

	return m.err
}

type fixture struct {
	svc       *ComposerService
	stock     *mockStockRepo
	orders    *mockOrderRepo
	publisher *mockPublisher
}

func newFixture() *fixture {
	stock := newMockStockRepo()
	orders := &mockOrderRepo{orderID: 42}
	publisher := &mockPublisher{}

	catalog := &mockCatalogRepo{variants: []variant.Variant{
		{ID: 1, SKU: "SKU-1", ProductName: "Phone A", Price: 1000},
		{ID: 2, SKU: "SKU-2", ProductName: "Phone B", Price: 2500},
	}}
	customers := &mockCustomerRepo{customers: []customer.Customer{
		{ID: 9, Name: "Alice", Phone: "0901"},
	}}

	svc := MustNewComposerService(
		WithStockRepository(stock),
		WithCatalogRepository(catalog),
		WithCustomerRepository(customers),
		WithOrderRepository(orders),
		WithEventPublisher(publisher),
	)

	return &fixture{svc: svc, stock: stock, orders: orders, publisher: publisher}
}

func (f *fixture) open(t *testing.T) Snapshot {
	t.Helper()

	snapshot, err := f.svc.Open(context.Background())
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	return snapshot
}

func TestOpen_CreatesSessionWithListings(t *testing.T) {
	f := newFixture()

	snapshot := f.open(t)

	if len(snapshot.Draft.Items) != 1 {
		t.Errorf("expected one blank line, got %d", len(snapshot.Draft.Items))
	}
	if len(snapshot.Variants) != 2 {
		t.Errorf("expected 2 variants, got %d", len(snapshot.Variants))
	}
	if len(snapshot.Customers) != 1 {
		t.Errorf("expected 1 customer, got %d", len(snapshot.Customers))
	}
	if snapshot.State != "editing" {
		t.Errorf("expected editing state, got %s", snapshot.State)
	}
}

func TestOpen_ToleratesListingFailure(t *testing.T) {
	svc := MustNewComposerService(
		WithStockRepository(newMockStockRepo()),
		WithCatalogRepository(&mockCatalogRepo{err: errors.New("catalog down")}),
		WithCustomerRepository(&mockCustomerRepo{err: errors.New("customers down")}),
		WithOrderRepository(&mockOrderRepo{}),
	)

	snapshot, err := svc.Open(context.Background())
	if err != nil {
		t.Fatalf("expected dialog to open despite listing failures, got %v", err)
	}
	if len(snapshot.Variants) != 0 || len(snapshot.Customers) != 0 {
		t.Errorf("expected empty pickers")
	}
}

func TestSelectVariant_SetsPriceAndStock(t *testing.T) {
	f := newFixture()
	f.stock.avail[1] = availability.Availability{OnHand: 7, Reserved: 2}

	snapshot := f.open(t)
	lineID := snapshot.Draft.Items[0].ID

	if _, err := f.svc.SelectVariant(context.Background(), snapshot.SessionID, lineID, 1); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	f.svc.WaitForLookups()

	got, err := f.svc.Get(snapshot.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	line := got.Draft.Items[0]
	if line.UnitPrice != 1000 {
		t.Errorf("expected catalog price 1000, got %d", line.UnitPrice)
	}
	if line.AvailableStock != 5 {
		t.Errorf("expected available 5 (on-hand minus reserved), got %d", line.AvailableStock)
	}
}

func TestSelectVariant_UnknownVariant(t *testing.T) {
	f := newFixture()
	snapshot := f.open(t)

	_, err := f.svc.SelectVariant(context.Background(), snapshot.SessionID, snapshot.Draft.Items[0].ID, 777)
	if !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestSelectVariant_FailClosedOnLookupFailure(t *testing.T) {
	f := newFixture()
	// No availability configured: the mock resolves to the zero value, the
	// same as a failed or missing inventory record.

	snapshot := f.open(t)
	lineID := snapshot.Draft.Items[0].ID

	if _, err := f.svc.SelectVariant(context.Background(), snapshot.SessionID, lineID, 1); err != nil {
		t.Fatal(err)
	}
	f.svc.WaitForLookups()

	if _, err := f.svc.SetQty(snapshot.SessionID, lineID, 1); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.Submit(context.Background(), snapshot.SessionID)
	var validationErr *draft.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if validationErr.Message != "line 1: only 0 items in stock" {
		t.Errorf("unexpected message: %s", validationErr.Message)
	}
}

func TestSelectVariant_LastWriteWins(t *testing.T) {
	f := newFixture()
	release := make(chan struct{})
	f.stock.blocked[1] = release
	f.stock.avail[1] = availability.Availability{OnHand: 99}
	f.stock.avail[2] = availability.Availability{OnHand: 3}

	snapshot := f.open(t)
	lineID := snapshot.Draft.Items[0].ID

	// First selection hangs in the stock lookup.
	if _, err := f.svc.SelectVariant(context.Background(), snapshot.SessionID, lineID, 1); err != nil {
		t.Fatal(err)
	}

	// User changes their mind before the first lookup resolves.
	if _, err := f.svc.SelectVariant(context.Background(), snapshot.SessionID, lineID, 2); err != nil {
		t.Fatal(err)
	}

	close(release)
	f.svc.WaitForLookups()

	got, err := f.svc.Get(snapshot.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	line := got.Draft.Items[0]
	if line.AvailableStock != 3 {
		t.Errorf("expected stock of the last selected variant (3), got %d", line.AvailableStock)
	}
	if line.UnitPrice != 2500 {
		t.Errorf("expected price of the last selected variant, got %d", line.UnitPrice)
	}
}

func TestSelectVariant_RemovedLineDiscardsLookup(t *testing.T) {
	f := newFixture()
	release := make(chan struct{})
	f.stock.blocked[1] = release
	f.stock.avail[1] = availability.Availability{OnHand: 99}

	snapshot := f.open(t)

	added, err := f.svc.AddLine(snapshot.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	lineID := added.Draft.Items[1].ID

	if _, err := f.svc.SelectVariant(context.Background(), snapshot.SessionID, lineID, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.RemoveLine(snapshot.SessionID, lineID); err != nil {
		t.Fatal(err)
	}

	close(release)
	f.svc.WaitForLookups()

	got, err := f.svc.Get(snapshot.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Draft.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(got.Draft.Items))
	}
	if got.Draft.Items[0].AvailableStock != 0 {
		t.Errorf("expected stale lookup to be discarded, got stock %d", got.Draft.Items[0].AvailableStock)
	}
}

func TestRemoveLine_RefusesLastLine(t *testing.T) {
	f := newFixture()
	snapshot := f.open(t)

	_, err := f.svc.RemoveLine(snapshot.SessionID, snapshot.Draft.Items[0].ID)
	if !errors.Is(err, draft.ErrLastLine) {
		t.Errorf("expected ErrLastLine, got %v", err)
	}
}

func TestSubmit_SuccessClosesSessionAndPublishes(t *testing.T) {
	f := newFixture()
	f.stock.avail[1] = availability.Availability{OnHand: 5}

	snapshot := f.open(t)
	lineID := snapshot.Draft.Items[0].ID

	if _, err := f.svc.SelectVariant(context.Background(), snapshot.SessionID, lineID, 1); err != nil {
		t.Fatal(err)
	}
	f.svc.WaitForLookups()
	if _, err := f.svc.SetQty(snapshot.SessionID, lineID, 3); err != nil {
		t.Fatal(err)
	}

	orderID, err := f.svc.Submit(context.Background(), snapshot.SessionID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if orderID != 42 {
		t.Errorf("expected order id 42, got %d", orderID)
	}

	if _, err := f.svc.Get(snapshot.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected session to be discarded, got %v", err)
	}

	if len(f.orders.submitted) != 1 {
		t.Fatalf("expected one submission, got %d", len(f.orders.submitted))
	}
	if total := f.orders.submitted[0].Total(); total != 3000 {
		t.Errorf("expected submitted total 3000, got %d", total)
	}

	if len(f.publisher.events) != 1 {
		t.Fatalf("expected one order-created event, got %d", len(f.publisher.events))
	}
	ev := f.publisher.events[0]
	if ev.OrderID != 42 || ev.Total != 3000 || ev.ItemCount != 1 {
		t.Errorf("unexpected event payload: %+v", ev)
	}
}

func TestSubmit_ValidationFailureKeepsDraft(t *testing.T) {
	f := newFixture()
	snapshot := f.open(t)

	_, err := f.svc.Submit(context.Background(), snapshot.SessionID)
	var validationErr *draft.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if validationErr.Message != "select a product for line 1" {
		t.Errorf("unexpected message: %s", validationErr.Message)
	}

	got, err := f.svc.Get(snapshot.SessionID)
	if err != nil {
		t.Fatalf("expected session to survive, got %v", err)
	}
	if got.State != "editing" {
		t.Errorf("expected editing state, got %s", got.State)
	}
	if len(f.orders.submitted) != 0 {
		t.Errorf("expected no submission attempt, got %d", len(f.orders.submitted))
	}
}

func TestSubmit_BackendFailureKeepsDraft(t *testing.T) {
	f := newFixture()
	f.stock.avail[1] = availability.Availability{OnHand: 5}
	f.orders.err = errors.New("insufficient stock")

	snapshot := f.open(t)
	lineID := snapshot.Draft.Items[0].ID

	if _, err := f.svc.SelectVariant(context.Background(), snapshot.SessionID, lineID, 1); err != nil {
		t.Fatal(err)
	}
	f.svc.WaitForLookups()

	if _, err := f.svc.Submit(context.Background(), snapshot.SessionID); err == nil {
		t.Fatal("expected submit to fail")
	}

	got, err := f.svc.Get(snapshot.SessionID)
	if err != nil {
		t.Fatalf("expected session to survive backend failure, got %v", err)
	}
	if got.State != "editing" {
		t.Errorf("expected editing state after failure, got %s", got.State)
	}
	if got.Draft.Items[0].Qty != 1 {
		t.Errorf("expected draft content intact")
	}
	if len(f.publisher.events) != 0 {
		t.Errorf("expected no event on failure")
	}
}

func TestSubmit_PublishFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture()
	f.stock.avail[1] = availability.Availability{OnHand: 5}
	f.publisher.err = errors.New("broker down")

	snapshot := f.open(t)
	lineID := snapshot.Draft.Items[0].ID

	if _, err := f.svc.SelectVariant(context.Background(), snapshot.SessionID, lineID, 1); err != nil {
		t.Fatal(err)
	}
	f.svc.WaitForLookups()

	orderID, err := f.svc.Submit(context.Background(), snapshot.SessionID)
	if err != nil {
		t.Fatalf("expected submit to succeed despite publish failure, got %v", err)
	}
	if orderID != 42 {
		t.Errorf("expected order id 42, got %d", orderID)
	}
}

func TestUpdateOrder_Fields(t *testing.T) {
	f := newFixture()
	snapshot := f.open(t)

	code := "ORD-CUSTOM"
	customerID := int64(9)
	status := draft.StatusPaid
	note := "deliver today"

	got, err := f.svc.UpdateOrder(snapshot.SessionID, OrderUpdate{
		Code:       &code,
		CustomerID: &customerID,
		Status:     &status,
		Note:       &note,
	})
	if err != nil {
		t.Fatal(err)
	}

	if got.Draft.Code != "ORD-CUSTOM" || got.Draft.Status != draft.StatusPaid || got.Draft.Note != "deliver today" {
		t.Errorf("unexpected draft fields: %+v", got.Draft)
	}
	if got.Draft.CustomerID == nil || *got.Draft.CustomerID != 9 {
		t.Errorf("expected customer 9, got %v", got.Draft.CustomerID)
	}

	// Clearing the customer turns the order into a walk-in sale.
	got, err = f.svc.UpdateOrder(snapshot.SessionID, OrderUpdate{ClearCustomer: true})
	if err != nil {
		t.Fatal(err)
	}
	if got.Draft.CustomerID != nil {
		t.Errorf("expected walk-in sale, got customer %v", *got.Draft.CustomerID)
	}
}

func TestDiscard(t *testing.T) {
	f := newFixture()
	snapshot := f.open(t)

	if err := f.svc.Discard(snapshot.SessionID); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Discard(snapshot.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := f.svc.Get(uuid.New()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for unknown id, got %v", err)
	}
}
