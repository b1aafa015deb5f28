package cart

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/campusbite/campusbite-backend/pkg/errors"
	"github.com/campusbite/campusbite-backend/pkg/logger"
	"github.com/campusbite/campusbite-backend/pkg/money"
)

type stubPersister struct {
	mu       sync.Mutex
	saved    map[uuid.UUID]Cart
	deleted  map[uuid.UUID]int
	loadCart *Cart
	loadErr  error
	saveErr  error
}

func newStubPersister() *stubPersister {
	return &stubPersister{saved: map[uuid.UUID]Cart{}, deleted: map[uuid.UUID]int{}}
}

func (s *stubPersister) Save(ctx context.Context, customerID uuid.UUID, cart Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[customerID] = cart
	return nil
}

func (s *stubPersister) Delete(ctx context.Context, customerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted[customerID]++
	return nil
}

func (s *stubPersister) Load(ctx context.Context, customerID uuid.UUID) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCart, s.loadErr
}

func newTestStore(t *testing.T, persister Persister) *Store {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	store, err := NewStore(persister, logg, 0)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestAddItemMergesQuantity(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, newStubPersister())
	customerID := uuid.New()
	vendorID := uuid.New()
	itemID := uuid.New()

	input := AddInput{MenuItemID: itemID, VendorID: vendorID, Name: "Jollof", UnitPrice: money.FromFloat(25)}
	if _, _, err := store.AddItem(context.Background(), customerID, input); err != nil {
		t.Fatalf("add: %v", err)
	}

	input.Quantity = 2
	cart, evicted, err := store.AddItem(context.Background(), customerID, input)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if evicted != nil {
		t.Fatalf("unexpected eviction: %v", evicted)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", cart.Items[0].Quantity)
	}
}

func TestAddItemEvictsOnVendorSwitch(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, newStubPersister())
	customerID := uuid.New()
	vendorA := uuid.New()
	vendorB := uuid.New()

	if _, _, err := store.AddItem(context.Background(), customerID, AddInput{
		MenuItemID: uuid.New(), VendorID: vendorA, Name: "Waakye", UnitPrice: money.FromFloat(18),
	}); err != nil {
		t.Fatalf("add vendor A: %v", err)
	}

	cart, evicted, err := store.AddItem(context.Background(), customerID, AddInput{
		MenuItemID: uuid.New(), VendorID: vendorB, Name: "Kelewele", UnitPrice: money.FromFloat(10),
	})
	if err != nil {
		t.Fatalf("add vendor B: %v", err)
	}
	if evicted == nil || *evicted != vendorA {
		t.Fatalf("expected eviction of vendor A, got %v", evicted)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected only the new line, got %d", len(cart.Items))
	}
	if cart.VendorID == nil || *cart.VendorID != vendorB {
		t.Fatalf("expected vendor lock on B, got %v", cart.VendorID)
	}
}

func TestAddItemValidation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, newStubPersister())

	_, _, err := store.AddItem(context.Background(), uuid.New(), AddInput{
		MenuItemID: uuid.New(), VendorID: uuid.New(), Quantity: -1,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, _, err = store.AddItem(context.Background(), uuid.New(), AddInput{
		MenuItemID: uuid.New(), VendorID: uuid.New(), UnitPrice: money.FromFloat(-1),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, newStubPersister())
	customerID := uuid.New()
	itemID := uuid.New()

	if _, _, err := store.AddItem(context.Background(), customerID, AddInput{
		MenuItemID: itemID, VendorID: uuid.New(), Name: "Banku", UnitPrice: money.FromFloat(22), Quantity: 2,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart, err := store.UpdateQuantity(context.Background(), customerID, itemID, 0)
	if err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Items))
	}
	if cart.VendorID != nil {
		t.Fatal("expected vendor lock released")
	}
}

func TestUpdateQuantityIsAbsolute(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, newStubPersister())
	customerID := uuid.New()
	itemID := uuid.New()

	if _, _, err := store.AddItem(context.Background(), customerID, AddInput{
		MenuItemID: itemID, VendorID: uuid.New(), Name: "Fufu", UnitPrice: money.FromFloat(30), Quantity: 5,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart, err := store.UpdateQuantity(context.Background(), customerID, itemID, 2)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", cart.Items[0].Quantity)
	}
}

func TestUpdateQuantityRequiresCustomerID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, newStubPersister())

	_, err := store.UpdateQuantity(context.Background(), uuid.Nil, uuid.New(), 2)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := store.carts[uuid.Nil]; ok {
		t.Fatal("no cart may be created for the nil customer id")
	}
}

func TestRemoveMissingItem(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, newStubPersister())
	_, err := store.RemoveItem(context.Background(), uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTotals(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, newStubPersister())
	customerID := uuid.New()
	vendorID := uuid.New()

	mustAdd := func(price float64, qty int) {
		t.Helper()
		if _, _, err := store.AddItem(context.Background(), customerID, AddInput{
			MenuItemID: uuid.New(), VendorID: vendorID, UnitPrice: money.FromFloat(price), Quantity: qty,
		}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	mustAdd(12.50, 2)
	mustAdd(5, 3)

	cart, err := store.Get(context.Background(), customerID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := cart.TotalItems(); got != 5 {
		t.Fatalf("expected 5 items, got %d", got)
	}
	if got := cart.TotalPrice(); got.StringFixed(2) != "40.00" {
		t.Fatalf("expected total 40.00, got %s", got.StringFixed(2))
	}
}

func TestWriteThroughAndDeleteOnEmpty(t *testing.T) {
	t.Parallel()

	persister := newStubPersister()
	store := newTestStore(t, persister)
	customerID := uuid.New()
	itemID := uuid.New()

	if _, _, err := store.AddItem(context.Background(), customerID, AddInput{
		MenuItemID: itemID, VendorID: uuid.New(), UnitPrice: money.FromFloat(9),
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	store.Wait()

	persister.mu.Lock()
	saved, ok := persister.saved[customerID]
	persister.mu.Unlock()
	if !ok || len(saved.Items) != 1 {
		t.Fatalf("expected snapshot with 1 line, got %+v", saved)
	}

	if err := store.Clear(context.Background(), customerID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	store.Wait()

	persister.mu.Lock()
	deletes := persister.deleted[customerID]
	persister.mu.Unlock()
	if deletes == 0 {
		t.Fatal("expected snapshot delete on empty cart")
	}
}

func TestPersistFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	persister := newStubPersister()
	persister.saveErr = errors.New("redis down")
	store := newTestStore(t, persister)
	customerID := uuid.New()

	cart, _, err := store.AddItem(context.Background(), customerID, AddInput{
		MenuItemID: uuid.New(), VendorID: uuid.New(), UnitPrice: money.FromFloat(7),
	})
	if err != nil {
		t.Fatalf("add should not surface persist failure: %v", err)
	}
	store.Wait()
	if len(cart.Items) != 1 {
		t.Fatalf("expected in-memory state intact, got %d lines", len(cart.Items))
	}
}

func TestRehydrationOnFirstAccess(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	vendorID := uuid.New()
	persister := newStubPersister()
	persister.loadCart = &Cart{
		CustomerID: customerID,
		VendorID:   &vendorID,
		Items:      []Item{{MenuItemID: uuid.New(), VendorID: vendorID, Quantity: 2, UnitPrice: money.FromFloat(14)}},
	}
	store := newTestStore(t, persister)

	cart, err := store.Get(context.Background(), customerID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("expected rehydrated cart, got %+v", cart)
	}
}

func TestRehydrationFailureYieldsEmptyCart(t *testing.T) {
	t.Parallel()

	persister := newStubPersister()
	persister.loadErr = errors.New("corrupt snapshot")
	store := newTestStore(t, persister)

	cart, err := store.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}
