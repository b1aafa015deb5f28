package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/campusbite/campusbite-backend/pkg/errors"
	"github.com/campusbite/campusbite-backend/pkg/logger"
	"github.com/campusbite/campusbite-backend/pkg/money"
)

// Item is one cart line. UnitPrice is the menu price observed when the line
// was added; submission re-snapshots it into the order.
type Item struct {
	MenuItemID          uuid.UUID    `json:"menu_item_id"`
	VendorID            uuid.UUID    `json:"vendor_id"`
	Name                string       `json:"name"`
	UnitPrice           money.Amount `json:"unit_price"`
	ImageURL            *string      `json:"image_url,omitempty"`
	Quantity            int          `json:"quantity"`
	SpecialInstructions *string      `json:"special_instructions,omitempty"`
}

// Cart is a customer's working cart. VendorID is the locked vendor; every
// line's vendor equals it, and an empty cart has no locked vendor.
type Cart struct {
	CustomerID uuid.UUID  `json:"customer_id"`
	VendorID   *uuid.UUID `json:"vendor_id,omitempty"`
	Items      []Item     `json:"items"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TotalPrice folds the line totals.
func (c Cart) TotalPrice() money.Amount {
	total := money.Zero()
	for _, item := range c.Items {
		total = total.Add(money.LineTotal(item.UnitPrice, item.Quantity))
	}
	return total
}

// TotalItems folds the line quantities.
func (c Cart) TotalItems() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c Cart) clone() Cart {
	out := c
	out.Items = make([]Item, len(c.Items))
	copy(out.Items, c.Items)
	if c.VendorID != nil {
		v := *c.VendorID
		out.VendorID = &v
	}
	return out
}

// Persister stores and recovers cart snapshots. The in-memory state stays
// authoritative; the snapshot only survives process restarts.
type Persister interface {
	Save(ctx context.Context, customerID uuid.UUID, cart Cart) error
	Delete(ctx context.Context, customerID uuid.UUID) error
	Load(ctx context.Context, customerID uuid.UUID) (*Cart, error)
}

// AddInput is the payload for AddItem. Quantity defaults to 1 when zero.
type AddInput struct {
	MenuItemID          uuid.UUID
	VendorID            uuid.UUID
	Name                string
	UnitPrice           money.Amount
	ImageURL            *string
	Quantity            int
	SpecialInstructions *string
}

// Store holds all in-flight carts for the process. A single mutex serializes
// mutations so the vendor-eviction check and the append are atomic.
type Store struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*Cart
	// hydrated marks customers whose redis snapshot has been consulted, so
	// a miss is not retried on every access.
	hydrated map[uuid.UUID]bool

	persister    Persister
	logg         *logger.Logger
	writeTimeout time.Duration

	// persistWG lets tests wait for async write-throughs to settle.
	persistWG sync.WaitGroup
}

// NewStore builds the cart store.
func NewStore(persister Persister, logg *logger.Logger, writeTimeout time.Duration) (*Store, error) {
	if persister == nil {
		return nil, fmt.Errorf("cart persister required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Store{
		carts:        map[uuid.UUID]*Cart{},
		hydrated:     map[uuid.UUID]bool{},
		persister:    persister,
		logg:         logg,
		writeTimeout: writeTimeout,
	}, nil
}

// AddItem appends or merges a line. When the incoming vendor differs from the
// locked vendor the existing lines are evicted first; the evicted vendor is
// returned so the caller can tell the customer what happened.
func (s *Store) AddItem(ctx context.Context, customerID uuid.UUID, input AddInput) (Cart, *uuid.UUID, error) {
	if customerID == uuid.Nil {
		return Cart{}, nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if input.MenuItemID == uuid.Nil {
		return Cart{}, nil, pkgerrors.New(pkgerrors.CodeValidation, "menu item id is required")
	}
	if input.VendorID == uuid.Nil {
		return Cart{}, nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if input.Quantity < 0 {
		return Cart{}, nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if money.IsNegative(input.UnitPrice) {
		return Cart{}, nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be non-negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartLocked(ctx, customerID)

	var evicted *uuid.UUID
	if cart.VendorID != nil && *cart.VendorID != input.VendorID {
		prev := *cart.VendorID
		evicted = &prev
		cart.Items = cart.Items[:0]
		cart.VendorID = nil
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].MenuItemID == input.MenuItemID {
			cart.Items[i].Quantity += input.Quantity
			if input.SpecialInstructions != nil {
				cart.Items[i].SpecialInstructions = input.SpecialInstructions
			}
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, Item{
			MenuItemID:          input.MenuItemID,
			VendorID:            input.VendorID,
			Name:                input.Name,
			UnitPrice:           input.UnitPrice,
			ImageURL:            input.ImageURL,
			Quantity:            input.Quantity,
			SpecialInstructions: input.SpecialInstructions,
		})
	}
	if cart.VendorID == nil {
		v := input.VendorID
		cart.VendorID = &v
	}
	cart.UpdatedAt = time.Now().UTC()

	snapshot := cart.clone()
	s.persistAsync(ctx, customerID, snapshot)
	return snapshot, evicted, nil
}

// RemoveItem drops the line for the menu item. Removing the last line
// releases the vendor lock.
func (s *Store) RemoveItem(ctx context.Context, customerID, menuItemID uuid.UUID) (Cart, error) {
	if customerID == uuid.Nil {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartLocked(ctx, customerID)

	kept := cart.Items[:0]
	removed := false
	for _, item := range cart.Items {
		if item.MenuItemID == menuItemID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return Cart{}, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	cart.Items = kept
	if len(cart.Items) == 0 {
		cart.VendorID = nil
	}
	cart.UpdatedAt = time.Now().UTC()

	snapshot := cart.clone()
	s.persistAsync(ctx, customerID, snapshot)
	return snapshot, nil
}

// UpdateQuantity sets the absolute quantity for a line; zero or less removes
// the line, matching what tapping "minus" past one does in the app.
func (s *Store) UpdateQuantity(ctx context.Context, customerID, menuItemID uuid.UUID, quantity int) (Cart, error) {
	if customerID == uuid.Nil {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if quantity <= 0 {
		return s.RemoveItem(ctx, customerID, menuItemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartLocked(ctx, customerID)

	found := false
	for i := range cart.Items {
		if cart.Items[i].MenuItemID == menuItemID {
			cart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return Cart{}, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	cart.UpdatedAt = time.Now().UTC()

	snapshot := cart.clone()
	s.persistAsync(ctx, customerID, snapshot)
	return snapshot, nil
}

// Clear empties the cart and releases the vendor lock.
func (s *Store) Clear(ctx context.Context, customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartLocked(ctx, customerID)
	cart.Items = nil
	cart.VendorID = nil
	cart.UpdatedAt = time.Now().UTC()

	s.persistAsync(ctx, customerID, cart.clone())
	return nil
}

// Get returns a copy of the customer's cart, rehydrating from the snapshot
// store on first access.
func (s *Store) Get(ctx context.Context, customerID uuid.UUID) (Cart, error) {
	if customerID == uuid.Nil {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cartLocked(ctx, customerID).clone(), nil
}

// Wait blocks until pending snapshot writes finish. Tests only.
func (s *Store) Wait() {
	s.persistWG.Wait()
}

func (s *Store) cartLocked(ctx context.Context, customerID uuid.UUID) *Cart {
	if cart, ok := s.carts[customerID]; ok {
		return cart
	}

	cart := &Cart{CustomerID: customerID}
	if !s.hydrated[customerID] {
		s.hydrated[customerID] = true
		loaded, err := s.persister.Load(ctx, customerID)
		if err != nil {
			s.logg.Warn(s.logg.WithUserID(ctx, customerID.String()), "cart snapshot unreadable, starting empty")
		} else if loaded != nil && len(loaded.Items) > 0 {
			restored := loaded.clone()
			restored.CustomerID = customerID
			cart = &restored
		}
	}
	s.carts[customerID] = cart
	return cart
}

// persistAsync writes the snapshot through to redis without blocking the
// caller. Failures are logged and never surfaced; memory stays authoritative.
func (s *Store) persistAsync(ctx context.Context, customerID uuid.UUID, snapshot Cart) {
	logCtx := s.logg.WithUserID(context.WithoutCancel(ctx), customerID.String())

	s.persistWG.Add(1)
	go func() {
		defer s.persistWG.Done()

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
		defer cancel()

		var err error
		if len(snapshot.Items) == 0 {
			err = s.persister.Delete(writeCtx, customerID)
		} else {
			err = s.persister.Save(writeCtx, customerID, snapshot)
		}
		if err != nil {
			s.logg.Error(logCtx, "cart snapshot write failed", err)
		}
	}()
}
