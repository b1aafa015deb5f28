package cart

import (
	"github.com/google/uuid"

	cartsvc "github.com/campusbite/campusbite-backend/internal/cart"
	"github.com/campusbite/campusbite-backend/pkg/money"
)

// View is the wire shape of a cart.
type View struct {
	CustomerID      uuid.UUID      `json:"customer_id"`
	VendorID        *uuid.UUID     `json:"vendor_id,omitempty"`
	Items           []cartsvc.Item `json:"items"`
	TotalPrice      money.Amount   `json:"total_price"`
	TotalItems      int            `json:"total_items"`
	EvictedVendorID *uuid.UUID     `json:"evicted_vendor_id,omitempty"`
}

func newView(cart cartsvc.Cart, evicted *uuid.UUID) View {
	items := cart.Items
	if items == nil {
		items = []cartsvc.Item{}
	}
	return View{
		CustomerID:      cart.CustomerID,
		VendorID:        cart.VendorID,
		Items:           items,
		TotalPrice:      cart.TotalPrice(),
		TotalItems:      cart.TotalItems(),
		EvictedVendorID: evicted,
	}
}
