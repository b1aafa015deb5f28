package cart

import (
	"github.com/google/uuid"

	cartsvc "github.com/campusbite/campusbite-backend/internal/cart"
	"github.com/campusbite/campusbite-backend/pkg/money"
)

// AddItemRequest mirrors the menu item card the app sends when a customer
// taps "add". The price is the one the customer saw; submission re-prices
// server-side.
type AddItemRequest struct {
	MenuItemID          uuid.UUID `json:"menu_item_id" validate:"required"`
	VendorID            uuid.UUID `json:"vendor_id" validate:"required"`
	Name                string    `json:"name" validate:"required"`
	UnitPrice           float64   `json:"unit_price" validate:"min=0"`
	ImageURL            *string   `json:"image_url,omitempty"`
	Quantity            int       `json:"quantity" validate:"min=0"`
	SpecialInstructions *string   `json:"special_instructions,omitempty"`
}

func (r AddItemRequest) toInput() cartsvc.AddInput {
	return cartsvc.AddInput{
		MenuItemID:          r.MenuItemID,
		VendorID:            r.VendorID,
		Name:                r.Name,
		UnitPrice:           money.FromFloat(r.UnitPrice),
		ImageURL:            r.ImageURL,
		Quantity:            r.Quantity,
		SpecialInstructions: r.SpecialInstructions,
	}
}

// UpdateItemRequest sets an absolute quantity; zero removes the line.
type UpdateItemRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id" validate:"required"`
	Quantity   int       `json:"quantity"`
}
