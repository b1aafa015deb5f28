package orders

import (
	"github.com/google/uuid"

	orderssvc "github.com/campusbite/campusbite-backend/internal/orders"
	"github.com/campusbite/campusbite-backend/pkg/enums"
	"github.com/campusbite/campusbite-backend/pkg/money"
)

// SubmitRequest is the order the app posts at checkout. Unit prices are the
// cart snapshots; the server recomputes the subtotal and total from them.
type SubmitRequest struct {
	VendorID            uuid.UUID           `json:"vendor_id" validate:"required"`
	PaymentMethod       string              `json:"payment_method" validate:"required"`
	DeliveryFee         float64             `json:"delivery_fee" validate:"min=0"`
	TaxAmount           float64             `json:"tax_amount" validate:"min=0"`
	SpecialInstructions *string             `json:"special_instructions,omitempty"`
	Items               []SubmitLineRequest `json:"items" validate:"required,min=1,dive"`
}

// SubmitLineRequest is one line of the submitted order.
type SubmitLineRequest struct {
	MenuItemID          uuid.UUID `json:"menu_item_id" validate:"required"`
	Quantity            int       `json:"quantity" validate:"required,gt=0"`
	UnitPrice           float64   `json:"unit_price" validate:"min=0"`
	SpecialInstructions *string   `json:"special_instructions,omitempty"`
}

func (r SubmitRequest) toInput(customerID uuid.UUID) orderssvc.SubmitInput {
	lines := make([]orderssvc.LineInput, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, orderssvc.LineInput{
			MenuItemID:          item.MenuItemID,
			Quantity:            item.Quantity,
			UnitPrice:           money.FromFloat(item.UnitPrice),
			SpecialInstructions: item.SpecialInstructions,
		})
	}
	return orderssvc.SubmitInput{
		CustomerID:          customerID,
		VendorID:            r.VendorID,
		PaymentMethod:       enums.PaymentMethod(r.PaymentMethod),
		DeliveryFee:         money.FromFloat(r.DeliveryFee),
		TaxAmount:           money.FromFloat(r.TaxAmount),
		SpecialInstructions: r.SpecialInstructions,
		Lines:               lines,
	}
}

// CancelRequest carries the optional cancellation reason.
type CancelRequest struct {
	Reason *string `json:"reason,omitempty"`
}
