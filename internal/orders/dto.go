package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/campusbite/campusbite-backend/pkg/enums"
	"github.com/campusbite/campusbite-backend/pkg/money"
)

// SubmitInput carries everything needed to place an order. Monetary fields
// other than the unit prices are fees the caller chose; the subtotal and
// grand total are always recomputed server-side.
type SubmitInput struct {
	CustomerID          uuid.UUID
	VendorID            uuid.UUID
	PaymentMethod       enums.PaymentMethod
	DeliveryFee         money.Amount
	TaxAmount           money.Amount
	SpecialInstructions *string
	Lines               []LineInput
}

// LineInput is one order line as submitted, with the unit price snapshot the
// customer saw in their cart.
type LineInput struct {
	MenuItemID          uuid.UUID
	Quantity            int
	UnitPrice           money.Amount
	SpecialInstructions *string
}

// CounterpartySummary is the slim view of the other party on an order: the
// vendor for a customer's list, the customer for a vendor's list.
type CounterpartySummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Phone    *string   `json:"phone,omitempty"`
	ImageURL *string   `json:"image_url,omitempty"`
}

// LineView is an enriched order line.
type LineView struct {
	ID                  uuid.UUID    `json:"id"`
	MenuItemID          uuid.UUID    `json:"menu_item_id"`
	Name                string       `json:"name"`
	ImageURL            *string      `json:"image_url,omitempty"`
	Quantity            int          `json:"quantity"`
	UnitPrice           money.Amount `json:"unit_price"`
	TotalPrice          money.Amount `json:"total_price"`
	SpecialInstructions *string      `json:"special_instructions,omitempty"`
}

// OrderView is the enriched order returned by the query service. Counterparty
// is nil and Lines empty when their sub-fetches degraded.
type OrderView struct {
	ID                  uuid.UUID            `json:"id"`
	OrderNumber         string               `json:"order_number"`
	CustomerID          uuid.UUID            `json:"customer_id"`
	VendorID            uuid.UUID            `json:"vendor_id"`
	Status              enums.OrderStatus    `json:"status"`
	Subtotal            money.Amount         `json:"subtotal"`
	DeliveryFee         money.Amount         `json:"delivery_fee"`
	TaxAmount           money.Amount         `json:"tax_amount"`
	TotalAmount         money.Amount         `json:"total_amount"`
	PaymentMethod       enums.PaymentMethod  `json:"payment_method"`
	SpecialInstructions *string              `json:"special_instructions,omitempty"`
	CancellationReason  *string              `json:"cancellation_reason,omitempty"`
	Counterparty        *CounterpartySummary `json:"counterparty,omitempty"`
	Lines               []LineView           `json:"lines"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// OrderList is one page of enriched orders.
type OrderList struct {
	Orders []OrderView `json:"orders"`
	Page   int         `json:"page"`
	Limit  int         `json:"limit"`
	Total  int64       `json:"total"`
}

// ListFilters narrows a list query.
type ListFilters struct {
	Status *enums.OrderStatus
}

// OrderLineRow is the joined order_items row the repository returns for
// enrichment, carrying the menu item's display fields.
type OrderLineRow struct {
	ID                  uuid.UUID
	OrderID             uuid.UUID
	MenuItemID          uuid.UUID
	MenuItemName        string
	MenuItemImageURL    *string
	Quantity            int
	UnitPrice           money.Amount
	TotalPrice          money.Amount
	SpecialInstructions *string
}
