package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusbite/campusbite-backend/pkg/db/models"
	"github.com/campusbite/campusbite-backend/pkg/enums"
	pkgerrors "github.com/campusbite/campusbite-backend/pkg/errors"
	"github.com/campusbite/campusbite-backend/pkg/logger"
	"github.com/campusbite/campusbite-backend/pkg/metrics"
	"github.com/campusbite/campusbite-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Actor identifies who is acting on an order.
type Actor struct {
	UserID   uuid.UUID
	Role     enums.UserRole
	VendorID *uuid.UUID
}

// Service exposes order lifecycle operations: submission and the status
// state machine.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*OrderView, error)
	Advance(ctx context.Context, orderID uuid.UUID, actor Actor) (enums.OrderStatus, error)
	Cancel(ctx context.Context, orderID uuid.UUID, actor Actor, reason *string) error
}

type service struct {
	repo        Repository
	tx          txRunner
	vendors     VendorLoader
	numbers     NumberAllocator
	metrics     *metrics.OrderMetrics
	logg        *logger.Logger
	callTimeout time.Duration
}

// NewService builds the order lifecycle service.
func NewService(repo Repository, tx txRunner, vendors VendorLoader, numbers NumberAllocator, m *metrics.OrderMetrics, logg *logger.Logger, callTimeout time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if vendors == nil {
		return nil, fmt.Errorf("vendor loader required")
	}
	if numbers == nil {
		return nil, fmt.Errorf("number allocator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &service{
		repo:        repo,
		tx:          tx,
		vendors:     vendors,
		numbers:     numbers,
		metrics:     m,
		logg:        logg,
		callTimeout: callTimeout,
	}, nil
}

// call bounds a single data-store operation. A blown deadline surfaces as a
// retryable timeout rather than a generic dependency failure.
func (s *service) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	err := fn(callCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, op+" timed out")
	}
	return err
}

// Submit places an order. The order and its items are written sequentially;
// when the item write fails the order row is deleted again so no half-order
// is ever visible. That compensating delete can itself fail, which leaves an
// orphaned order row behind for reconciliation.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*OrderView, error) {
	if err := validateSubmit(input); err != nil {
		s.metrics.IncSubmission("validation_failed")
		return nil, err
	}

	ctx = s.logg.WithUserID(ctx, input.CustomerID.String())
	ctx = s.logg.WithVendorID(ctx, input.VendorID.String())

	vendor, err := s.loadVendor(ctx, input.VendorID)
	if err != nil {
		s.metrics.IncSubmission("vendor_check_failed")
		return nil, err
	}
	if !vendor.IsActive || !vendor.IsAcceptingOrders {
		s.metrics.IncSubmission("vendor_closed")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "vendor is not accepting orders")
	}

	subtotal := money.Zero()
	for _, line := range input.Lines {
		subtotal = subtotal.Add(money.LineTotal(line.UnitPrice, line.Quantity))
	}
	total := subtotal.Add(input.DeliveryFee).Add(input.TaxAmount)

	orderNumber, err := s.allocateNumber(ctx)
	if err != nil {
		s.metrics.IncSubmission("number_failed")
		return nil, err
	}

	order := &models.Order{
		OrderNumber:         orderNumber,
		CustomerID:          input.CustomerID,
		VendorID:            input.VendorID,
		Status:              enums.OrderStatusPending,
		Subtotal:            subtotal,
		DeliveryFee:         input.DeliveryFee,
		TaxAmount:           input.TaxAmount,
		TotalAmount:         total,
		PaymentMethod:       input.PaymentMethod,
		SpecialInstructions: input.SpecialInstructions,
	}

	err = s.call(ctx, "create order", func(ctx context.Context) error {
		_, err := s.repo.CreateOrder(ctx, order)
		return err
	})
	if err != nil {
		s.metrics.IncSubmission("order_insert_failed")
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	items := make([]models.OrderItem, 0, len(input.Lines))
	for _, line := range input.Lines {
		items = append(items, models.OrderItem{
			OrderID:             order.ID,
			MenuItemID:          line.MenuItemID,
			Quantity:            line.Quantity,
			UnitPrice:           line.UnitPrice,
			TotalPrice:          money.LineTotal(line.UnitPrice, line.Quantity),
			SpecialInstructions: line.SpecialInstructions,
		})
	}

	itemsErr := s.call(ctx, "create order items", func(ctx context.Context) error {
		return s.repo.CreateOrderItems(ctx, items)
	})
	if itemsErr != nil {
		return nil, s.compensate(ctx, order.ID, itemsErr)
	}

	s.metrics.IncSubmission("success")

	// Best-effort initial history row; the order already exists either way.
	historyErr := s.call(ctx, "insert status history", func(ctx context.Context) error {
		return s.repo.InsertStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  enums.OrderStatusPending,
			ChangedBy: input.CustomerID,
		})
	})
	if historyErr != nil {
		s.logg.Warn(ctx, "initial status history write failed")
	}

	return s.submittedView(ctx, order, items)
}

// compensate deletes the order row after a failed item insert. Both outcomes
// return a partial-failure error; the details tell the client whether the
// cleanup succeeded.
func (s *service) compensate(ctx context.Context, orderID uuid.UUID, cause error) error {
	deleteErr := s.call(ctx, "delete order", func(ctx context.Context) error {
		return s.repo.DeleteOrder(ctx, orderID)
	})
	if deleteErr != nil {
		s.logg.Error(ctx, "orphaned order: item insert and compensating delete both failed", deleteErr)
		s.metrics.IncOrphan()
		s.metrics.IncSubmission("orphaned")
		return pkgerrors.Wrap(pkgerrors.CodePartialFailure, cause, "order submission failed").
			WithDetails(map[string]any{"compensated": false, "order_id": orderID})
	}

	s.logg.Warn(ctx, "order items insert failed, order rolled back")
	s.metrics.IncSubmission("compensated")
	return pkgerrors.Wrap(pkgerrors.CodePartialFailure, cause, "order submission failed").
		WithDetails(map[string]any{"compensated": true})
}

// submittedView re-reads the durable order and enriches it for the response.
// Read failures degrade to the in-memory copy; the order was placed either way.
func (s *service) submittedView(ctx context.Context, order *models.Order, items []models.OrderItem) (*OrderView, error) {
	refreshed := order
	err := s.call(ctx, "reload order", func(ctx context.Context) error {
		found, err := s.repo.FindOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		refreshed = found
		return nil
	})
	if err != nil {
		s.logg.Warn(ctx, "reload of submitted order failed, returning local copy")
	}

	view := viewFromModel(*refreshed)

	summaries, err := s.vendors.Summaries(ctx, []uuid.UUID{order.VendorID})
	if err != nil {
		s.logg.Warn(ctx, "vendor summary fetch failed for submitted order")
	} else if summary, ok := summaries[order.VendorID]; ok {
		view.Counterparty = &summary
	}

	view.Lines = make([]LineView, 0, len(items))
	for _, item := range items {
		view.Lines = append(view.Lines, LineView{
			ID:                  item.ID,
			MenuItemID:          item.MenuItemID,
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice,
			TotalPrice:          item.TotalPrice,
			SpecialInstructions: item.SpecialInstructions,
		})
	}
	return &view, nil
}

func (s *service) loadVendor(ctx context.Context, vendorID uuid.UUID) (*models.VendorProfile, error) {
	var vendor *models.VendorProfile
	err := s.call(ctx, "load vendor", func(ctx context.Context) error {
		found, err := s.vendors.FindVendor(ctx, vendorID)
		if err != nil {
			return err
		}
		vendor = found
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	return vendor, nil
}

func (s *service) allocateNumber(ctx context.Context) (string, error) {
	var number string
	err := s.call(ctx, "allocate order number", func(ctx context.Context) error {
		next, err := s.numbers.Next(ctx)
		if err != nil {
			return err
		}
		number = next
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return "", typed
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
	}
	return number, nil
}

func validateSubmit(input SubmitInput) error {
	if input.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	if input.VendorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if money.IsNegative(input.DeliveryFee) || money.IsNegative(input.TaxAmount) {
		return pkgerrors.New(pkgerrors.CodeValidation, "fees must be non-negative")
	}
	for _, line := range input.Lines {
		if line.MenuItemID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "menu item id is required")
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantities must be positive")
		}
		if money.IsNegative(line.UnitPrice) {
			return pkgerrors.New(pkgerrors.CodeValidation, "unit prices must be non-negative")
		}
	}
	return nil
}

func viewFromModel(order models.Order) OrderView {
	return OrderView{
		ID:                  order.ID,
		OrderNumber:         order.OrderNumber,
		CustomerID:          order.CustomerID,
		VendorID:            order.VendorID,
		Status:              order.Status,
		Subtotal:            order.Subtotal,
		DeliveryFee:         order.DeliveryFee,
		TaxAmount:           order.TaxAmount,
		TotalAmount:         order.TotalAmount,
		PaymentMethod:       order.PaymentMethod,
		SpecialInstructions: order.SpecialInstructions,
		CancellationReason:  order.CancellationReason,
		Lines:               []LineView{},
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
}
