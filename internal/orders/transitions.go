package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusbite/campusbite-backend/pkg/db/models"
	"github.com/campusbite/campusbite-backend/pkg/enums"
	pkgerrors "github.com/campusbite/campusbite-backend/pkg/errors"
)

// nextStatus is the fixed forward ladder. Callers never pick a target; the
// current status fully determines the next one.
var nextStatus = map[enums.OrderStatus]enums.OrderStatus{
	enums.OrderStatusPending:        enums.OrderStatusConfirmed,
	enums.OrderStatusConfirmed:      enums.OrderStatusPreparing,
	enums.OrderStatusPreparing:      enums.OrderStatusReady,
	enums.OrderStatusReady:          enums.OrderStatusOutForDelivery,
	enums.OrderStatusOutForDelivery: enums.OrderStatusDelivered,
}

// CanCancel reports whether a customer may still cancel at this status. Once
// the vendor starts preparing, the food is committed.
func CanCancel(status enums.OrderStatus) bool {
	return status == enums.OrderStatusPending || status == enums.OrderStatusConfirmed
}

// Advance moves the order one step along the ladder. Vendor-only; the actor
// must own the order's vendor profile.
func (s *service) Advance(ctx context.Context, orderID uuid.UUID, actor Actor) (enums.OrderStatus, error) {
	if orderID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if actor.UserID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())

	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return "", err
	}

	if actor.Role != enums.UserRoleVendor || actor.VendorID == nil || *actor.VendorID != order.VendorID {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
	}

	observed := order.Status
	target, ok := nextStatus[observed]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot advance from its current status")
	}

	if err := s.transition(ctx, order.ID, observed, target, actor.UserID, nil); err != nil {
		return "", err
	}
	return target, nil
}

// Cancel moves the order to cancelled. Customer-only, and only while the
// vendor has not started preparing.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, actor Actor, reason *string) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())

	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if actor.Role != enums.UserRoleCustomer || order.CustomerID != actor.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
	}

	observed := order.Status
	if observed == enums.OrderStatusCancelled {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already cancelled")
	}
	if !CanCancel(observed) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")
	}

	var updates map[string]any
	if reason != nil {
		updates = map[string]any{"cancellation_reason": *reason}
	}
	return s.transition(ctx, order.ID, observed, enums.OrderStatusCancelled, actor.UserID, updates)
}

// transition performs the compare-and-swap status update and the history
// insert in one transaction. A CAS miss means a concurrent writer got there
// first.
func (s *service) transition(ctx context.Context, orderID uuid.UUID, observed, target enums.OrderStatus, changedBy uuid.UUID, updates map[string]any) error {
	err := s.call(ctx, "status transition", func(ctx context.Context) error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			swapped, err := repo.UpdateOrderStatusCAS(ctx, orderID, observed, target, updates)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
			}
			if !swapped {
				return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
			}

			from := observed
			return repo.InsertStatusHistory(ctx, &models.OrderStatusHistory{
				OrderID:    orderID,
				FromStatus: &from,
				ToStatus:   target,
				ChangedBy:  changedBy,
			})
		})
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "status transition")
	}

	s.metrics.IncTransition(observed.String(), target.String())
	return nil
}

func (s *service) findOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := s.call(ctx, "load order", func(ctx context.Context) error {
		found, err := s.repo.FindOrder(ctx, orderID)
		if err != nil {
			return err
		}
		order = found
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
