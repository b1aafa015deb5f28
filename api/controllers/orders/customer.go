package orders

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campusbite/campusbite-backend/api/middleware"
	"github.com/campusbite/campusbite-backend/api/responses"
	"github.com/campusbite/campusbite-backend/api/validators"
	orderssvc "github.com/campusbite/campusbite-backend/internal/orders"
	"github.com/campusbite/campusbite-backend/pkg/enums"
	pkgerrors "github.com/campusbite/campusbite-backend/pkg/errors"
	"github.com/campusbite/campusbite-backend/pkg/logger"
)

// cartClearer is the slice of the cart store checkout needs.
type cartClearer interface {
	Clear(ctx context.Context, customerID uuid.UUID) error
}

// Submit places a new order for the authenticated customer and empties their
// cart. A failed clear is logged, never surfaced; the order is already placed.
func Submit(svc orderssvc.Service, carts cartClearer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload SubmitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Submit(r.Context(), payload.toInput(actor.UserID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := carts.Clear(r.Context(), actor.UserID); err != nil {
			logg.Warn(r.Context(), "cart clear after checkout failed")
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// List returns the customer's orders, newest first.
func List(svc *orderssvc.QueryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := validators.StatusFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListCustomerOrders(r.Context(), actor.UserID, validators.Pagination(r), orderssvc.ListFilters{Status: status})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// Detail returns one order, ownership-checked in the query service.
func Detail(svc *orderssvc.QueryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetOrder(r.Context(), orderID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// Cancel cancels a pending or confirmed order.
func Cancel(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload CancelRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		if err := svc.Cancel(r.Context(), orderID, actor, payload.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": string(enums.OrderStatusCancelled)})
	}
}

func actorFromContext(r *http.Request) (orderssvc.Actor, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return orderssvc.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return orderssvc.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user identity")
	}

	actor := orderssvc.Actor{
		UserID: userID,
		Role:   enums.UserRole(middleware.RoleFromContext(r.Context())),
	}
	if rawVendor := middleware.VendorIDFromContext(r.Context()); rawVendor != "" {
		vendorID, err := uuid.Parse(rawVendor)
		if err != nil {
			return orderssvc.Actor{}, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid vendor context")
		}
		actor.VendorID = &vendorID
	}
	return actor, nil
}

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}
