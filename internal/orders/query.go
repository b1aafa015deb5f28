package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/campusbite/campusbite-backend/pkg/db/models"
	pkgerrors "github.com/campusbite/campusbite-backend/pkg/errors"
	"github.com/campusbite/campusbite-backend/pkg/logger"
	"github.com/campusbite/campusbite-backend/pkg/pagination"
)

// QueryService reads orders and enriches them in stages: flat rows first,
// then counterparty summaries and lines in single batched fetches. The
// enrichment stages degrade gracefully; only the flat read is fatal.
type QueryService struct {
	repo        Repository
	vendors     VendorLoader
	customers   CustomerLoader
	logg        *logger.Logger
	callTimeout time.Duration
}

// NewQueryService builds the read side of the orders package.
func NewQueryService(repo Repository, vendors VendorLoader, customers CustomerLoader, logg *logger.Logger, callTimeout time.Duration) (*QueryService, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if vendors == nil {
		return nil, fmt.Errorf("vendor loader required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &QueryService{
		repo:        repo,
		vendors:     vendors,
		customers:   customers,
		logg:        logg,
		callTimeout: callTimeout,
	}, nil
}

// ListCustomerOrders returns the customer's orders enriched with vendor
// summaries and lines.
func (q *QueryService) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}

	params = params.Normalize()

	var flat []models.Order
	var total int64
	err := q.call(ctx, "list customer orders", func(ctx context.Context) error {
		rows, count, err := q.repo.ListByCustomer(ctx, customerID, params, filters)
		if err != nil {
			return err
		}
		flat, total = rows, count
		return nil
	})
	if err != nil {
		return nil, q.fatal(err, "list customer orders")
	}

	views := q.enrich(ctx, flat, vendorSide)
	return &OrderList{Orders: views, Page: params.Page, Limit: params.Limit, Total: total}, nil
}

// ListVendorOrders returns the vendor's incoming orders enriched with
// customer summaries and lines.
func (q *QueryService) ListVendorOrders(ctx context.Context, vendorID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
	}

	params = params.Normalize()

	var flat []models.Order
	var total int64
	err := q.call(ctx, "list vendor orders", func(ctx context.Context) error {
		rows, count, err := q.repo.ListByVendor(ctx, vendorID, params, filters)
		if err != nil {
			return err
		}
		flat, total = rows, count
		return nil
	})
	if err != nil {
		return nil, q.fatal(err, "list vendor orders")
	}

	views := q.enrich(ctx, flat, customerSide)
	return &OrderList{Orders: views, Page: params.Page, Limit: params.Limit, Total: total}, nil
}

// GetOrder loads one order for the acting principal. Customers see their own
// orders, vendors the orders addressed to them.
func (q *QueryService) GetOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderView, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var order *models.Order
	err := q.call(ctx, "load order", func(ctx context.Context) error {
		found, err := q.repo.FindOrder(ctx, orderID)
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
		return nil, q.fatal(err, "load order")
	}

	side := vendorSide
	switch {
	case actor.VendorID != nil && *actor.VendorID == order.VendorID:
		side = customerSide
	case order.CustomerID == actor.UserID:
		side = vendorSide
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
	}

	views := q.enrich(ctx, []models.Order{*order}, side)
	return &views[0], nil
}

// counterpartySide selects which party gets summarized for a list.
type counterpartySide int

const (
	vendorSide counterpartySide = iota
	customerSide
)

// enrich merges counterparty summaries and line rows into view models. Each
// enrichment stage that fails is logged once as an aggregated warning and
// leaves its slice of the views degraded instead of failing the call.
func (q *QueryService) enrich(ctx context.Context, flat []models.Order, side counterpartySide) []OrderView {
	views := make([]OrderView, 0, len(flat))
	if len(flat) == 0 {
		return views
	}

	idSet := map[uuid.UUID]struct{}{}
	orderIDs := make([]uuid.UUID, 0, len(flat))
	for _, order := range flat {
		orderIDs = append(orderIDs, order.ID)
		if side == vendorSide {
			idSet[order.VendorID] = struct{}{}
		} else {
			idSet[order.CustomerID] = struct{}{}
		}
	}
	counterpartyIDs := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		counterpartyIDs = append(counterpartyIDs, id)
	}

	var degraded error

	summaries := map[uuid.UUID]CounterpartySummary{}
	err := q.call(ctx, "load counterparty summaries", func(ctx context.Context) error {
		var err error
		if side == vendorSide {
			summaries, err = q.vendors.Summaries(ctx, counterpartyIDs)
		} else {
			summaries, err = q.customers.Summaries(ctx, counterpartyIDs)
		}
		return err
	})
	if err != nil {
		degraded = multierr.Append(degraded, fmt.Errorf("counterparty summaries: %w", err))
		summaries = map[uuid.UUID]CounterpartySummary{}
	}

	linesByOrder := map[uuid.UUID][]LineView{}
	err = q.call(ctx, "load order lines", func(ctx context.Context) error {
		rows, err := q.repo.ListOrderLines(ctx, orderIDs)
		if err != nil {
			return err
		}
		for _, row := range rows {
			linesByOrder[row.OrderID] = append(linesByOrder[row.OrderID], LineView{
				ID:                  row.ID,
				MenuItemID:          row.MenuItemID,
				Name:                row.MenuItemName,
				ImageURL:            row.MenuItemImageURL,
				Quantity:            row.Quantity,
				UnitPrice:           row.UnitPrice,
				TotalPrice:          row.TotalPrice,
				SpecialInstructions: row.SpecialInstructions,
			})
		}
		return nil
	})
	if err != nil {
		degraded = multierr.Append(degraded, fmt.Errorf("order lines: %w", err))
	}

	if degraded != nil {
		q.logg.Warn(q.logg.WithField(ctx, "degraded", degraded.Error()), "order enrichment partially failed")
	}

	for _, order := range flat {
		view := viewFromModel(order)

		counterpartyID := order.VendorID
		if side == customerSide {
			counterpartyID = order.CustomerID
		}
		if summary, ok := summaries[counterpartyID]; ok {
			view.Counterparty = &summary
		}
		if lines, ok := linesByOrder[order.ID]; ok {
			view.Lines = lines
		}
		views = append(views, view)
	}
	return views
}

func (q *QueryService) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, q.callTimeout)
	defer cancel()

	err := fn(callCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, op+" timed out")
	}
	return err
}

func (q *QueryService) fatal(err error, op string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
