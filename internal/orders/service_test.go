package orders

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusbite/campusbite-backend/pkg/db/models"
	"github.com/campusbite/campusbite-backend/pkg/enums"
	pkgerrors "github.com/campusbite/campusbite-backend/pkg/errors"
	"github.com/campusbite/campusbite-backend/pkg/logger"
	"github.com/campusbite/campusbite-backend/pkg/money"
	"github.com/campusbite/campusbite-backend/pkg/pagination"
)

type stubRepo struct {
	orders map[uuid.UUID]*models.Order

	createOrderErr error
	createItemsErr error
	deleteErr      error
	findErr        error
	casSwapped     bool
	casErr         error
	historyErr     error
	listErr        error
	linesErr       error

	listOrders []models.Order
	lines      []OrderLineRow

	createdItems [][]models.OrderItem
	deleted      []uuid.UUID
	history      []models.OrderStatusHistory
	casCalls     []enums.OrderStatus
}

func newStubRepo() *stubRepo {
	return &stubRepo{orders: map[uuid.UUID]*models.Order{}, casSwapped: true}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createOrderErr != nil {
		return nil, s.createOrderErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if s.createItemsErr != nil {
		return s.createItemsErr
	}
	s.createdItems = append(s.createdItems, items)
	return nil
}

func (s *stubRepo) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, orderID)
	delete(s.orders, orderID)
	return nil
}

func (s *stubRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	order, ok := s.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubRepo) UpdateOrderStatusCAS(ctx context.Context, orderID uuid.UUID, observed, target enums.OrderStatus, updates map[string]any) (bool, error) {
	if s.casErr != nil {
		return false, s.casErr
	}
	s.casCalls = append(s.casCalls, target)
	if !s.casSwapped {
		return false, nil
	}
	if order, ok := s.orders[orderID]; ok {
		order.Status = target
	}
	return true, nil
}

func (s *stubRepo) InsertStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	if s.historyErr != nil {
		return s.historyErr
	}
	s.history = append(s.history, *entry)
	return nil
}

func (s *stubRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Order, int64, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	return s.listOrders, int64(len(s.listOrders)), nil
}

func (s *stubRepo) ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Order, int64, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	return s.listOrders, int64(len(s.listOrders)), nil
}

func (s *stubRepo) ListOrderLines(ctx context.Context, orderIDs []uuid.UUID) ([]OrderLineRow, error) {
	if s.linesErr != nil {
		return nil, s.linesErr
	}
	return s.lines, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubVendors struct {
	vendor      *models.VendorProfile
	findErr     error
	summaries   map[uuid.UUID]CounterpartySummary
	summriesErr error
}

func (s *stubVendors) FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.VendorProfile, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.vendor == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.vendor, nil
}

func (s *stubVendors) Summaries(ctx context.Context, vendorIDs []uuid.UUID) (map[uuid.UUID]CounterpartySummary, error) {
	if s.summriesErr != nil {
		return nil, s.summriesErr
	}
	return s.summaries, nil
}

type stubCustomers struct {
	summaries map[uuid.UUID]CounterpartySummary
	err       error
}

func (s *stubCustomers) Summaries(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID]CounterpartySummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.summaries, nil
}

type stubNumbers struct {
	number string
	err    error
}

func (s *stubNumbers) Next(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.number == "" {
		return "CB-20250831-0001", nil
	}
	return s.number, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func acceptingVendor(id uuid.UUID) *models.VendorProfile {
	return &models.VendorProfile{ID: id, BusinessName: "Night Market", IsActive: true, IsAcceptingOrders: true}
}

func newTestService(t *testing.T, repo Repository, vendors VendorLoader) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, vendors, &stubNumbers{}, nil, testLogger(), 0)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func validSubmit(customerID, vendorID uuid.UUID) SubmitInput {
	return SubmitInput{
		CustomerID:    customerID,
		VendorID:      vendorID,
		PaymentMethod: enums.PaymentMethodCash,
		DeliveryFee:   money.FromFloat(5),
		TaxAmount:     money.FromFloat(0),
		Lines: []LineInput{
			{MenuItemID: uuid.New(), Quantity: 2, UnitPrice: money.FromFloat(25)},
			{MenuItemID: uuid.New(), Quantity: 1, UnitPrice: money.FromFloat(10)},
		},
	}
}

func TestSubmitComputesTotalsServerSide(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubVendors{vendor: acceptingVendor(vendorID)})

	view, err := svc.Submit(context.Background(), validSubmit(uuid.New(), vendorID))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if view.Subtotal.StringFixed(2) != "60.00" {
		t.Fatalf("expected subtotal 60.00, got %s", view.Subtotal.StringFixed(2))
	}
	if view.TotalAmount.StringFixed(2) != "65.00" {
		t.Fatalf("expected total 65.00, got %s", view.TotalAmount.StringFixed(2))
	}
	if view.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", view.Status)
	}
	if view.OrderNumber == "" {
		t.Fatal("expected an order number")
	}
	if len(view.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(view.Lines))
	}
	if len(repo.history) != 1 || repo.history[0].ToStatus != enums.OrderStatusPending {
		t.Fatalf("expected initial pending history row, got %+v", repo.history)
	}
}

func TestSubmitRejectsClosedVendor(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	vendor := acceptingVendor(vendorID)
	vendor.IsAcceptingOrders = false
	svc := newTestService(t, newStubRepo(), &stubVendors{vendor: vendor})

	_, err := svc.Submit(context.Background(), validSubmit(uuid.New(), vendorID))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for closed vendor, got %v", err)
	}
}

func TestSubmitRejectsUnknownVendor(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubRepo(), &stubVendors{})

	_, err := svc.Submit(context.Background(), validSubmit(uuid.New(), uuid.New()))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown vendor, got %v", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	svc := newTestService(t, newStubRepo(), &stubVendors{vendor: acceptingVendor(vendorID)})

	cases := []struct {
		name   string
		mutate func(*SubmitInput)
	}{
		{"no lines", func(in *SubmitInput) { in.Lines = nil }},
		{"zero quantity", func(in *SubmitInput) { in.Lines[0].Quantity = 0 }},
		{"negative price", func(in *SubmitInput) { in.Lines[0].UnitPrice = money.FromFloat(-1) }},
		{"bad payment method", func(in *SubmitInput) { in.PaymentMethod = "barter" }},
		{"negative fee", func(in *SubmitInput) { in.DeliveryFee = money.FromFloat(-2) }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			input := validSubmit(uuid.New(), vendorID)
			tc.mutate(&input)
			_, err := svc.Submit(context.Background(), input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSubmitCompensatesOnItemFailure(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	repo := newStubRepo()
	repo.createItemsErr = errors.New("items table down")
	svc := newTestService(t, repo, &stubVendors{vendor: acceptingVendor(vendorID)})

	_, err := svc.Submit(context.Background(), validSubmit(uuid.New(), vendorID))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePartialFailure {
		t.Fatalf("expected partial failure, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["compensated"] != true {
		t.Fatalf("expected compensated=true details, got %v", typed.Details())
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected compensating delete, got %v", repo.deleted)
	}
	if len(repo.orders) != 0 {
		t.Fatalf("expected no surviving order rows, got %d", len(repo.orders))
	}
}

func TestSubmitReportsOrphanWhenDeleteAlsoFails(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	repo := newStubRepo()
	repo.createItemsErr = errors.New("items table down")
	repo.deleteErr = errors.New("delete also down")
	svc := newTestService(t, repo, &stubVendors{vendor: acceptingVendor(vendorID)})

	_, err := svc.Submit(context.Background(), validSubmit(uuid.New(), vendorID))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePartialFailure {
		t.Fatalf("expected partial failure, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["compensated"] != false {
		t.Fatalf("expected compensated=false details, got %v", typed.Details())
	}
	if len(repo.orders) != 1 {
		t.Fatalf("expected the orphaned order row to remain, got %d", len(repo.orders))
	}
}

func TestSubmitSurvivesHistoryFailure(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	repo := newStubRepo()
	repo.historyErr = errors.New("history insert failed")
	svc := newTestService(t, repo, &stubVendors{vendor: acceptingVendor(vendorID)})

	view, err := svc.Submit(context.Background(), validSubmit(uuid.New(), vendorID))
	if err != nil {
		t.Fatalf("submit should tolerate history failure: %v", err)
	}
	if view.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending order, got %s", view.Status)
	}
}

func TestSubmitFailsWhenOrderInsertFails(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	repo := newStubRepo()
	repo.createOrderErr = errors.New("orders table down")
	svc := newTestService(t, repo, &stubVendors{vendor: acceptingVendor(vendorID)})

	_, err := svc.Submit(context.Background(), validSubmit(uuid.New(), vendorID))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("nothing should be deleted when the order insert itself fails")
	}
}
