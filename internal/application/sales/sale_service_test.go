package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/sales"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/internal/infrastructure/cache"
	"github.com/rst/farmcontrol/internal/infrastructure/export"
	"github.com/rst/farmcontrol/internal/infrastructure/lock"
	"github.com/rst/farmcontrol/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSaleRepository is a mock implementation of sales.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter sales.SaleFilter) ([]sales.Sale, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]sales.Sale), args.Get(1).(int64), args.Error(2)
}

func (m *MockSaleRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, dateRange shared.DateRange) ([]sales.Sale, error) {
	args := m.Called(ctx, tenantID, dateRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) CountInRange(ctx context.Context, tenantID uuid.UUID, dateRange shared.DateRange) (int64, error) {
	args := m.Called(ctx, tenantID, dateRange)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	return m.Called(ctx, sale).Error(0)
}

type busyLocker struct{}

func (busyLocker) Acquire(context.Context, string, time.Duration) (func(), error) {
	return nil, shared.ErrConcurrencyConflict
}

var fixedNow = time.Date(2026, 3, 20, 17, 45, 0, 0, time.UTC)

func setupSaleService(t *testing.T) (*SaleService, *MockSaleRepository, *testutil.RecordingPublisher) {
	t.Helper()
	repo := new(MockSaleRepository)
	queryCache := cache.NewInMemoryQueryCache()
	t.Cleanup(func() { _ = queryCache.Close() })

	publisher := testutil.NewRecordingPublisher()
	svc := NewSaleService(repo, lock.NewLocalLocker(), queryCache)
	svc.SetEventPublisher(publisher)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, publisher
}

func directSaleRequest() CreateSaleRequest {
	return CreateSaleRequest{
		Date:         "2026-03-12",
		CustomerName: "Mercado Central",
		Modality:     "DIRECT",
		PaymentType:  "PIX",
		Items: []LineItemRequest{
			{Name: "Alface", Quantity: decimal.NewFromInt(10), Unit: "UN", UnitPrice: testutil.Dec("3.50")},
			{Name: "Tomate", Quantity: testutil.Dec("2.5"), Unit: "KG", UnitPrice: testutil.Dec("8.00")},
		},
	}
}

// settleRequest consumes 15 and loses 2 of the first item and consumes all 10 of the second
func settleRequest() SettleSaleRequest {
	return SettleSaleRequest{
		Items: []DispositionRequest{
			{Consumed: decimal.NewFromInt(15), Lost: decimal.NewFromInt(2)},
			{Consumed: decimal.NewFromInt(10), Lost: decimal.Zero},
		},
		Notes: "  acerto semanal ",
	}
}

func TestSaleService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.DefaultTenantID
	march := shared.MonthOf(testutil.Day(2026, 3, 12))

	t.Run("numbers the sale within its month", func(t *testing.T) {
		svc, repo, publisher := setupSaleService(t)
		repo.On("CountInRange", ctx, tenantID, march).Return(int64(4), nil)
		repo.On("Save", ctx, mock.AnythingOfType("*sales.Sale")).Return(nil)

		resp, err := svc.Create(ctx, tenantID, directSaleRequest())
		require.NoError(t, err)
		assert.Equal(t, "V20260312-005", resp.Number)
		assert.Equal(t, "PAID", resp.Status)
		assert.Equal(t, "55.00", resp.TotalAmount.StringFixed(2))
		assert.Len(t, resp.Items, 2)
		assert.Equal(t, []string{sales.EventTypeSaleCreated}, publisher.Types())
		repo.AssertExpectations(t)
	})

	t.Run("consignment starts consigned and normalizes the phone", func(t *testing.T) {
		svc, repo, _ := setupSaleService(t)
		repo.On("CountInRange", ctx, tenantID, march).Return(int64(0), nil)
		repo.On("Save", ctx, mock.Anything).Return(nil)

		req := directSaleRequest()
		req.Modality = "CONSIGNMENT"
		req.PaymentType = "INVOICE"
		req.CustomerPhone = "11 98765-4321"
		resp, err := svc.Create(ctx, tenantID, req)
		require.NoError(t, err)
		assert.Equal(t, "CONSIGNED", resp.Status)
		assert.Equal(t, "V20260312-001", resp.Number)
		assert.Equal(t, "+55 11 98765-4321", resp.CustomerPhone)
	})

	t.Run("term payment keeps the due date", func(t *testing.T) {
		svc, repo, _ := setupSaleService(t)
		repo.On("CountInRange", ctx, tenantID, march).Return(int64(0), nil)
		repo.On("Save", ctx, mock.Anything).Return(nil)

		req := directSaleRequest()
		req.PaymentType = "TERM"
		req.DueDate = "2026-04-12"
		resp, err := svc.Create(ctx, tenantID, req)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Equal(t, "2026-04-12", resp.DueDate)
	})

	tests := []struct {
		name     string
		mutate   func(*CreateSaleRequest)
		wantCode string
	}{
		{"term without due date", func(r *CreateSaleRequest) { r.PaymentType = "TERM" }, "DUE_DATE_REQUIRED"},
		{"zero quantity", func(r *CreateSaleRequest) { r.Items[0].Quantity = decimal.Zero }, "INVALID_QUANTITY"},
		{"unknown unit", func(r *CreateSaleRequest) { r.Items[1].Unit = "BAG" }, "INVALID_UNIT"},
		{"no items", func(r *CreateSaleRequest) { r.Items = nil }, "NO_LINE_ITEMS"},
		{"blank customer", func(r *CreateSaleRequest) { r.CustomerName = " " }, "CUSTOMER_REQUIRED"},
		{"bad phone", func(r *CreateSaleRequest) { r.CustomerPhone = "99" }, "INVALID_PHONE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, publisher := setupSaleService(t)
			repo.On("CountInRange", ctx, tenantID, mock.Anything).Return(int64(0), nil).Maybe()

			req := directSaleRequest()
			tt.mutate(&req)
			_, err := svc.Create(ctx, tenantID, req)

			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			assert.Empty(t, publisher.Events())
		})
	}
}

func TestSaleService_Settle(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.DefaultTenantID

	t.Run("settles a consignment", func(t *testing.T) {
		svc, repo, publisher := setupSaleService(t)
		sale := testutil.NewConsignmentSale(t, tenantID)
		repo.On("FindByIDForTenant", ctx, tenantID, sale.ID).Return(sale, nil)
		repo.On("Save", ctx, sale).Return(nil)

		resp, err := svc.Settle(ctx, tenantID, sale.ID, settleRequest())
		require.NoError(t, err)
		assert.Equal(t, "SETTLED", resp.Status)
		require.NotNil(t, resp.FinalAmount)
		assert.Equal(t, "57.50", resp.FinalAmount.StringFixed(2))

		st := resp.Settlement
		require.NotNil(t, st)
		assert.Equal(t, "70.00", st.OriginalAmount.StringFixed(2))
		assert.Equal(t, "57.50", st.Receivable.StringFixed(2))
		assert.Equal(t, "5.00", st.Loss.StringFixed(2))
		assert.Equal(t, "82.14", st.Efficiency.StringFixed(2))
		assert.Equal(t, "3", st.Items[0].Returned.String())
		assert.Equal(t, "acerto semanal", st.Notes)
		assert.Equal(t, sales.DefaultSettledBy, st.SettledBy)
		require.NotNil(t, st.SettledAt)
		assert.True(t, st.SettledAt.Equal(fixedNow))
		assert.Equal(t, []string{sales.EventTypeSaleSettled}, publisher.Types())
	})

	t.Run("over-count is rejected with every failing item", func(t *testing.T) {
		svc, repo, publisher := setupSaleService(t)
		sale := testutil.NewConsignmentSale(t, tenantID)
		repo.On("FindByIDForTenant", ctx, tenantID, sale.ID).Return(sale, nil)

		req := SettleSaleRequest{Items: []DispositionRequest{
			{Consumed: decimal.NewFromInt(19), Lost: decimal.NewFromInt(2)},
			{Consumed: decimal.NewFromInt(11), Lost: decimal.Zero},
		}}
		_, err := svc.Settle(ctx, tenantID, sale.ID, req)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "SETTLEMENT_QUANTITY_EXCEEDED", domainErr.Code)
		assert.Len(t, domainErr.Details, 2)
		assert.Equal(t, sales.StatusConsigned, sale.Status)
		assert.Nil(t, sale.Settlement)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, publisher.Events())
	})

	t.Run("nothing consumed", func(t *testing.T) {
		svc, repo, _ := setupSaleService(t)
		sale := testutil.NewConsignmentSale(t, tenantID)
		repo.On("FindByIDForTenant", ctx, tenantID, sale.ID).Return(sale, nil)

		req := SettleSaleRequest{Items: []DispositionRequest{
			{Consumed: decimal.Zero, Lost: decimal.NewFromInt(20)},
			{Consumed: decimal.Zero, Lost: decimal.Zero},
		}}
		_, err := svc.Settle(ctx, tenantID, sale.ID, req)
		assert.ErrorIs(t, err, sales.ErrNothingConsumed)
	})

	t.Run("sale not consigned", func(t *testing.T) {
		svc, repo, _ := setupSaleService(t)
		sale, err := sales.NewSale(tenantID, testutil.SaleParams(t))
		require.NoError(t, err)
		repo.On("FindByIDForTenant", ctx, tenantID, sale.ID).Return(sale, nil)

		_, err = svc.Settle(ctx, tenantID, sale.ID, SettleSaleRequest{Items: []DispositionRequest{{Consumed: decimal.NewFromInt(1)}}})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		svc, repo, publisher := setupSaleService(t)
		sale := testutil.NewConsignmentSale(t, tenantID)
		repo.On("FindByIDForTenant", ctx, tenantID, sale.ID).Return(sale, nil)
		repo.On("Save", ctx, sale).Return(errors.New("deadlock detected"))

		_, err := svc.Settle(ctx, tenantID, sale.ID, settleRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "deadlock detected")
		assert.Empty(t, publisher.Events())
	})

	t.Run("concurrent settlement is refused", func(t *testing.T) {
		svc, repo, _ := setupSaleService(t)
		svc.locker = busyLocker{}

		_, err := svc.Settle(ctx, tenantID, uuid.New(), settleRequest())
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		repo.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSaleService_PreviewSettlement(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.DefaultTenantID
	svc, repo, publisher := setupSaleService(t)

	sale := testutil.NewConsignmentSale(t, tenantID)
	repo.On("FindByIDForTenant", ctx, tenantID, sale.ID).Return(sale, nil)

	preview, err := svc.PreviewSettlement(ctx, tenantID, sale.ID, settleRequest())
	require.NoError(t, err)
	assert.Equal(t, "57.50", preview.Receivable.StringFixed(2))
	assert.Nil(t, preview.SettledAt)
	assert.Equal(t, sales.StatusConsigned, sale.Status)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Empty(t, publisher.Events())
}

func TestSaleService_MarkPaidAndCancel(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.DefaultTenantID

	t.Run("pending sale is paid", func(t *testing.T) {
		svc, repo, publisher := setupSaleService(t)
		p := testutil.SaleParams(t)
		p.PaymentType = sales.PaymentInvoice
		sale, err := sales.NewSale(tenantID, p)
		require.NoError(t, err)
		sale.ClearDomainEvents()
		repo.On("FindByIDForTenant", ctx, tenantID, sale.ID).Return(sale, nil)
		repo.On("Save", ctx, sale).Return(nil)

		resp, err := svc.MarkPaid(ctx, tenantID, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, "PAID", resp.Status)
		require.NotNil(t, resp.ReceivedAt)
		assert.Equal(t, []string{sales.EventTypeSalePaid}, publisher.Types())
	})

	t.Run("consigned sale cannot be marked paid", func(t *testing.T) {
		svc, repo, _ := setupSaleService(t)
		sale := testutil.NewConsignmentSale(t, tenantID)
		repo.On("FindByIDForTenant", ctx, tenantID, sale.ID).Return(sale, nil)

		_, err := svc.MarkPaid(ctx, tenantID, sale.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("consigned sale is cancelled", func(t *testing.T) {
		svc, repo, publisher := setupSaleService(t)
		sale := testutil.NewConsignmentSale(t, tenantID)
		repo.On("FindByIDForTenant", ctx, tenantID, sale.ID).Return(sale, nil)
		repo.On("Save", ctx, sale).Return(nil)

		resp, err := svc.Cancel(ctx, tenantID, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		assert.Equal(t, []string{sales.EventTypeSaleCancelled}, publisher.Types())
	})

	t.Run("missing sale", func(t *testing.T) {
		svc, repo, _ := setupSaleService(t)
		id := uuid.New()
		repo.On("FindByIDForTenant", ctx, tenantID, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Cancel(ctx, tenantID, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestSaleService_CurrentMonth(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.DefaultTenantID
	period := shared.CurrentMonth(fixedNow)

	svc, repo, _ := setupSaleService(t)
	consigned := testutil.NewConsignmentSale(t, tenantID)
	repo.On("FindByDateRange", ctx, tenantID, period).Return([]sales.Sale{*consigned}, nil)
	repo.On("FindByIDForTenant", ctx, tenantID, consigned.ID).Return(consigned, nil)
	repo.On("Save", ctx, consigned).Return(nil)

	list, err := svc.ListCurrentMonth(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	summary, err := svc.MonthlySummary(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "70.00", summary.Amount(sales.StatusConsigned).StringFixed(2))

	_, err = svc.ListCurrentMonth(ctx, tenantID)
	require.NoError(t, err)
	_, err = svc.MonthlySummary(ctx, tenantID)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "FindByDateRange", 2)

	// cancelling invalidates both cached reads
	_, err = svc.Cancel(ctx, tenantID, consigned.ID)
	require.NoError(t, err)
	_, err = svc.MonthlySummary(ctx, tenantID)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "FindByDateRange", 3)
}

func TestSaleService_List(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.DefaultTenantID
	svc, repo, _ := setupSaleService(t)

	repo.On("FindAllForTenant", ctx, tenantID, mock.MatchedBy(func(f sales.SaleFilter) bool {
		return f.CustomerContains == "mercado" &&
			len(f.PaymentTypes) == 1 && f.PaymentTypes[0] == sales.PaymentPix &&
			len(f.Statuses) == 2 &&
			f.Range.To.Equal(testutil.Day(2026, 3, 16))
	})).Return([]sales.Sale{}, int64(0), nil)

	_, total, err := svc.List(ctx, tenantID, SaleListFilter{
		Customer:     "mercado",
		PaymentTypes: []string{"PIX"},
		Statuses:     []string{"PAID", "SETTLED"},
		To:           "2026-03-15",
	})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, _, err = svc.List(ctx, tenantID, SaleListFilter{Statuses: []string{"LOST"}})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATUS", domainErr.Code)
}

func TestSaleService_Export(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.DefaultTenantID
	svc, repo, _ := setupSaleService(t)

	settled := testutil.NewConsignmentSale(t, tenantID)
	settlement, err := sales.CalculateSettlement(settled, settleRequest().dispositions())
	require.NoError(t, err)
	require.NoError(t, settled.Settle(settlement, "", "", fixedNow))
	direct, err := sales.NewSale(tenantID, testutil.SaleParams(t))
	require.NoError(t, err)

	repo.On("FindAllForTenant", ctx, tenantID, mock.Anything).Return([]sales.Sale{*settled, *direct}, int64(2), nil)

	doc, err := svc.Export(ctx, tenantID, SaleListFilter{}, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "vendas_RST_20260320.csv", doc.FileName)
	assert.Equal(t, ExportHeaders, doc.Table.Headers)
	assert.Equal(t, []string{
		"V202603-002", "12/03/2026", "Mercado Central", "", "Consignação", "Dinheiro", "Acertado",
		"2", "R$ 70.00", "R$ 57.50",
	}, doc.Table.Rows[0])
	assert.Equal(t, "", doc.Table.Rows[1][9])
	assert.Equal(t, "Pago", doc.Table.Rows[1][6])
}
