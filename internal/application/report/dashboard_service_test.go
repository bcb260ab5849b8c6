package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/report"
	"github.com/rst/farmcontrol/internal/domain/sales"
	"github.com/rst/farmcontrol/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCostSummarySource struct {
	mock.Mock
}

func (m *MockCostSummarySource) MonthlySummary(ctx context.Context, tenantID uuid.UUID) (*report.CostSummary, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.CostSummary), args.Error(1)
}

type MockSalesSummarySource struct {
	mock.Mock
}

func (m *MockSalesSummarySource) MonthlySummary(ctx context.Context, tenantID uuid.UUID) (*report.SalesSummary, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.SalesSummary), args.Error(1)
}

func TestDashboardService_Dashboard(t *testing.T) {
	tenantID := testutil.DefaultTenantID
	now := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)

	costSummary := &report.CostSummary{
		FixedTotal:    testutil.Dec("1200.00"),
		VariableTotal: testutil.Dec("350.50"),
		Total:         testutil.Dec("1550.50"),
		Count:         7,
	}
	salesSummary := &report.SalesSummary{
		ByStatus: map[sales.Status]report.StatusTotal{
			sales.StatusPaid: {Amount: testutil.Dec("980.00"), Count: 4},
		},
		Total: testutil.Dec("980.00"),
		Count: 4,
	}

	t.Run("combines both summaries", func(t *testing.T) {
		costs := new(MockCostSummarySource)
		salesSrc := new(MockSalesSummarySource)
		costs.On("MonthlySummary", mock.Anything, tenantID).Return(costSummary, nil)
		salesSrc.On("MonthlySummary", mock.Anything, tenantID).Return(salesSummary, nil)

		svc := NewDashboardService(costs, salesSrc)
		svc.now = func() time.Time { return now }

		dashboard, err := svc.Dashboard(context.Background(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), dashboard.PeriodStart)
		assert.Equal(t, now, dashboard.GeneratedAt)
		assert.Equal(t, *costSummary, dashboard.Costs)
		assert.Equal(t, "980.00", dashboard.Sales.Amount(sales.StatusPaid).StringFixed(2))
		costs.AssertExpectations(t)
		salesSrc.AssertExpectations(t)
	})

	t.Run("a failing summary fails the dashboard", func(t *testing.T) {
		costs := new(MockCostSummarySource)
		salesSrc := new(MockSalesSummarySource)
		costs.On("MonthlySummary", mock.Anything, tenantID).Return(costSummary, nil)
		salesSrc.On("MonthlySummary", mock.Anything, tenantID).Return(nil, errors.New("connection refused"))

		_, err := NewDashboardService(costs, salesSrc).Dashboard(context.Background(), tenantID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}
