// Package report serves the farm overview built from the cost and sales summaries.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/report"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/internal/infrastructure/telemetry"
	"golang.org/x/sync/errgroup"
)

// CostSummarySource provides the cached current-month cost summary
type CostSummarySource interface {
	MonthlySummary(ctx context.Context, tenantID uuid.UUID) (*report.CostSummary, error)
}

// SalesSummarySource provides the cached current-month sales summary
type SalesSummarySource interface {
	MonthlySummary(ctx context.Context, tenantID uuid.UUID) (*report.SalesSummary, error)
}

// DashboardService assembles the dashboard
type DashboardService struct {
	costs CostSummarySource
	sales SalesSummarySource
	now   func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(costs CostSummarySource, sales SalesSummarySource) *DashboardService {
	return &DashboardService{costs: costs, sales: sales, now: time.Now}
}

// Dashboard returns the current-month cost and sales summaries. Both are
// loaded concurrently; either failing fails the whole dashboard.
func (s *DashboardService) Dashboard(ctx context.Context, tenantID uuid.UUID) (*report.Dashboard, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "dashboard")
	defer span.End()

	now := s.now()
	var (
		costs *report.CostSummary
		sales *report.SalesSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		costs, err = s.costs.MonthlySummary(gctx, tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.sales.MonthlySummary(gctx, tenantID)
		return err
	})
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return &report.Dashboard{
		PeriodStart: shared.CurrentMonth(now).From,
		Costs:       *costs,
		Sales:       *sales,
		GeneratedAt: now,
	}, nil
}
