package event

import (
	"context"

	"github.com/rst/farmcontrol/internal/domain/cost"
	"github.com/rst/farmcontrol/internal/domain/sales"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MetricsRecorder is the subset of telemetry.FarmMetrics fed by events
type MetricsRecorder interface {
	RecordCostEntry(ctx context.Context, tenantID, classification string, amount decimal.Decimal)
	RecordSaleCreated(ctx context.Context, tenantID, modality, paymentType string, amount decimal.Decimal)
	RecordSaleTransition(ctx context.Context, tenantID, status string)
	RecordSettlement(ctx context.Context, tenantID string, efficiency decimal.Decimal)
}

// MetricsHandler translates bookkeeping events into farm metrics
type MetricsHandler struct {
	metrics MetricsRecorder
}

// NewMetricsHandler creates a MetricsHandler
func NewMetricsHandler(m MetricsRecorder) *MetricsHandler {
	return &MetricsHandler{metrics: m}
}

// EventTypes implements shared.EventHandler
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		cost.EventTypeCostEntryRecorded,
		sales.EventTypeSaleCreated,
		sales.EventTypeSalePaid,
		sales.EventTypeSaleSettled,
		sales.EventTypeSaleCancelled,
	}
}

// Handle implements shared.EventHandler
func (h *MetricsHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	tenant := evt.TenantID().String()
	switch e := evt.(type) {
	case *cost.CostEntryRecordedEvent:
		h.metrics.RecordCostEntry(ctx, tenant, string(e.Classification), e.Amount)
	case *sales.SaleCreatedEvent:
		h.metrics.RecordSaleCreated(ctx, tenant, string(e.Modality), string(e.PaymentType), e.TotalAmount)
	case *sales.SalePaidEvent:
		h.metrics.RecordSaleTransition(ctx, tenant, string(sales.StatusPaid))
	case *sales.SaleSettledEvent:
		h.metrics.RecordSaleTransition(ctx, tenant, string(sales.StatusSettled))
		h.metrics.RecordSettlement(ctx, tenant, e.Efficiency)
	case *sales.SaleCancelledEvent:
		h.metrics.RecordSaleTransition(ctx, tenant, string(sales.StatusCancelled))
	}
	return nil
}
