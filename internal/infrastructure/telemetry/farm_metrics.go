package telemetry

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of farm metrics
const MeterName = "github.com/rst/farmcontrol"

// FarmMetrics records bookkeeping activity
type FarmMetrics struct {
	costsRecorded        metric.Int64Counter
	costAmount           metric.Float64Counter
	salesCreated         metric.Int64Counter
	salesAmount          metric.Float64Counter
	saleTransitions      metric.Int64Counter
	settlementEfficiency metric.Float64Histogram
}

// NewFarmMetrics registers the farm instruments on meter
func NewFarmMetrics(meter metric.Meter) (*FarmMetrics, error) {
	var (
		m   FarmMetrics
		err error
	)
	if m.costsRecorded, err = meter.Int64Counter("farm.costs.recorded",
		metric.WithDescription("Cost entries recorded"),
		metric.WithUnit("{entry}")); err != nil {
		return nil, fmt.Errorf("create costs counter: %w", err)
	}
	if m.costAmount, err = meter.Float64Counter("farm.costs.amount",
		metric.WithDescription("Total amount of recorded cost entries"),
		metric.WithUnit("BRL")); err != nil {
		return nil, fmt.Errorf("create cost amount counter: %w", err)
	}
	if m.salesCreated, err = meter.Int64Counter("farm.sales.created",
		metric.WithDescription("Sales created"),
		metric.WithUnit("{sale}")); err != nil {
		return nil, fmt.Errorf("create sales counter: %w", err)
	}
	if m.salesAmount, err = meter.Float64Counter("farm.sales.amount",
		metric.WithDescription("Total amount of created sales"),
		metric.WithUnit("BRL")); err != nil {
		return nil, fmt.Errorf("create sales amount counter: %w", err)
	}
	if m.saleTransitions, err = meter.Int64Counter("farm.sales.transitions",
		metric.WithDescription("Sale status transitions"),
		metric.WithUnit("{transition}")); err != nil {
		return nil, fmt.Errorf("create transitions counter: %w", err)
	}
	if m.settlementEfficiency, err = meter.Float64Histogram("farm.settlement.efficiency",
		metric.WithDescription("Share of consigned value that became receivable"),
		metric.WithUnit("%"),
		metric.WithExplicitBucketBoundaries(10, 25, 50, 75, 90, 95, 100)); err != nil {
		return nil, fmt.Errorf("create efficiency histogram: %w", err)
	}
	return &m, nil
}

// RecordCostEntry counts a recorded cost entry and its amount
func (m *FarmMetrics) RecordCostEntry(ctx context.Context, tenantID, classification string, amount decimal.Decimal) {
	attrs := metric.WithAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("classification", classification),
	)
	m.costsRecorded.Add(ctx, 1, attrs)
	m.costAmount.Add(ctx, amount.InexactFloat64(), attrs)
}

// RecordSaleCreated counts a created sale and its amount
func (m *FarmMetrics) RecordSaleCreated(ctx context.Context, tenantID, modality, paymentType string, amount decimal.Decimal) {
	attrs := metric.WithAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("modality", modality),
		attribute.String("payment_type", paymentType),
	)
	m.salesCreated.Add(ctx, 1, attrs)
	m.salesAmount.Add(ctx, amount.InexactFloat64(), attrs)
}

// RecordSaleTransition counts a sale entering status
func (m *FarmMetrics) RecordSaleTransition(ctx context.Context, tenantID, status string) {
	m.saleTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("status", status),
	))
}

// RecordSettlement records the efficiency of a consignment settlement
func (m *FarmMetrics) RecordSettlement(ctx context.Context, tenantID string, efficiency decimal.Decimal) {
	m.settlementEfficiency.Record(ctx, efficiency.InexactFloat64(),
		metric.WithAttributes(attribute.String("tenant_id", tenantID)))
}
