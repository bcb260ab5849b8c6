package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rst/farmcontrol/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func TestSetup_Disabled(t *testing.T) {
	ctx := context.Background()
	tel, err := Setup(ctx, config.TelemetryConfig{ServiceName: "farm-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tel.Tracer.IsEnabled())
	assert.False(t, tel.Meter.IsEnabled())
	assert.False(t, tel.Logs.IsEnabled())
	assert.False(t, tel.Profiler.IsEnabled())
	require.NotNil(t, tel.Metrics)

	// no-op instruments accept records
	tel.Metrics.RecordCostEntry(ctx, "t", "FIXED", decimal.NewFromInt(10))
	assert.Equal(t, zapcore.NewNopCore(), tel.Logs.Core(zapcore.InfoLevel))
	assert.NoError(t, tel.Shutdown(ctx))
}

func TestNewProfiler_RequiresAddress(t *testing.T) {
	_, err := NewProfiler(config.TelemetryConfig{ProfilingEnabled: true}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server address is required")
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestFarmMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	m, err := NewFarmMetrics(provider.Meter(MeterName))
	require.NoError(t, err)

	m.RecordCostEntry(ctx, "tenant-1", "FIXED", decimal.RequireFromString("90.00"))
	m.RecordCostEntry(ctx, "tenant-1", "FIXED", decimal.RequireFromString("10.50"))
	m.RecordSaleCreated(ctx, "tenant-1", "CONSIGNMENT", "TERM", decimal.RequireFromString("70"))
	m.RecordSaleTransition(ctx, "tenant-1", "SETTLED")
	m.RecordSettlement(ctx, "tenant-1", decimal.RequireFromString("78.57"))

	data := collect(t, reader)

	costs := data["farm.costs.recorded"].(metricdata.Sum[int64])
	require.Len(t, costs.DataPoints, 1)
	assert.Equal(t, int64(2), costs.DataPoints[0].Value)
	class, ok := costs.DataPoints[0].Attributes.Value(attribute.Key("classification"))
	require.True(t, ok)
	assert.Equal(t, "FIXED", class.AsString())

	amount := data["farm.costs.amount"].(metricdata.Sum[float64])
	assert.InDelta(t, 100.5, amount.DataPoints[0].Value, 1e-9)

	sales := data["farm.sales.created"].(metricdata.Sum[int64])
	assert.Equal(t, int64(1), sales.DataPoints[0].Value)

	transitions := data["farm.sales.transitions"].(metricdata.Sum[int64])
	assert.Equal(t, int64(1), transitions.DataPoints[0].Value)

	eff := data["farm.settlement.efficiency"].(metricdata.Histogram[float64])
	require.Len(t, eff.DataPoints, 1)
	assert.Equal(t, uint64(1), eff.DataPoints[0].Count)
	assert.InDelta(t, 78.57, eff.DataPoints[0].Sum, 1e-9)
}

func TestStartServiceSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctx, span := tp.Tracer(TracerName).Start(context.Background(), "parent")
	assert.NotEmpty(t, TraceID(ctx))
	RecordError(span, errors.New("settlement rejected"))
	RecordError(span, nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "settlement rejected", ended[0].Status().Description)

	assert.Empty(t, TraceID(context.Background()))
}

func TestAnnotateSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctx, span := tp.Tracer("test").Start(context.Background(), "gorm.Query")
	ctx = context.WithValue(ctx, queryStartKey{}, time.Now().Add(-time.Second))
	tx := &gorm.DB{
		Config:    &gorm.Config{},
		Statement: &gorm.Statement{Context: ctx, Table: "sales", DB: &gorm.DB{RowsAffected: 3}},
		Error:     errors.New("deadlock detected"),
	}
	annotateSpan(tx, 200*time.Millisecond)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "sales", attrs["db.sql.table"].AsString())
	assert.Equal(t, int64(3), attrs["db.rows_affected"].AsInt64())
	assert.True(t, attrs["db.slow_query"].AsBool())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestAnnotateSpan_NotFoundIsNotAnError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctx, span := tp.Tracer("test").Start(context.Background(), "gorm.Query")
	annotateSpan(&gorm.DB{
		Config:    &gorm.Config{},
		Statement: &gorm.Statement{Context: ctx, Table: "suppliers", DB: &gorm.DB{}},
		Error:     gorm.ErrRecordNotFound,
	}, 0)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
}
