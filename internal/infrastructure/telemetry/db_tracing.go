package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin plus callbacks that flag slow
// queries and failed statements on the statement span before otelgorm ends it.
// dbSystem is the db.system attribute (postgresql, mysql, sqlite).
func RegisterDBTracing(db *gorm.DB, dbSystem string, slowThreshold time.Duration, logger *zap.Logger) error {
	if err := db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName(dbSystem),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateSpan(tx, slowThreshold) }

	cb := db.Callback()
	for _, reg := range []struct {
		name string
		err  error
	}{
		{"create", cb.Create().Before("gorm:create").Register("farm_timing:before_create", before)},
		{"query", cb.Query().Before("gorm:query").Register("farm_timing:before_query", before)},
		{"update", cb.Update().Before("gorm:update").Register("farm_timing:before_update", before)},
		{"delete", cb.Delete().Before("gorm:delete").Register("farm_timing:before_delete", before)},
		{"row", cb.Row().Before("gorm:row").Register("farm_timing:before_row", before)},
		{"raw", cb.Raw().Before("gorm:raw").Register("farm_timing:before_raw", before)},
		{"create", cb.Create().After("gorm:create").Before("otel:after_create").Register("farm_timing:after_create", after)},
		{"query", cb.Query().After("gorm:query").Before("otel:after_query").Register("farm_timing:after_query", after)},
		{"update", cb.Update().After("gorm:update").Before("otel:after_update").Register("farm_timing:after_update", after)},
		{"delete", cb.Delete().After("gorm:delete").Before("otel:after_delete").Register("farm_timing:after_delete", after)},
		{"row", cb.Row().After("gorm:row").Before("otel:after_row").Register("farm_timing:after_row", after)},
		{"raw", cb.Raw().After("gorm:raw").Before("otel:after_raw").Register("farm_timing:after_raw", after)},
	} {
		if reg.err != nil {
			return fmt.Errorf("register %s tracing callback: %w", reg.name, reg.err)
		}
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", dbSystem),
		zap.Duration("slow_query_threshold", slowThreshold),
	)
	return nil
}

func annotateSpan(tx *gorm.DB, slowThreshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok && slowThreshold > 0 {
		if elapsed := time.Since(start); elapsed > slowThreshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
