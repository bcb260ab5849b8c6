package event

import (
	"context"

	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log line per domain event
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates an AuditLogHandler
func NewAuditLogHandler(base *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: base.Named("audit")}
}

// EventTypes subscribes to every event
func (h *AuditLogHandler) EventTypes() []string { return nil }

// Handle logs the event with its JSON payload. The request id is taken from ctx when present.
func (h *AuditLogHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	env, err := NewEnvelope(evt)
	if err != nil {
		return err
	}
	fields := []zap.Field{
		zap.String("event_type", env.Type),
		zap.String("event_id", env.ID.String()),
		zap.String("aggregate_type", env.AggregateType),
		zap.String("aggregate_id", env.AggregateID.String()),
		zap.String("tenant_id", env.TenantID.String()),
		zap.Time("occurred_at", env.OccurredAt),
		zap.ByteString("payload", env.Payload),
	}
	if id := logger.RequestID(ctx); id != "" {
		fields = append(fields, zap.String(logger.RequestIDKey, id))
	}
	h.logger.Info("Domain event", fields...)
	return nil
}
