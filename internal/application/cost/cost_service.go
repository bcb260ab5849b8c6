// Package cost implements the cost bookkeeping use cases: recording entries,
// listing and filtering them, monthly summaries and exports.
package cost

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/cost"
	"github.com/rst/farmcontrol/internal/domain/report"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/internal/domain/shared/valueobject"
	"github.com/rst/farmcontrol/internal/infrastructure/cache"
	"github.com/rst/farmcontrol/internal/infrastructure/export"
	"github.com/rst/farmcontrol/internal/infrastructure/logger"
	"github.com/rst/farmcontrol/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultCacheTTL is how long current-month reads stay cached
const DefaultCacheTTL = 60 * time.Second

// ExportHeaders are the column labels of the cost export
var ExportHeaders = []string{
	"Data", "Tipo", "Categoria", "Produto/Serviço", "Qtd", "Un.",
	"Valor Unit. (R$)", "Valor Total (R$)", "Fornecedor", "Nº NF", "Com NF", "Observações",
}

// CostService handles cost entry business operations
type CostService struct {
	entryRepo      cost.CostEntryRepository
	queryCache     shared.QueryCache
	keys           cache.Keys
	ttl            time.Duration
	eventPublisher shared.EventPublisher
	now            func() time.Time
}

// NewCostService creates a new CostService
func NewCostService(entryRepo cost.CostEntryRepository, queryCache shared.QueryCache) *CostService {
	return &CostService{
		entryRepo:      entryRepo,
		queryCache:     queryCache,
		ttl:            DefaultCacheTTL,
		eventPublisher: shared.NoopEventPublisher{},
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CostService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetCacheTTL overrides the current-month cache lifetime
func (s *CostService) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl = ttl
	}
}

// SetCacheKeys overrides the cache key prefix
func (s *CostService) SetCacheKeys(keys cache.Keys) {
	s.keys = keys
}

// Create records a new cost entry
func (s *CostService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCostEntryRequest) (*CostEntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cost", "create",
		attribute.String("classification", req.Classification))
	defer span.End()

	params, err := req.toParams()
	if err != nil {
		return nil, err
	}
	entry, err := cost.NewCostEntry(tenantID, params)
	if err != nil {
		return nil, err
	}

	if err := s.entryRepo.Save(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.invalidate(ctx, tenantID)
	s.publish(ctx, entry)

	logger.FromContext(ctx).Info("Cost entry recorded",
		zap.String("cost_entry_id", entry.ID.String()),
		zap.String("classification", string(entry.Classification)),
		zap.String("amount", entry.Amount.String()),
	)

	response := ToCostEntryResponse(entry)
	return &response, nil
}

// GetByID retrieves a cost entry by ID
func (s *CostService) GetByID(ctx context.Context, tenantID, entryID uuid.UUID) (*CostEntryResponse, error) {
	entry, err := s.entryRepo.FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	response := ToCostEntryResponse(entry)
	return &response, nil
}

// List retrieves a page of cost entries, newest first
func (s *CostService) List(ctx context.Context, tenantID uuid.UUID, filter CostEntryListFilter) ([]CostEntryResponse, int64, error) {
	domainFilter, err := filter.toDomain(true)
	if err != nil {
		return nil, 0, err
	}
	entries, total, err := s.entryRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToCostEntryResponses(entries), total, nil
}

// ListCurrentMonth returns every entry dated in the current month, newest first
func (s *CostService) ListCurrentMonth(ctx context.Context, tenantID uuid.UUID) ([]CostEntryResponse, error) {
	period := shared.CurrentMonth(s.now())
	key := s.keys.Key(tenantID, cache.NamespaceCosts, "current-month", period.From.Format("2006-01"))

	var responses []CostEntryResponse
	err := s.queryCache.GetOrLoad(ctx, key, s.ttl, &responses, func(ctx context.Context) (any, error) {
		entries, err := s.entryRepo.FindByDateRange(ctx, tenantID, period)
		if err != nil {
			return nil, err
		}
		return ToCostEntryResponses(entries), nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// MonthlySummary returns the current-month totals by classification
func (s *CostService) MonthlySummary(ctx context.Context, tenantID uuid.UUID) (*report.CostSummary, error) {
	period := shared.CurrentMonth(s.now())
	key := s.keys.Key(tenantID, cache.NamespaceCosts, "summary", period.From.Format("2006-01"))

	var summary report.CostSummary
	err := s.queryCache.GetOrLoad(ctx, key, s.ttl, &summary, func(ctx context.Context) (any, error) {
		entries, err := s.entryRepo.FindByDateRange(ctx, tenantID, period)
		if err != nil {
			return nil, err
		}
		return report.SummarizeCosts(entries), nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Stats returns total, count and average over every entry matching the filter
func (s *CostService) Stats(ctx context.Context, tenantID uuid.UUID, filter CostEntryListFilter) (*report.CostStats, error) {
	entries, err := s.findAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	stats := report.ComputeCostStats(entries)
	return &stats, nil
}

// Export builds a download of every entry matching the filter
func (s *CostService) Export(ctx context.Context, tenantID uuid.UUID, filter CostEntryListFilter, format export.Format) (*export.Document, error) {
	entries, err := s.findAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		hasInvoice := "Não"
		if e.HasInvoice {
			hasInvoice = "Sim"
		}
		rows[i] = []string{
			e.Date.Format("02/01/2006"),
			e.Classification.Label(),
			e.Category,
			e.Description,
			e.Quantity.String(),
			e.Unit,
			valueobject.FormatBRL(e.UnitPrice),
			valueobject.FormatBRL(e.Amount),
			e.SupplierName,
			e.InvoiceNumber,
			hasInvoice,
			e.Notes,
		}
	}

	table := export.Table{Sheet: "Custos", Headers: ExportHeaders, Rows: rows}
	return export.NewDocument("custos", s.now(), format, table), nil
}

// Categories returns the allowed categories per classification, or for one
// classification when given
func (s *CostService) Categories(classification string) ([]CategoryResponse, error) {
	classes := cost.AllClassifications()
	if classification != "" {
		c := cost.Classification(classification)
		if !c.IsValid() {
			return nil, shared.NewDomainError("INVALID_CLASSIFICATION", "Invalid cost classification: "+classification)
		}
		classes = []cost.Classification{c}
	}

	responses := make([]CategoryResponse, len(classes))
	for i, c := range classes {
		responses[i] = CategoryResponse{
			Classification: string(c),
			Label:          c.Label(),
			Categories:     c.Categories(),
		}
	}
	return responses, nil
}

// Units returns the accepted measurement units
func (s *CostService) Units() []string {
	return cost.Units()
}

func (s *CostService) findAll(ctx context.Context, tenantID uuid.UUID, filter CostEntryListFilter) ([]cost.CostEntry, error) {
	domainFilter, err := filter.toDomain(false)
	if err != nil {
		return nil, err
	}
	entries, _, err := s.entryRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	return entries, err
}

func (s *CostService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if err := s.queryCache.Invalidate(ctx, s.keys.Namespace(tenantID, cache.NamespaceCosts)); err != nil {
		logger.FromContext(ctx).Warn("Failed to invalidate cost cache", zap.Error(err))
	}
}

func (s *CostService) publish(ctx context.Context, entry *cost.CostEntry) {
	if err := s.eventPublisher.Publish(ctx, entry.GetDomainEvents()...); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish cost events", zap.Error(err))
	}
	entry.ClearDomainEvents()
}
