// Package sales implements the sales use cases: recording direct and consigned
// sales, payment, cancellation and consignment settlement.
package sales

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/report"
	"github.com/rst/farmcontrol/internal/domain/sales"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/internal/domain/shared/valueobject"
	"github.com/rst/farmcontrol/internal/infrastructure/cache"
	"github.com/rst/farmcontrol/internal/infrastructure/export"
	"github.com/rst/farmcontrol/internal/infrastructure/logger"
	"github.com/rst/farmcontrol/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	// DefaultCacheTTL is how long current-month reads stay cached
	DefaultCacheTTL = 30 * time.Second

	lockTTL = 15 * time.Second
)

// ExportHeaders are the column labels of the sales export
var ExportHeaders = []string{
	"Número", "Data", "Cliente", "Telefone", "Modalidade", "Pagamento", "Status",
	"Itens", "Valor Total (R$)", "Valor Final (R$)",
}

// SaleService handles sale business operations
type SaleService struct {
	saleRepo       sales.SaleRepository
	locker         shared.Locker
	queryCache     shared.QueryCache
	keys           cache.Keys
	ttl            time.Duration
	eventPublisher shared.EventPublisher
	now            func() time.Time
}

// NewSaleService creates a new SaleService
func NewSaleService(saleRepo sales.SaleRepository, locker shared.Locker, queryCache shared.QueryCache) *SaleService {
	return &SaleService{
		saleRepo:       saleRepo,
		locker:         locker,
		queryCache:     queryCache,
		ttl:            DefaultCacheTTL,
		eventPublisher: shared.NoopEventPublisher{},
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetCacheTTL overrides the current-month cache lifetime
func (s *SaleService) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl = ttl
	}
}

// SetCacheKeys overrides the cache key prefix
func (s *SaleService) SetCacheKeys(keys cache.Keys) {
	s.keys = keys
}

// Create records a sale. The number is V{YYYYMMDD}-{NNN} with NNN counting
// the sales of the same month; numbering is serialized per tenant and month.
func (s *SaleService) Create(ctx context.Context, tenantID uuid.UUID, req CreateSaleRequest) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales", "create",
		attribute.String("modality", req.Modality),
		attribute.Int("items", len(req.Items)))
	defer span.End()

	params, err := s.toParams(req)
	if err != nil {
		return nil, err
	}

	month := shared.MonthOf(params.Date)
	release, err := s.locker.Acquire(ctx, "sale-number:"+tenantID.String()+":"+month.From.Format("200601"), lockTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	count, err := s.saleRepo.CountInRange(ctx, tenantID, month)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	params.Number = sales.GenerateNumber(params.Date, count)

	sale, err := sales.NewSale(tenantID, params)
	if err != nil {
		return nil, err
	}
	if err := s.saleRepo.Save(ctx, sale); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.invalidate(ctx, tenantID)
	s.publish(ctx, sale)

	logger.FromContext(ctx).Info("Sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("number", sale.Number),
		zap.String("status", string(sale.Status)),
		zap.String("total", sale.TotalAmount.String()),
	)

	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByID retrieves a sale with its items and settlement
func (s *SaleService) GetByID(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves a page of sales, newest first
func (s *SaleService) List(ctx context.Context, tenantID uuid.UUID, filter SaleListFilter) ([]SaleResponse, int64, error) {
	domainFilter, err := filter.toDomain(true)
	if err != nil {
		return nil, 0, err
	}
	list, total, err := s.saleRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSaleResponses(list), total, nil
}

// ListCurrentMonth returns every sale dated in the current month, newest first
func (s *SaleService) ListCurrentMonth(ctx context.Context, tenantID uuid.UUID) ([]SaleResponse, error) {
	period := shared.CurrentMonth(s.now())
	key := s.keys.Key(tenantID, cache.NamespaceSales, "current-month", period.From.Format("2006-01"))

	var responses []SaleResponse
	err := s.queryCache.GetOrLoad(ctx, key, s.ttl, &responses, func(ctx context.Context) (any, error) {
		list, err := s.saleRepo.FindByDateRange(ctx, tenantID, period)
		if err != nil {
			return nil, err
		}
		return ToSaleResponses(list), nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// MonthlySummary returns the current-month totals by status
func (s *SaleService) MonthlySummary(ctx context.Context, tenantID uuid.UUID) (*report.SalesSummary, error) {
	period := shared.CurrentMonth(s.now())
	key := s.keys.Key(tenantID, cache.NamespaceSales, "summary", period.From.Format("2006-01"))

	var summary report.SalesSummary
	err := s.queryCache.GetOrLoad(ctx, key, s.ttl, &summary, func(ctx context.Context) (any, error) {
		list, err := s.saleRepo.FindByDateRange(ctx, tenantID, period)
		if err != nil {
			return nil, err
		}
		return report.SummarizeSales(list), nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// MarkPaid records the payment of a pending sale
func (s *SaleService) MarkPaid(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	return s.transition(ctx, tenantID, saleID, "mark_paid", func(sale *sales.Sale) error {
		return sale.MarkPaid(s.now())
	})
}

// Cancel cancels a consigned sale
func (s *SaleService) Cancel(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	return s.transition(ctx, tenantID, saleID, "cancel", func(sale *sales.Sale) error {
		return sale.Cancel(s.now())
	})
}

// Settle reconciles a consigned sale and records what the customer owes
func (s *SaleService) Settle(ctx context.Context, tenantID, saleID uuid.UUID, req SettleSaleRequest) (*SaleResponse, error) {
	return s.transition(ctx, tenantID, saleID, "settle", func(sale *sales.Sale) error {
		settlement, err := sales.CalculateSettlement(sale, req.dispositions())
		if err != nil {
			return err
		}
		return sale.Settle(settlement, req.Notes, req.SettledBy, s.now())
	})
}

// PreviewSettlement computes a settlement without applying it
func (s *SaleService) PreviewSettlement(ctx context.Context, tenantID, saleID uuid.UUID, req SettleSaleRequest) (*SettlementResponse, error) {
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	settlement, err := sales.CalculateSettlement(sale, req.dispositions())
	if err != nil {
		return nil, err
	}
	response := ToSettlementResponse(settlement)
	return &response, nil
}

// Export builds a download of every sale matching the filter
func (s *SaleService) Export(ctx context.Context, tenantID uuid.UUID, filter SaleListFilter, format export.Format) (*export.Document, error) {
	domainFilter, err := filter.toDomain(false)
	if err != nil {
		return nil, err
	}
	list, _, err := s.saleRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(list))
	for i, sale := range list {
		final := ""
		if sale.FinalAmount != nil {
			final = valueobject.FormatBRL(*sale.FinalAmount)
		}
		rows[i] = []string{
			sale.Number,
			sale.Date.Format("02/01/2006"),
			sale.CustomerName,
			sale.CustomerPhone,
			sale.Modality.Label(),
			sale.PaymentType.Label(),
			sale.Status.Label(),
			strconv.Itoa(sale.ItemCount()),
			valueobject.FormatBRL(sale.TotalAmount),
			final,
		}
	}

	table := export.Table{Sheet: "Vendas", Headers: ExportHeaders, Rows: rows}
	return export.NewDocument("vendas", s.now(), format, table), nil
}

// transition loads the sale under a per-sale lock, applies fn and saves the result
func (s *SaleService) transition(ctx context.Context, tenantID, saleID uuid.UUID, method string, fn func(*sales.Sale) error) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales", method,
		attribute.String("sale_id", saleID.String()))
	defer span.End()

	release, err := s.locker.Acquire(ctx, "sale:"+saleID.String(), lockTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	from := sale.Status
	if err := fn(sale); err != nil {
		return nil, err
	}
	if err := s.saleRepo.Save(ctx, sale); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("%s sale %s: %w", method, sale.Number, err)
	}

	s.invalidate(ctx, tenantID)
	s.publish(ctx, sale)

	logger.FromContext(ctx).Info("Sale status changed",
		zap.String("sale_id", sale.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(sale.Status)),
	)

	response := ToSaleResponse(sale)
	return &response, nil
}

func (s *SaleService) toParams(req CreateSaleRequest) (sales.SaleParams, error) {
	date, err := time.Parse(DateLayout, req.Date)
	if err != nil {
		return sales.SaleParams{}, shared.NewDomainError("INVALID_DATE", "Date must use the YYYY-MM-DD format")
	}
	phone, err := valueobject.NormalizePhone(req.CustomerPhone)
	if err != nil {
		return sales.SaleParams{}, err
	}

	params := sales.SaleParams{
		Date:          date,
		CustomerName:  req.CustomerName,
		CustomerPhone: phone,
		Modality:      sales.Modality(req.Modality),
		PaymentType:   sales.PaymentType(req.PaymentType),
		Items:         make([]sales.LineItem, 0, len(req.Items)),
		Notes:         req.Notes,
	}
	if req.DueDate != "" {
		due, err := time.Parse(DateLayout, req.DueDate)
		if err != nil {
			return sales.SaleParams{}, shared.NewDomainError("INVALID_DATE", "Due date must use the YYYY-MM-DD format")
		}
		params.DueDate = &due
	}
	for _, item := range req.Items {
		line, err := sales.NewLineItem(item.Name, item.Quantity, item.Unit, item.UnitPrice)
		if err != nil {
			return sales.SaleParams{}, err
		}
		params.Items = append(params.Items, line)
	}
	return params, nil
}

func (s *SaleService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if err := s.queryCache.Invalidate(ctx, s.keys.Namespace(tenantID, cache.NamespaceSales)); err != nil {
		logger.FromContext(ctx).Warn("Failed to invalidate sales cache", zap.Error(err))
	}
}

func (s *SaleService) publish(ctx context.Context, sale *sales.Sale) {
	if err := s.eventPublisher.Publish(ctx, sale.GetDomainEvents()...); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish sale events", zap.Error(err))
	}
	sale.ClearDomainEvents()
}
