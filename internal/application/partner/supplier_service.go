package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/cost"
	"github.com/rst/farmcontrol/internal/domain/partner"
	"github.com/rst/farmcontrol/internal/domain/report"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/internal/domain/shared/valueobject"
	"github.com/rst/farmcontrol/internal/infrastructure/cache"
	"github.com/rst/farmcontrol/internal/infrastructure/export"
	"github.com/rst/farmcontrol/internal/infrastructure/logger"
	"github.com/rst/farmcontrol/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	// DefaultCacheTTL is how long the supplier roster and stats stay cached
	DefaultCacheTTL = 60 * time.Second
	// PurchaseHistoryLimit is the number of recent purchases shown per supplier
	PurchaseHistoryLimit = 10

	nameLockTTL = 10 * time.Second
)

// ExportHeaders are the column labels of the supplier export
var ExportHeaders = []string{"Nome", "Tipo", "Telefone", "E-mail", "Status"}

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo   partner.SupplierRepository
	entryRepo      cost.CostEntryRepository
	locker         shared.Locker
	queryCache     shared.QueryCache
	keys           cache.Keys
	ttl            time.Duration
	eventPublisher shared.EventPublisher
	now            func() time.Time
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(
	supplierRepo partner.SupplierRepository,
	entryRepo cost.CostEntryRepository,
	locker shared.Locker,
	queryCache shared.QueryCache,
) *SupplierService {
	return &SupplierService{
		supplierRepo:   supplierRepo,
		entryRepo:      entryRepo,
		locker:         locker,
		queryCache:     queryCache,
		ttl:            DefaultCacheTTL,
		eventPublisher: shared.NoopEventPublisher{},
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SupplierService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetCacheTTL overrides the cache lifetime
func (s *SupplierService) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl = ttl
	}
}

// SetCacheKeys overrides the cache key prefix
func (s *SupplierService) SetCacheKeys(keys cache.Keys) {
	s.keys = keys
}

// Create creates a new supplier. Active supplier names are unique ignoring case.
func (s *SupplierService) Create(ctx context.Context, tenantID uuid.UUID, req CreateSupplierRequest) (*SupplierResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supplier", "create")
	defer span.End()

	supplier, err := partner.NewSupplier(tenantID, req.Name, partner.SupplierCategory(req.Category))
	if err != nil {
		return nil, err
	}
	phone, err := valueobject.NormalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}
	if err := supplier.SetContact(req.TaxID, phone, req.Email, req.Address); err != nil {
		return nil, err
	}
	if req.Notes != "" {
		supplier.SetNotes(req.Notes)
	}

	// Serialize creation per folded name so two requests cannot both pass the check
	release, err := s.locker.Acquire(ctx, "supplier-name:"+tenantID.String()+":"+supplier.FoldedName(), nameLockTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	exists, err := s.supplierRepo.ExistsActiveByName(ctx, tenantID, supplier.Name)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An active supplier named "+supplier.Name+" already exists")
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.invalidate(ctx, tenantID)
	s.publish(ctx, supplier)

	logger.FromContext(ctx).Info("Supplier created",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("category", string(supplier.Category)),
	)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, tenantID, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, supplierID)
	if err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// Update changes contact data, category or notes
func (s *SupplierService) Update(ctx context.Context, tenantID, supplierID uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, supplierID)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		if err := supplier.SetCategory(partner.SupplierCategory(*req.Category)); err != nil {
			return nil, err
		}
	}

	if req.TaxID != nil || req.Phone != nil || req.Email != nil || req.Address != nil {
		taxID := supplier.TaxID
		phone := supplier.Phone
		email := supplier.Email
		address := supplier.Address

		if req.TaxID != nil {
			taxID = *req.TaxID
		}
		if req.Phone != nil {
			normalized, err := valueobject.NormalizePhone(*req.Phone)
			if err != nil {
				return nil, err
			}
			phone = normalized
		}
		if req.Email != nil {
			email = *req.Email
		}
		if req.Address != nil {
			address = *req.Address
		}

		if err := supplier.SetContact(taxID, phone, email, address); err != nil {
			return nil, err
		}
	}

	if req.Notes != nil {
		supplier.SetNotes(*req.Notes)
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// ToggleActive flips a supplier between active and inactive
func (s *SupplierService) ToggleActive(ctx context.Context, tenantID, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, supplierID)
	if err != nil {
		return nil, err
	}

	if !supplier.Active {
		// Reactivating must not produce two active suppliers with one name
		exists, err := s.supplierRepo.ExistsActiveByName(ctx, tenantID, supplier.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "An active supplier named "+supplier.Name+" already exists")
		}
	}

	supplier.ToggleActive()
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	s.invalidate(ctx, tenantID)
	s.publish(ctx, supplier)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// List retrieves a page of suppliers ordered by name
func (s *SupplierService) List(ctx context.Context, tenantID uuid.UUID, filter SupplierListFilter) ([]SupplierResponse, int64, error) {
	suppliers, total, err := s.supplierRepo.FindAllForTenant(ctx, tenantID, filter.toDomain(true))
	if err != nil {
		return nil, 0, err
	}
	return ToSupplierResponses(suppliers), total, nil
}

// Stats counts suppliers by status
func (s *SupplierService) Stats(ctx context.Context, tenantID uuid.UUID) (*report.SupplierStats, error) {
	var stats report.SupplierStats
	key := s.keys.Key(tenantID, cache.NamespaceSuppliers, "stats")
	err := s.queryCache.GetOrLoad(ctx, key, s.ttl, &stats, func(ctx context.Context) (any, error) {
		suppliers, _, err := s.supplierRepo.FindAllForTenant(ctx, tenantID, SupplierListFilter{}.toDomain(false))
		if err != nil {
			return nil, err
		}
		return report.ComputeSupplierStats(suppliers), nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Lookup returns active suppliers whose name contains term. The limit defaults
// to the quick search size and is capped at the picker size.
// Lookup never fails: a store error yields an empty result.
func (s *SupplierService) Lookup(ctx context.Context, tenantID uuid.UUID, term string, limit int) []SupplierOption {
	if limit <= 0 {
		limit = partner.QuickSearchLimit
	}
	limit = min(limit, partner.PickerLimit)

	var roster []SupplierOption
	key := s.keys.Key(tenantID, cache.NamespaceSuppliers, "active")
	err := s.queryCache.GetOrLoad(ctx, key, s.ttl, &roster, func(ctx context.Context) (any, error) {
		suppliers, err := s.supplierRepo.FindActive(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		return toSupplierOptions(suppliers), nil
	})
	if err != nil {
		logger.FromContext(ctx).Warn("Supplier lookup failed", zap.String("term", term), zap.Error(err))
		return []SupplierOption{}
	}

	return toSupplierOptions(partner.MatchByName(fromSupplierOptions(roster), term, limit))
}

// PurchaseHistory returns the latest cost entries recorded against the supplier's name
func (s *SupplierService) PurchaseHistory(ctx context.Context, tenantID, supplierID uuid.UUID) (*PurchaseHistoryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supplier", "purchase_history",
		attribute.String("supplier_id", supplierID.String()))
	defer span.End()

	supplier, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, supplierID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entryRepo.FindBySupplierName(ctx, tenantID, supplier.Name, PurchaseHistoryLimit)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	history := &PurchaseHistoryResponse{
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		Purchases:    make([]PurchaseResponse, len(entries)),
		Total:        decimal.Zero,
	}
	for i := range entries {
		history.Purchases[i] = toPurchaseResponse(&entries[i])
		history.Total = history.Total.Add(entries[i].Amount)
	}
	history.Total = history.Total.Round(2)
	return history, nil
}

// Export builds a download of every supplier matching the filter
func (s *SupplierService) Export(ctx context.Context, tenantID uuid.UUID, filter SupplierListFilter, format export.Format) (*export.Document, error) {
	suppliers, _, err := s.supplierRepo.FindAllForTenant(ctx, tenantID, filter.toDomain(false))
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(suppliers))
	for i, sup := range suppliers {
		status := "Inativo"
		if sup.Active {
			status = "Ativo"
		}
		rows[i] = []string{sup.Name, sup.Category.Label(), sup.Phone, sup.Email, status}
	}

	table := export.Table{Sheet: "Fornecedores", Headers: ExportHeaders, Rows: rows}
	return export.NewDocument("fornecedores", s.now(), format, table), nil
}

func (s *SupplierService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if err := s.queryCache.Invalidate(ctx, s.keys.Namespace(tenantID, cache.NamespaceSuppliers)); err != nil {
		logger.FromContext(ctx).Warn("Failed to invalidate supplier cache", zap.Error(err))
	}
}

func (s *SupplierService) publish(ctx context.Context, supplier *partner.Supplier) {
	if err := s.eventPublisher.Publish(ctx, supplier.GetDomainEvents()...); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish supplier events", zap.Error(err))
	}
	supplier.ClearDomainEvents()
}
