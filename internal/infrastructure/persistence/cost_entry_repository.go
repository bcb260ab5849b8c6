package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/cost"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCostEntryRepository implements cost.CostEntryRepository using GORM
type GormCostEntryRepository struct {
	db *gorm.DB
}

// NewGormCostEntryRepository creates a new GormCostEntryRepository
func NewGormCostEntryRepository(db *gorm.DB) *GormCostEntryRepository {
	return &GormCostEntryRepository{db: db}
}

// FindByIDForTenant finds a cost entry by ID within a tenant
func (r *GormCostEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cost.CostEntry, error) {
	var model models.CostEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant returns one page of entries matching the filter and the total match count
func (r *GormCostEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter cost.EntryFilter) ([]cost.CostEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CostEntryModel{}).
		Scopes(tenantScope(tenantID), dateRangeScope(filter.Range))

	if len(filter.Classifications) > 0 {
		query = query.Where("classification IN ?", filter.Classifications)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.SupplierName != "" {
		query = query.Where("supplier_name = ?", filter.SupplierName)
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where("(LOWER(description) LIKE ? OR LOWER(category) LIKE ?)", pattern, pattern)
	}

	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count cost entries: %w", err)
	}

	orderBy := ValidateSortField(filter.OrderBy, CostEntrySortFields, "date")
	var rows []models.CostEntryModel
	if err := query.
		Order(orderClause(orderBy, ValidateSortOrder(filter.OrderDir))).
		Scopes(paginate(filter.Filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list cost entries: %w", err)
	}
	return toCostEntries(rows), total, nil
}

// FindByDateRange returns every entry dated within the range, newest first
func (r *GormCostEntryRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, dateRange shared.DateRange) ([]cost.CostEntry, error) {
	var rows []models.CostEntryModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID), dateRangeScope(dateRange)).
		Order("date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list cost entries by date: %w", err)
	}
	return toCostEntries(rows), nil
}

// FindBySupplierName returns the latest entries whose supplier reference equals name
func (r *GormCostEntryRepository) FindBySupplierName(ctx context.Context, tenantID uuid.UUID, supplierName string, limit int) ([]cost.CostEntry, error) {
	query := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("supplier_name = ?", supplierName).
		Order("date DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.CostEntryModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list cost entries by supplier: %w", err)
	}
	return toCostEntries(rows), nil
}

// Save creates or updates a cost entry
func (r *GormCostEntryRepository) Save(ctx context.Context, entry *cost.CostEntry) error {
	if err := r.db.WithContext(ctx).Save(models.CostEntryModelFromDomain(entry)).Error; err != nil {
		return fmt.Errorf("save cost entry: %w", err)
	}
	return nil
}

func toCostEntries(rows []models.CostEntryModel) []cost.CostEntry {
	entries := make([]cost.CostEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries
}

// Ensure GormCostEntryRepository implements CostEntryRepository
var _ cost.CostEntryRepository = (*GormCostEntryRepository)(nil)
