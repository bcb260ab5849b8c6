package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/partner"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSupplierRepository implements partner.SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByIDForTenant finds a supplier by ID within a tenant
func (r *GormSupplierRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant returns one page of suppliers matching the filter and the total match count
func (r *GormSupplierRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter partner.SupplierFilter) ([]partner.Supplier, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SupplierModel{}).Scopes(tenantScope(tenantID))

	if filter.NameContains != "" {
		query = query.Where("name_key LIKE ?", "%"+partner.FoldName(filter.NameContains)+"%")
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count suppliers: %w", err)
	}

	orderBy := ValidateSortField(filter.OrderBy, SupplierSortFields, "name")
	if orderBy == "name" {
		orderBy = "name_key"
	}
	orderDir := "ASC"
	if filter.OrderDir != "" {
		orderDir = ValidateSortOrder(filter.OrderDir)
	}

	var rows []models.SupplierModel
	if err := query.
		Order(orderBy + " " + orderDir).
		Scopes(paginate(filter.Filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list suppliers: %w", err)
	}
	return toSuppliers(rows), total, nil
}

// FindActive returns every active supplier ordered by name
func (r *GormSupplierRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]partner.Supplier, error) {
	var rows []models.SupplierModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("active = ?", true).
		Order("name_key ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list active suppliers: %w", err)
	}
	return toSuppliers(rows), nil
}

// ExistsActiveByName reports whether an active supplier already uses the name, ignoring case
func (r *GormSupplierRepository) ExistsActiveByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SupplierModel{}).
		Scopes(tenantScope(tenantID)).
		Where("name_key = ? AND active = ?", partner.FoldName(name), true).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check supplier name: %w", err)
	}
	return count > 0, nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	if err := r.db.WithContext(ctx).Save(models.SupplierModelFromDomain(supplier)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists.WithDetails("name: an active supplier already uses " + supplier.Name)
		}
		return fmt.Errorf("save supplier: %w", err)
	}
	return nil
}

func toSuppliers(rows []models.SupplierModel) []partner.Supplier {
	suppliers := make([]partner.Supplier, len(rows))
	for i := range rows {
		suppliers[i] = *rows[i].ToDomain()
	}
	return suppliers
}

// Ensure GormSupplierRepository implements SupplierRepository
var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
