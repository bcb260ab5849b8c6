package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/sales"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements sales.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindByIDForTenant finds a sale with its items by ID within a tenant
func (r *GormSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Scopes(preloadItems).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant returns one page of sales matching the filter and the total match count
func (r *GormSaleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter sales.SaleFilter) ([]sales.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Scopes(tenantScope(tenantID), dateRangeScope(filter.Range))

	if filter.CustomerContains != "" {
		query = query.Where("LOWER(customer_name) LIKE ?", containsPattern(filter.CustomerContains))
	}
	if len(filter.PaymentTypes) > 0 {
		query = query.Where("payment_type IN ?", filter.PaymentTypes)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	orderBy := ValidateSortField(filter.OrderBy, SaleSortFields, "date")
	var rows []models.SaleModel
	if err := query.
		Scopes(preloadItems, paginate(filter.Filter)).
		Order(orderClause(orderBy, ValidateSortOrder(filter.OrderDir))).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	return toSales(rows), total, nil
}

// FindByDateRange returns every sale dated within the range, newest first
func (r *GormSaleRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, dateRange shared.DateRange) ([]sales.Sale, error) {
	var rows []models.SaleModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID), dateRangeScope(dateRange), preloadItems).
		Order("date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list sales by date: %w", err)
	}
	return toSales(rows), nil
}

// CountInRange counts sales dated within the range
func (r *GormSaleRepository) CountInRange(ctx context.Context, tenantID uuid.UUID, dateRange shared.DateRange) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Scopes(tenantScope(tenantID), dateRangeScope(dateRange)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return count, nil
}

// Save writes the sale row and its item rows in one transaction
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	model := models.SaleModelFromDomain(sale)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model.Items).Error
	})
	if err != nil {
		return fmt.Errorf("save sale %s: %w", sale.Number, err)
	}
	return nil
}

func toSales(rows []models.SaleModel) []sales.Sale {
	out := make([]sales.Sale, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormSaleRepository implements SaleRepository
var _ sales.SaleRepository = (*GormSaleRepository)(nil)
