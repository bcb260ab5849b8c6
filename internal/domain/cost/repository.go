package cost

import (
	"context"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EntryFilter narrows cost entry listings
type EntryFilter struct {
	shared.Filter
	Classifications []Classification
	MinAmount       *decimal.Decimal
	Range           shared.DateRange
	SupplierName    string
}

// CostEntryRepository persists cost entries. Listings are ordered by date descending.
type CostEntryRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CostEntry, error)
	// FindAllForTenant returns one page of matching entries plus the total match count
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter EntryFilter) ([]CostEntry, int64, error)
	FindByDateRange(ctx context.Context, tenantID uuid.UUID, dateRange shared.DateRange) ([]CostEntry, error)
	// FindBySupplierName returns the most recent entries recorded against the supplier name
	FindBySupplierName(ctx context.Context, tenantID uuid.UUID, supplierName string, limit int) ([]CostEntry, error)
	Save(ctx context.Context, entry *CostEntry) error
}
