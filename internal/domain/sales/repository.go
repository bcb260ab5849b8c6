package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/shared"
)

// SaleFilter narrows sale listings
type SaleFilter struct {
	shared.Filter
	CustomerContains string
	PaymentTypes     []PaymentType
	Statuses         []Status
	Range            shared.DateRange
}

// SaleRepository persists sales together with their line items and settlement.
// Listings are ordered by date descending.
type SaleRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter SaleFilter) ([]Sale, int64, error)
	FindByDateRange(ctx context.Context, tenantID uuid.UUID, dateRange shared.DateRange) ([]Sale, error)
	// CountInRange counts sales dated within the range, used for numbering
	CountInRange(ctx context.Context, tenantID uuid.UUID, dateRange shared.DateRange) (int64, error)
	// Save writes the sale and its items atomically
	Save(ctx context.Context, sale *Sale) error
}
