package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/shared"
)

// SupplierFilter narrows supplier listings
type SupplierFilter struct {
	shared.Filter
	NameContains string
	Category     SupplierCategory
	// Active filters by status when non-nil
	Active *bool
}

// SupplierRepository persists suppliers
type SupplierRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Supplier, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter SupplierFilter) ([]Supplier, int64, error)
	// FindActive returns every active supplier ordered by name
	FindActive(ctx context.Context, tenantID uuid.UUID) ([]Supplier, error)
	// ExistsActiveByName checks for an active supplier with the same name, ignoring case
	ExistsActiveByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error)
	Save(ctx context.Context, supplier *Supplier) error
}
