package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/shared"
)

// TenantAggregateModel holds the persistence columns shared by every farm-scoped aggregate
type TenantAggregateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Version   int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// FromDomain copies identity, tenant and version from the aggregate root
func (m *TenantAggregateModel) FromDomain(root shared.TenantAggregateRoot) {
	m.ID = root.ID
	m.TenantID = root.TenantID
	m.Version = root.Version
	m.CreatedAt = root.CreatedAt
	m.UpdatedAt = root.UpdatedAt
}

// ToDomain rebuilds the aggregate root. Pending domain events are not persisted.
func (m *TenantAggregateModel) ToDomain() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		TenantID: m.TenantID,
	}
}
