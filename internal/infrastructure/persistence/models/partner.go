package models

import (
	"github.com/rst/farmcontrol/internal/domain/partner"
)

// SupplierModel is the persistence model for partner.Supplier.
// NameKey holds the case-folded name used for duplicate checks.
type SupplierModel struct {
	TenantAggregateModel
	Name     string                   `gorm:"type:varchar(200);not null"`
	NameKey  string                   `gorm:"type:varchar(200);not null;index:idx_suppliers_tenant_name_key,priority:2"`
	TaxID    string                   `gorm:"type:varchar(20)"`
	Phone    string                   `gorm:"type:varchar(30)"`
	Email    string                   `gorm:"type:varchar(200)"`
	Address  string                   `gorm:"type:text"`
	Category partner.SupplierCategory `gorm:"type:varchar(20);not null"`
	Active   bool                     `gorm:"not null;index"`
	Notes    string                   `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the model to a supplier
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		TenantAggregateRoot: m.TenantAggregateModel.ToDomain(),
		Name:                m.Name,
		TaxID:               m.TaxID,
		Phone:               m.Phone,
		Email:               m.Email,
		Address:             m.Address,
		Category:            m.Category,
		Active:              m.Active,
		Notes:               m.Notes,
	}
}

// SupplierModelFromDomain builds the model for a supplier
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{
		Name:     s.Name,
		NameKey:  s.FoldedName(),
		TaxID:    s.TaxID,
		Phone:    s.Phone,
		Email:    s.Email,
		Address:  s.Address,
		Category: s.Category,
		Active:   s.Active,
		Notes:    s.Notes,
	}
	m.TenantAggregateModel.FromDomain(s.TenantAggregateRoot)
	return m
}
