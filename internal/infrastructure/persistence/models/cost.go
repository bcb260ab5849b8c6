package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/cost"
	"github.com/shopspring/decimal"
)

// CostEntryModel is the persistence model for cost.CostEntry
type CostEntryModel struct {
	TenantAggregateModel
	Date                time.Time           `gorm:"type:date;not null;index:idx_cost_entries_tenant_date,priority:2"`
	Classification      cost.Classification `gorm:"type:varchar(20);not null;index"`
	Category            string              `gorm:"type:varchar(100);not null"`
	Description         string              `gorm:"type:varchar(500);not null"`
	Quantity            decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Unit                string              `gorm:"type:varchar(20);not null"`
	UnitPrice           decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Amount              decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	SupplierID          *uuid.UUID          `gorm:"type:uuid;index"`
	SupplierName        string              `gorm:"type:varchar(200);not null;index"`
	InvoiceNumber       string              `gorm:"type:varchar(50)"`
	HasInvoice          bool                `gorm:"not null;default:false"`
	AttachmentURL       string              `gorm:"type:varchar(1000)"`
	Notes               string              `gorm:"type:text"`
	UsefulLifeMonths    int                 `gorm:"not null;default:0"`
	MonthlyDepreciation decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	ProductionLot       string              `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (CostEntryModel) TableName() string {
	return "cost_entries"
}

// ToDomain converts the model to a cost entry
func (m *CostEntryModel) ToDomain() *cost.CostEntry {
	return &cost.CostEntry{
		TenantAggregateRoot: m.TenantAggregateModel.ToDomain(),
		Date:                m.Date,
		Classification:      m.Classification,
		Category:            m.Category,
		Description:         m.Description,
		Quantity:            m.Quantity,
		Unit:                m.Unit,
		UnitPrice:           m.UnitPrice,
		Amount:              m.Amount,
		SupplierID:          m.SupplierID,
		SupplierName:        m.SupplierName,
		InvoiceNumber:       m.InvoiceNumber,
		HasInvoice:          m.HasInvoice,
		AttachmentURL:       m.AttachmentURL,
		Notes:               m.Notes,
		UsefulLifeMonths:    m.UsefulLifeMonths,
		MonthlyDepreciation: m.MonthlyDepreciation,
		ProductionLot:       m.ProductionLot,
	}
}

// CostEntryModelFromDomain builds the model for a cost entry
func CostEntryModelFromDomain(e *cost.CostEntry) *CostEntryModel {
	m := &CostEntryModel{
		Date:                e.Date,
		Classification:      e.Classification,
		Category:            e.Category,
		Description:         e.Description,
		Quantity:            e.Quantity,
		Unit:                e.Unit,
		UnitPrice:           e.UnitPrice,
		Amount:              e.Amount,
		SupplierID:          e.SupplierID,
		SupplierName:        e.SupplierName,
		InvoiceNumber:       e.InvoiceNumber,
		HasInvoice:          e.HasInvoice,
		AttachmentURL:       e.AttachmentURL,
		Notes:               e.Notes,
		UsefulLifeMonths:    e.UsefulLifeMonths,
		MonthlyDepreciation: e.MonthlyDepreciation,
		ProductionLot:       e.ProductionLot,
	}
	m.TenantAggregateModel.FromDomain(e.TenantAggregateRoot)
	return m
}
