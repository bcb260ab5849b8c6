package cost

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var _ shared.AggregateRoot = (*CostEntry)(nil)

// CostEntry is a single recorded farm expense.
// Entries are immutable once stored.
type CostEntry struct {
	shared.TenantAggregateRoot
	Date                time.Time
	Classification      Classification
	Category            string
	Description         string
	Quantity            decimal.Decimal
	Unit                string
	UnitPrice           decimal.Decimal
	Amount              decimal.Decimal
	SupplierID          *uuid.UUID
	SupplierName        string
	InvoiceNumber       string
	HasInvoice          bool
	AttachmentURL       string
	Notes               string
	UsefulLifeMonths    int
	MonthlyDepreciation decimal.Decimal
	ProductionLot       string
}

// EntryParams carries the operator input for a new cost entry
type EntryParams struct {
	Date             time.Time
	Classification   Classification
	Category         string
	Description      string
	Quantity         decimal.Decimal
	Unit             string
	UnitPrice        decimal.Decimal
	SupplierID       *uuid.UUID
	SupplierName     string
	InvoiceNumber    string
	HasInvoice       bool
	AttachmentURL    string
	Notes            string
	UsefulLifeMonths int
	ProductionLot    string
}

// NewCostEntry validates the input and builds a cost entry with derived amount
// and, for investments, monthly depreciation.
func NewCostEntry(tenantID uuid.UUID, p EntryParams) (*CostEntry, error) {
	if !p.Classification.IsValid() {
		return nil, shared.NewDomainError("INVALID_CLASSIFICATION", "Invalid cost classification")
	}
	description := strings.TrimSpace(p.Description)
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(description) > 500 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if !p.Classification.AllowsCategory(p.Category) {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category does not belong to classification "+string(p.Classification))
	}
	if !IsValidUnit(p.Unit) {
		return nil, shared.NewDomainError("INVALID_UNIT", "Invalid unit: "+p.Unit)
	}
	if !p.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !p.UnitPrice.IsPositive() {
		return nil, shared.NewDomainError("INVALID_UNIT_PRICE", "Unit price must be positive")
	}
	supplierName := strings.TrimSpace(p.SupplierName)
	if supplierName == "" {
		return nil, shared.NewDomainError("SUPPLIER_REQUIRED", "Supplier is required")
	}
	if p.Date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Date is required")
	}

	amount := p.Quantity.Mul(p.UnitPrice).Round(2)
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}

	entry := &CostEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Date:                p.Date,
		Classification:      p.Classification,
		Category:            p.Category,
		Description:         description,
		Quantity:            p.Quantity,
		Unit:                p.Unit,
		UnitPrice:           p.UnitPrice,
		Amount:              amount,
		SupplierID:          p.SupplierID,
		SupplierName:        supplierName,
		InvoiceNumber:       strings.TrimSpace(p.InvoiceNumber),
		HasInvoice:          p.HasInvoice,
		AttachmentURL:       p.AttachmentURL,
		Notes:               strings.TrimSpace(p.Notes),
		MonthlyDepreciation: decimal.Zero,
	}

	switch p.Classification {
	case ClassificationInvestment:
		months := p.UsefulLifeMonths
		if months == 0 {
			months = DefaultUsefulLifeMonths
		}
		if months < 1 {
			return nil, shared.NewDomainError("INVALID_USEFUL_LIFE", "Useful life must be at least one month")
		}
		entry.UsefulLifeMonths = months
		entry.MonthlyDepreciation = MonthlyDepreciation(amount, months)
	case ClassificationVariable:
		entry.ProductionLot = strings.TrimSpace(p.ProductionLot)
	}

	entry.AddDomainEvent(NewCostEntryRecordedEvent(entry))

	return entry, nil
}

// MonthlyDepreciation spreads amount evenly over the useful life, rounded to cents
func MonthlyDepreciation(amount decimal.Decimal, usefulLifeMonths int) decimal.Decimal {
	if usefulLifeMonths <= 0 {
		return decimal.Zero
	}
	return amount.Div(decimal.NewFromInt(int64(usefulLifeMonths))).Round(2)
}

// IsInvestment reports whether the entry depreciates
func (e *CostEntry) IsInvestment() bool {
	return e.Classification == ClassificationInvestment
}
