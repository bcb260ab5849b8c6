package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/cost"
	"github.com/rst/farmcontrol/internal/domain/partner"
	"github.com/rst/farmcontrol/internal/domain/sales"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Dec parses a decimal literal and panics on malformed input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Day returns midnight UTC of the given date
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CostParams returns valid variable-cost parameters; override fields as needed
func CostParams() cost.EntryParams {
	return cost.EntryParams{
		Date:           Day(2026, 3, 10),
		Classification: cost.ClassificationVariable,
		Category:       "sementes",
		Description:    "Sementes de alface",
		Quantity:       decimal.NewFromInt(10),
		Unit:           "KG",
		UnitPrice:      Dec("2.50"),
		SupplierName:   "Agro Sul",
	}
}

// NewCostEntry builds a cost entry, applying mutate to the default parameters first
func NewCostEntry(t *testing.T, tenantID uuid.UUID, mutate func(*cost.EntryParams)) *cost.CostEntry {
	t.Helper()
	p := CostParams()
	if mutate != nil {
		mutate(&p)
	}
	entry, err := cost.NewCostEntry(tenantID, p)
	require.NoError(t, err)
	entry.ClearDomainEvents()
	return entry
}

// NewSupplier builds an active supplier in the inputs category
func NewSupplier(t *testing.T, tenantID uuid.UUID, name string) *partner.Supplier {
	t.Helper()
	s, err := partner.NewSupplier(tenantID, name, partner.SupplierCategoryInputs)
	require.NoError(t, err)
	s.ClearDomainEvents()
	return s
}

// LineItem builds a sale line item from decimal literals
func LineItem(t *testing.T, name, qty, unit, price string) sales.LineItem {
	t.Helper()
	item, err := sales.NewLineItem(name, Dec(qty), unit, Dec(price))
	require.NoError(t, err)
	return item
}

// SaleParams returns valid direct cash sale parameters with a single item
func SaleParams(t *testing.T) sales.SaleParams {
	t.Helper()
	return sales.SaleParams{
		Number:       "V202603-001",
		Date:         Day(2026, 3, 12),
		CustomerName: "Mercado Central",
		Modality:     sales.ModalityDirect,
		PaymentType:  sales.PaymentCash,
		Items:        []sales.LineItem{LineItem(t, "Alface", "10", "UN", "3.50")},
	}
}

// NewConsignmentSale builds the consigned sale used by settlement scenarios:
// 20 UN at 2.50 and 10 KG at 2.00 (total 70.00).
func NewConsignmentSale(t *testing.T, tenantID uuid.UUID) *sales.Sale {
	t.Helper()
	p := SaleParams(t)
	p.Number = "V202603-002"
	p.Modality = sales.ModalityConsignment
	p.Items = []sales.LineItem{
		LineItem(t, "Alface", "20", "UN", "2.50"),
		LineItem(t, "Tomate", "10", "KG", "2.00"),
	}
	s, err := sales.NewSale(tenantID, p)
	require.NoError(t, err)
	s.ClearDomainEvents()
	return s
}
