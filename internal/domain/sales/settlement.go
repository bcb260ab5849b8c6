package sales

import (
	"fmt"
	"time"

	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Settlement errors
var (
	ErrNothingConsumed            = shared.NewDomainError("NOTHING_CONSUMED", "At least one unit must be consumed to settle a consignment")
	ErrSettlementQuantityExceeded = shared.NewDomainError("SETTLEMENT_QUANTITY_EXCEEDED", "Consumed plus lost quantity exceeds the delivered quantity")
)

// Disposition is the operator's count for one delivered line item
type Disposition struct {
	Consumed decimal.Decimal
	Lost     decimal.Decimal
}

// SettlementItem is the reconciled outcome for one line item
type SettlementItem struct {
	Name             string
	Unit             string
	UnitPrice        decimal.Decimal
	OriginalQuantity decimal.Decimal
	Consumed         decimal.Decimal
	Lost             decimal.Decimal
	Returned         decimal.Decimal
	Receivable       decimal.Decimal
	Loss             decimal.Decimal
}

// Settlement (acerto de consumo) fixes what a consignment customer owes
type Settlement struct {
	Items          []SettlementItem
	OriginalAmount decimal.Decimal
	Receivable     decimal.Decimal
	Loss           decimal.Decimal
	// Efficiency is Receivable / OriginalAmount × 100
	Efficiency decimal.Decimal
	Notes      string
	SettledBy  string
	SettledAt  time.Time
}

// CalculateSettlement reconciles a consigned sale against per-item dispositions,
// matched to the sale items by position. It does not modify the sale.
func CalculateSettlement(sale *Sale, dispositions []Disposition) (*Settlement, error) {
	if sale.Status != StatusConsigned {
		return nil, invalidTransition(sale.Status, StatusSettled)
	}
	if len(dispositions) != len(sale.Items) {
		return nil, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Expected %d dispositions, got %d", len(sale.Items), len(dispositions)))
	}

	var negative, exceeded []string
	for i, item := range sale.Items {
		d := dispositions[i]
		if d.Consumed.IsNegative() || d.Lost.IsNegative() {
			negative = append(negative, fmt.Sprintf("%s: quantities cannot be negative", item.Name))
			continue
		}
		if d.Consumed.Add(d.Lost).GreaterThan(item.Quantity) {
			exceeded = append(exceeded, fmt.Sprintf("%s: consumed %s + lost %s exceeds delivered %s",
				item.Name, d.Consumed.String(), d.Lost.String(), item.Quantity.String()))
		}
	}
	if len(negative) > 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Settlement quantities cannot be negative").WithDetails(negative...)
	}
	if len(exceeded) > 0 {
		return nil, ErrSettlementQuantityExceeded.WithDetails(exceeded...)
	}

	settlement := &Settlement{
		Items:          make([]SettlementItem, 0, len(sale.Items)),
		OriginalAmount: sale.TotalAmount,
	}
	receivable, loss := decimal.Zero, decimal.Zero
	for i, item := range sale.Items {
		d := dispositions[i]
		row := SettlementItem{
			Name:             item.Name,
			Unit:             item.Unit,
			UnitPrice:        item.UnitPrice,
			OriginalQuantity: item.Quantity,
			Consumed:         d.Consumed,
			Lost:             d.Lost,
			Returned:         item.Quantity.Sub(d.Consumed).Sub(d.Lost),
			Receivable:       d.Consumed.Mul(item.UnitPrice),
			Loss:             d.Lost.Mul(item.UnitPrice),
		}
		receivable = receivable.Add(row.Receivable)
		loss = loss.Add(row.Loss)
		settlement.Items = append(settlement.Items, row)
	}

	settlement.Receivable = receivable.Round(2)
	settlement.Loss = loss.Round(2)
	if !settlement.Receivable.IsPositive() {
		return nil, ErrNothingConsumed
	}
	settlement.Efficiency = valueobject.Percentage(receivable, sale.TotalAmount, 2)

	return settlement, nil
}
