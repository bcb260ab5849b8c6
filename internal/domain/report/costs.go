package report

import (
	"github.com/rst/farmcontrol/internal/domain/cost"
	"github.com/shopspring/decimal"
)

// CostSummary is the monthly cost breakdown by classification
type CostSummary struct {
	FixedTotal          decimal.Decimal `json:"fixed_total"`
	VariableTotal       decimal.Decimal `json:"variable_total"`
	InvestmentTotal     decimal.Decimal `json:"investment_total"`
	MonthlyDepreciation decimal.Decimal `json:"monthly_depreciation"` // Sum over investments
	Total               decimal.Decimal `json:"total"`
	Count               int             `json:"count"`
}

// SummarizeCosts partitions entries by classification and sums their amounts.
// Classifications absent from the input contribute zero.
func SummarizeCosts(entries []cost.CostEntry) CostSummary {
	totals := map[cost.Classification]decimal.Decimal{}
	depreciation := decimal.Zero
	for _, e := range entries {
		totals[e.Classification] = totals[e.Classification].Add(e.Amount)
		if e.IsInvestment() {
			depreciation = depreciation.Add(e.MonthlyDepreciation)
		}
	}

	fixed := totals[cost.ClassificationFixed]
	variable := totals[cost.ClassificationVariable]
	investment := totals[cost.ClassificationInvestment]
	return CostSummary{
		FixedTotal:          fixed.Round(2),
		VariableTotal:       variable.Round(2),
		InvestmentTotal:     investment.Round(2),
		MonthlyDepreciation: depreciation.Round(2),
		Total:               fixed.Add(variable).Add(investment).Round(2),
		Count:               len(entries),
	}
}

// CostStats summarizes an arbitrary filtered list of cost entries
type CostStats struct {
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
	Average decimal.Decimal `json:"average"`
}

// ComputeCostStats returns total, count and mean amount of the entries
func ComputeCostStats(entries []cost.CostEntry) CostStats {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	stats := CostStats{Total: total.Round(2), Count: len(entries), Average: decimal.Zero}
	if len(entries) > 0 {
		stats.Average = total.Div(decimal.NewFromInt(int64(len(entries)))).Round(2)
	}
	return stats
}
