package report

import (
	"github.com/rst/farmcontrol/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// StatusTotal is the amount and count of sales in one status
type StatusTotal struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// SalesSummary is the monthly sales breakdown by status
type SalesSummary struct {
	ByStatus      map[sales.Status]StatusTotal `json:"by_status"`
	Total         decimal.Decimal              `json:"total"`
	Count         int                          `json:"count"`
	AverageTicket decimal.Decimal              `json:"average_ticket"`
	ItemsSold     int                          `json:"items_sold"`
}

// Amount returns the total for one status
func (s SalesSummary) Amount(status sales.Status) decimal.Decimal {
	return s.ByStatus[status].Amount
}

// SummarizeSales partitions sales by status and sums their totals.
// Every status is present in the result, zero when absent from the input.
func SummarizeSales(list []sales.Sale) SalesSummary {
	sums := make(map[sales.Status]decimal.Decimal, len(sales.AllStatuses()))
	counts := make(map[sales.Status]int, len(sales.AllStatuses()))
	total := decimal.Zero
	items := 0
	for _, s := range list {
		sums[s.Status] = sums[s.Status].Add(s.TotalAmount)
		counts[s.Status]++
		total = total.Add(s.TotalAmount)
		items += s.ItemCount()
	}

	summary := SalesSummary{
		ByStatus:      make(map[sales.Status]StatusTotal, len(sales.AllStatuses())),
		Total:         total.Round(2),
		Count:         len(list),
		AverageTicket: decimal.Zero,
		ItemsSold:     items,
	}
	for _, status := range sales.AllStatuses() {
		summary.ByStatus[status] = StatusTotal{Amount: sums[status].Round(2), Count: counts[status]}
	}
	if summary.Count > 0 {
		summary.AverageTicket = total.Div(decimal.NewFromInt(int64(summary.Count))).Round(2)
	}
	return summary
}
