package report

import "time"

// Dashboard is the current-month overview of the farm
type Dashboard struct {
	PeriodStart time.Time    `json:"period_start"`
	Costs       CostSummary  `json:"costs"`
	Sales       SalesSummary `json:"sales"`
	GeneratedAt time.Time    `json:"generated_at"`
}
