package report

import "github.com/rst/farmcontrol/internal/domain/partner"

// SupplierStats counts suppliers by status
type SupplierStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// ComputeSupplierStats counts active and inactive suppliers
func ComputeSupplierStats(suppliers []partner.Supplier) SupplierStats {
	stats := SupplierStats{Total: len(suppliers)}
	for _, s := range suppliers {
		if s.Active {
			stats.Active++
		}
	}
	stats.Inactive = stats.Total - stats.Active
	return stats
}
