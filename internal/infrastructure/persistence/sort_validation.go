package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort direction to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CostEntrySortFields contains allowed sort fields for cost entries
var CostEntrySortFields = map[string]bool{
	"date":           true,
	"created_at":     true,
	"amount":         true,
	"classification": true,
	"category":       true,
	"supplier_name":  true,
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = map[string]bool{
	"name":       true,
	"category":   true,
	"created_at": true,
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"date":          true,
	"number":        true,
	"customer_name": true,
	"total_amount":  true,
	"status":        true,
	"created_at":    true,
}

// orderClause builds a whitelisted ORDER BY with a stable tie-breaker
func orderClause(field, dir string) string {
	return field + " " + dir + ", created_at " + dir
}
