// Package models holds the GORM persistence models. Domain aggregates never carry
// GORM tags; repositories convert through the ToDomain / ...FromDomain helpers.
package models

// All returns every model, in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&CostEntryModel{},
		&SupplierModel{},
		&SaleModel{},
		&SaleItemModel{},
	}
}
