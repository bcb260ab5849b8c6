package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/cost"
	"github.com/rst/farmcontrol/internal/domain/partner"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Supplier DTOs
// =============================================================================

// CreateSupplierRequest represents a request to create a supplier
type CreateSupplierRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Category string `json:"category" binding:"required,oneof=INPUTS EQUIPMENT SERVICES TRANSPORT CONSULTING OTHER"`
	TaxID    string `json:"tax_id" binding:"max=20"`
	Phone    string `json:"phone" binding:"max=30"`
	Email    string `json:"email" binding:"omitempty,email,max=200"`
	Address  string `json:"address" binding:"max=500"`
	Notes    string `json:"notes" binding:"max=2000"`
}

// UpdateSupplierRequest represents a request to update a supplier.
// The name is fixed once created since cost entries reference it.
type UpdateSupplierRequest struct {
	Category *string `json:"category" binding:"omitempty,oneof=INPUTS EQUIPMENT SERVICES TRANSPORT CONSULTING OTHER"`
	TaxID    *string `json:"tax_id" binding:"omitempty,max=20"`
	Phone    *string `json:"phone" binding:"omitempty,max=30"`
	Email    *string `json:"email" binding:"omitempty,email,max=200"`
	Address  *string `json:"address" binding:"omitempty,max=500"`
	Notes    *string `json:"notes" binding:"omitempty,max=2000"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	CategoryLabel string    `json:"category_label"`
	TaxID         string    `json:"tax_id,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	Active        bool      `json:"active"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SupplierOption is the compact form used by the lookup box and pickers
type SupplierOption struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
}

// SupplierListFilter represents filter options for supplier lists
type SupplierListFilter struct {
	Search   string `form:"search"`
	Name     string `form:"name"`
	Category string `form:"category" binding:"omitempty,oneof=INPUTS EQUIPMENT SERVICES TRANSPORT CONSULTING OTHER"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f SupplierListFilter) toDomain(paged bool) partner.SupplierFilter {
	base := shared.DefaultFilter()
	base.OrderBy = "name"
	base.OrderDir = "asc"
	base.Search = strings.TrimSpace(f.Search)
	if f.OrderBy != "" {
		base.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		base.OrderDir = f.OrderDir
	}
	if paged {
		if f.Page > 0 {
			base.Page = f.Page
		}
		if f.PageSize > 0 {
			base.PageSize = f.PageSize
		}
	} else {
		base.Page, base.PageSize = 1, 0
	}

	filter := partner.SupplierFilter{
		Filter:       base,
		NameContains: strings.TrimSpace(f.Name),
		Category:     partner.SupplierCategory(f.Category),
	}
	switch f.Status {
	case "active":
		active := true
		filter.Active = &active
	case "inactive":
		active := false
		filter.Active = &active
	}
	return filter
}

// PurchaseResponse is one cost entry in a supplier's purchase history
type PurchaseResponse struct {
	ID             uuid.UUID       `json:"id"`
	Date           string          `json:"date"`
	Classification string          `json:"classification"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	InvoiceNumber  string          `json:"invoice_number,omitempty"`
}

// PurchaseHistoryResponse lists the latest purchases from a supplier and their total
type PurchaseHistoryResponse struct {
	SupplierID   uuid.UUID          `json:"supplier_id"`
	SupplierName string             `json:"supplier_name"`
	Purchases    []PurchaseResponse `json:"purchases"`
	Total        decimal.Decimal    `json:"total"`
}

// ToSupplierResponse converts a domain Supplier to a response DTO
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		Category:      string(s.Category),
		CategoryLabel: s.Category.Label(),
		TaxID:         s.TaxID,
		Phone:         s.Phone,
		Email:         s.Email,
		Address:       s.Address,
		Active:        s.Active,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// ToSupplierResponses converts a slice of domain Suppliers to responses
func ToSupplierResponses(suppliers []partner.Supplier) []SupplierResponse {
	responses := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		responses[i] = ToSupplierResponse(&suppliers[i])
	}
	return responses
}

func toSupplierOptions(suppliers []partner.Supplier) []SupplierOption {
	options := make([]SupplierOption, len(suppliers))
	for i, s := range suppliers {
		options[i] = SupplierOption{ID: s.ID, Name: s.Name, Category: string(s.Category)}
	}
	return options
}

// fromSupplierOptions rebuilds active suppliers from cached options for name matching
func fromSupplierOptions(options []SupplierOption) []partner.Supplier {
	suppliers := make([]partner.Supplier, len(options))
	for i, o := range options {
		suppliers[i].ID = o.ID
		suppliers[i].Name = o.Name
		suppliers[i].Category = partner.SupplierCategory(o.Category)
		suppliers[i].Active = true
	}
	return suppliers
}

func toPurchaseResponse(e *cost.CostEntry) PurchaseResponse {
	return PurchaseResponse{
		ID:             e.ID,
		Date:           e.Date.Format("2006-01-02"),
		Classification: string(e.Classification),
		Description:    e.Description,
		Amount:         e.Amount,
		InvoiceNumber:  e.InvoiceNumber,
	}
}
