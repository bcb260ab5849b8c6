package cost

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/cost"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format accepted and produced by the API
const DateLayout = "2006-01-02"

// CreateCostEntryRequest represents a request to record a cost entry
type CreateCostEntryRequest struct {
	Date             string          `json:"date" binding:"required,datetime=2006-01-02"`
	Classification   string          `json:"classification" binding:"required,oneof=FIXED VARIABLE INVESTMENT"`
	Category         string          `json:"category" binding:"required,max=50"`
	Description      string          `json:"description" binding:"required,max=500"`
	Quantity         decimal.Decimal `json:"quantity"`
	Unit             string          `json:"unit" binding:"required,max=10"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	SupplierID       *uuid.UUID      `json:"supplier_id"`
	SupplierName     string          `json:"supplier_name" binding:"required,max=200"`
	InvoiceNumber    string          `json:"invoice_number" binding:"max=50"`
	HasInvoice       bool            `json:"has_invoice"`
	AttachmentURL    string          `json:"attachment_url" binding:"omitempty,url,max=500"`
	Notes            string          `json:"notes" binding:"max=2000"`
	UsefulLifeMonths int             `json:"useful_life_months" binding:"min=0,max=600"`
	ProductionLot    string          `json:"production_lot" binding:"max=100"`
}

// toParams converts the request into domain parameters
func (r CreateCostEntryRequest) toParams() (cost.EntryParams, error) {
	date, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return cost.EntryParams{}, shared.NewDomainError("INVALID_DATE", "Date must use the YYYY-MM-DD format")
	}
	return cost.EntryParams{
		Date:             date,
		Classification:   cost.Classification(r.Classification),
		Category:         r.Category,
		Description:      r.Description,
		Quantity:         r.Quantity,
		Unit:             r.Unit,
		UnitPrice:        r.UnitPrice,
		SupplierID:       r.SupplierID,
		SupplierName:     r.SupplierName,
		InvoiceNumber:    r.InvoiceNumber,
		HasInvoice:       r.HasInvoice,
		AttachmentURL:    r.AttachmentURL,
		Notes:            r.Notes,
		UsefulLifeMonths: r.UsefulLifeMonths,
		ProductionLot:    r.ProductionLot,
	}, nil
}

// CostEntryResponse represents a cost entry in API responses
type CostEntryResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Date                string          `json:"date"`
	Classification      string          `json:"classification"`
	ClassificationLabel string          `json:"classification_label"`
	Category            string          `json:"category"`
	Description         string          `json:"description"`
	Quantity            decimal.Decimal `json:"quantity"`
	Unit                string          `json:"unit"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	Amount              decimal.Decimal `json:"amount"`
	SupplierID          *uuid.UUID      `json:"supplier_id,omitempty"`
	SupplierName        string          `json:"supplier_name"`
	InvoiceNumber       string          `json:"invoice_number,omitempty"`
	HasInvoice          bool            `json:"has_invoice"`
	AttachmentURL       string          `json:"attachment_url,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	UsefulLifeMonths    int             `json:"useful_life_months,omitempty"`
	MonthlyDepreciation decimal.Decimal `json:"monthly_depreciation"`
	ProductionLot       string          `json:"production_lot,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// ToCostEntryResponse converts a domain CostEntry to a response DTO
func ToCostEntryResponse(e *cost.CostEntry) CostEntryResponse {
	return CostEntryResponse{
		ID:                  e.ID,
		Date:                e.Date.Format(DateLayout),
		Classification:      string(e.Classification),
		ClassificationLabel: e.Classification.Label(),
		Category:            e.Category,
		Description:         e.Description,
		Quantity:            e.Quantity,
		Unit:                e.Unit,
		UnitPrice:           e.UnitPrice,
		Amount:              e.Amount,
		SupplierID:          e.SupplierID,
		SupplierName:        e.SupplierName,
		InvoiceNumber:       e.InvoiceNumber,
		HasInvoice:          e.HasInvoice,
		AttachmentURL:       e.AttachmentURL,
		Notes:               e.Notes,
		UsefulLifeMonths:    e.UsefulLifeMonths,
		MonthlyDepreciation: e.MonthlyDepreciation,
		ProductionLot:       e.ProductionLot,
		CreatedAt:           e.CreatedAt,
	}
}

// ToCostEntryResponses converts a slice of domain CostEntries to responses
func ToCostEntryResponses(entries []cost.CostEntry) []CostEntryResponse {
	responses := make([]CostEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToCostEntryResponse(&entries[i])
	}
	return responses
}

// CostEntryListFilter represents filter options for cost entry lists
type CostEntryListFilter struct {
	Search          string   `form:"search"`
	Classifications []string `form:"classification" binding:"omitempty,dive,oneof=FIXED VARIABLE INVESTMENT"`
	MinAmount       string   `form:"min_amount" binding:"omitempty,numeric"`
	From            string   `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To              string   `form:"to" binding:"omitempty,datetime=2006-01-02"`
	SupplierName    string   `form:"supplier"`
	Page            int      `form:"page" binding:"omitempty,min=1"`
	PageSize        int      `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy         string   `form:"order_by"`
	OrderDir        string   `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// toDomain builds the repository filter. The To date is inclusive for callers
// and becomes the exclusive upper bound of the following day.
func (f CostEntryListFilter) toDomain(paged bool) (cost.EntryFilter, error) {
	base := shared.DefaultFilter()
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

	filter := cost.EntryFilter{Filter: base, SupplierName: strings.TrimSpace(f.SupplierName)}
	for _, c := range f.Classifications {
		classification := cost.Classification(c)
		if !classification.IsValid() {
			return cost.EntryFilter{}, shared.NewDomainError("INVALID_CLASSIFICATION", "Invalid cost classification: "+c)
		}
		filter.Classifications = append(filter.Classifications, classification)
	}
	if f.MinAmount != "" {
		minAmount, err := decimal.NewFromString(f.MinAmount)
		if err != nil {
			return cost.EntryFilter{}, shared.ErrInvalidInput.WithDetails("min_amount: not a number")
		}
		filter.MinAmount = &minAmount
	}
	if f.From != "" {
		from, err := time.Parse(DateLayout, f.From)
		if err != nil {
			return cost.EntryFilter{}, shared.ErrInvalidInput.WithDetails("from: expected YYYY-MM-DD")
		}
		filter.Range.From = from
	}
	if f.To != "" {
		to, err := time.Parse(DateLayout, f.To)
		if err != nil {
			return cost.EntryFilter{}, shared.ErrInvalidInput.WithDetails("to: expected YYYY-MM-DD")
		}
		filter.Range.To = to.AddDate(0, 0, 1)
	}
	if !filter.Range.From.IsZero() && !filter.Range.To.IsZero() && !filter.Range.From.Before(filter.Range.To) {
		return cost.EntryFilter{}, shared.ErrInvalidInput.WithDetails("from must not be after to")
	}
	return filter, nil
}

// CategoryResponse describes the categories allowed for one classification
type CategoryResponse struct {
	Classification string   `json:"classification"`
	Label          string   `json:"label"`
	Categories     []string `json:"categories"`
}
