package sales

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/sales"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format accepted and produced by the API
const DateLayout = "2006-01-02"

// LineItemRequest is one product line of a new sale
type LineItemRequest struct {
	Name      string          `json:"name" binding:"required,max=200"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit" binding:"required,max=10"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest represents a request to record a sale
type CreateSaleRequest struct {
	Date          string            `json:"date" binding:"required,datetime=2006-01-02"`
	CustomerName  string            `json:"customer_name" binding:"required,max=200"`
	CustomerPhone string            `json:"customer_phone" binding:"max=30"`
	Modality      string            `json:"modality" binding:"required,oneof=DIRECT CONSIGNMENT"`
	PaymentType   string            `json:"payment_type" binding:"required,oneof=CASH PIX CARD INVOICE TERM"`
	DueDate       string            `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Items         []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes         string            `json:"notes" binding:"max=2000"`
}

// DispositionRequest is the operator's count for one delivered line item,
// matched to the sale items by position
type DispositionRequest struct {
	Consumed decimal.Decimal `json:"consumed"`
	Lost     decimal.Decimal `json:"lost"`
}

// SettleSaleRequest represents a consignment settlement (acerto de consumo)
type SettleSaleRequest struct {
	Items     []DispositionRequest `json:"items" binding:"required,min=1"`
	Notes     string               `json:"notes" binding:"max=2000"`
	SettledBy string               `json:"settled_by" binding:"max=100"`
}

func (r SettleSaleRequest) dispositions() []sales.Disposition {
	out := make([]sales.Disposition, len(r.Items))
	for i, d := range r.Items {
		out[i] = sales.Disposition{Consumed: d.Consumed, Lost: d.Lost}
	}
	return out
}

// LineItemResponse represents a sale line item in API responses
type LineItemResponse struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// SettlementItemResponse is the reconciled outcome of one line item
type SettlementItemResponse struct {
	Name             string          `json:"name"`
	Unit             string          `json:"unit"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	OriginalQuantity decimal.Decimal `json:"original_quantity"`
	Consumed         decimal.Decimal `json:"consumed"`
	Lost             decimal.Decimal `json:"lost"`
	Returned         decimal.Decimal `json:"returned"`
	Receivable       decimal.Decimal `json:"receivable"`
	Loss             decimal.Decimal `json:"loss"`
}

// SettlementResponse represents a settlement, applied or previewed
type SettlementResponse struct {
	Items          []SettlementItemResponse `json:"items"`
	OriginalAmount decimal.Decimal          `json:"original_amount"`
	Receivable     decimal.Decimal          `json:"receivable"`
	Loss           decimal.Decimal          `json:"loss"`
	Efficiency     decimal.Decimal          `json:"efficiency"`
	Notes          string                   `json:"notes,omitempty"`
	SettledBy      string                   `json:"settled_by,omitempty"`
	SettledAt      *time.Time               `json:"settled_at,omitempty"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            uuid.UUID           `json:"id"`
	Number        string              `json:"number"`
	Date          string              `json:"date"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone,omitempty"`
	Modality      string              `json:"modality"`
	PaymentType   string              `json:"payment_type"`
	DueDate       string              `json:"due_date,omitempty"`
	Status        string              `json:"status"`
	StatusLabel   string              `json:"status_label"`
	Items         []LineItemResponse  `json:"items"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	FinalAmount   *decimal.Decimal    `json:"final_amount,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	Settlement    *SettlementResponse `json:"settlement,omitempty"`
	ReceivedAt    *time.Time          `json:"received_at,omitempty"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`
	SettledAt     *time.Time          `json:"settled_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// ToSaleResponse converts a domain Sale to a response DTO
func ToSaleResponse(s *sales.Sale) SaleResponse {
	resp := SaleResponse{
		ID:            s.ID,
		Number:        s.Number,
		Date:          s.Date.Format(DateLayout),
		CustomerName:  s.CustomerName,
		CustomerPhone: s.CustomerPhone,
		Modality:      string(s.Modality),
		PaymentType:   string(s.PaymentType),
		Status:        string(s.Status),
		StatusLabel:   s.Status.Label(),
		Items:         make([]LineItemResponse, len(s.Items)),
		TotalAmount:   s.TotalAmount,
		FinalAmount:   s.FinalAmount,
		Notes:         s.Notes,
		ReceivedAt:    s.ReceivedAt,
		CancelledAt:   s.CancelledAt,
		SettledAt:     s.SettledAt,
		CreatedAt:     s.CreatedAt,
	}
	if s.DueDate != nil {
		resp.DueDate = s.DueDate.Format(DateLayout)
	}
	for i, item := range s.Items {
		resp.Items[i] = LineItemResponse{
			Name:      item.Name,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
			UnitPrice: item.UnitPrice,
			Amount:    item.Amount,
		}
	}
	if s.Settlement != nil {
		settlement := ToSettlementResponse(s.Settlement)
		resp.Settlement = &settlement
	}
	return resp
}

// ToSaleResponses converts a slice of domain Sales to responses
func ToSaleResponses(list []sales.Sale) []SaleResponse {
	responses := make([]SaleResponse, len(list))
	for i := range list {
		responses[i] = ToSaleResponse(&list[i])
	}
	return responses
}

// ToSettlementResponse converts a domain Settlement to a response DTO
func ToSettlementResponse(st *sales.Settlement) SettlementResponse {
	resp := SettlementResponse{
		Items:          make([]SettlementItemResponse, len(st.Items)),
		OriginalAmount: st.OriginalAmount,
		Receivable:     st.Receivable,
		Loss:           st.Loss,
		Efficiency:     st.Efficiency,
		Notes:          st.Notes,
		SettledBy:      st.SettledBy,
	}
	if !st.SettledAt.IsZero() {
		at := st.SettledAt
		resp.SettledAt = &at
	}
	for i, item := range st.Items {
		resp.Items[i] = SettlementItemResponse{
			Name:             item.Name,
			Unit:             item.Unit,
			UnitPrice:        item.UnitPrice,
			OriginalQuantity: item.OriginalQuantity,
			Consumed:         item.Consumed,
			Lost:             item.Lost,
			Returned:         item.Returned,
			Receivable:       item.Receivable,
			Loss:             item.Loss,
		}
	}
	return resp
}

// SaleListFilter represents filter options for sale lists
type SaleListFilter struct {
	Search       string   `form:"search"`
	Customer     string   `form:"customer"`
	PaymentTypes []string `form:"payment_type" binding:"omitempty,dive,oneof=CASH PIX CARD INVOICE TERM"`
	Statuses     []string `form:"status" binding:"omitempty,dive,oneof=PENDING PAID CONSIGNED SETTLED CANCELLED"`
	From         string   `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To           string   `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page         int      `form:"page" binding:"omitempty,min=1"`
	PageSize     int      `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string   `form:"order_by"`
	OrderDir     string   `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// toDomain builds the repository filter; To is inclusive
func (f SaleListFilter) toDomain(paged bool) (sales.SaleFilter, error) {
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

	filter := sales.SaleFilter{Filter: base, CustomerContains: strings.TrimSpace(f.Customer)}
	for _, p := range f.PaymentTypes {
		pt := sales.PaymentType(p)
		if !pt.IsValid() {
			return sales.SaleFilter{}, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Invalid payment type: "+p)
		}
		filter.PaymentTypes = append(filter.PaymentTypes, pt)
	}
	for _, s := range f.Statuses {
		status := sales.Status(s)
		if !status.IsValid() {
			return sales.SaleFilter{}, shared.NewDomainError("INVALID_STATUS", "Invalid sale status: "+s)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	if f.From != "" {
		from, err := time.Parse(DateLayout, f.From)
		if err != nil {
			return sales.SaleFilter{}, shared.ErrInvalidInput.WithDetails("from: expected YYYY-MM-DD")
		}
		filter.Range.From = from
	}
	if f.To != "" {
		to, err := time.Parse(DateLayout, f.To)
		if err != nil {
			return sales.SaleFilter{}, shared.ErrInvalidInput.WithDetails("to: expected YYYY-MM-DD")
		}
		filter.Range.To = to.AddDate(0, 0, 1)
	}
	if !filter.Range.From.IsZero() && !filter.Range.To.IsZero() && !filter.Range.From.Before(filter.Range.To) {
		return sales.SaleFilter{}, shared.ErrInvalidInput.WithDetails("from must not be after to")
	}
	return filter, nil
}
