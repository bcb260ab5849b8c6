package sales

import (
	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeSale is the aggregate type name for sales
const AggregateTypeSale = "Sale"

// Event type constants for Sale
const (
	EventTypeSaleCreated   = "SaleCreated"
	EventTypeSalePaid      = "SalePaid"
	EventTypeSaleSettled   = "SaleSettled"
	EventTypeSaleCancelled = "SaleCancelled"
)

// SaleCreatedEvent is published when a new sale is recorded
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID       `json:"sale_id"`
	Number      string          `json:"number"`
	Customer    string          `json:"customer"`
	Modality    Modality        `json:"modality"`
	PaymentType PaymentType     `json:"payment_type"`
	Status      Status          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

// NewSaleCreatedEvent creates a SaleCreatedEvent
func NewSaleCreatedEvent(s *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, AggregateTypeSale, s.ID, s.TenantID),
		SaleID:          s.ID,
		Number:          s.Number,
		Customer:        s.CustomerName,
		Modality:        s.Modality,
		PaymentType:     s.PaymentType,
		Status:          s.Status,
		TotalAmount:     s.TotalAmount,
		ItemCount:       len(s.Items),
	}
}

// SalePaidEvent is published when a pending sale is marked as received
type SalePaidEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID       `json:"sale_id"`
	Number      string          `json:"number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewSalePaidEvent creates a SalePaidEvent
func NewSalePaidEvent(s *Sale) *SalePaidEvent {
	return &SalePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalePaid, AggregateTypeSale, s.ID, s.TenantID),
		SaleID:          s.ID,
		Number:          s.Number,
		TotalAmount:     s.TotalAmount,
	}
}

// SaleSettledEvent is published when a consignment is settled
type SaleSettledEvent struct {
	shared.BaseDomainEvent
	SaleID         uuid.UUID       `json:"sale_id"`
	Number         string          `json:"number"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	Receivable     decimal.Decimal `json:"receivable"`
	Loss           decimal.Decimal `json:"loss"`
	Efficiency     decimal.Decimal `json:"efficiency"`
	SettledBy      string          `json:"settled_by"`
}

// NewSaleSettledEvent creates a SaleSettledEvent. The sale must carry a settlement.
func NewSaleSettledEvent(s *Sale) *SaleSettledEvent {
	return &SaleSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleSettled, AggregateTypeSale, s.ID, s.TenantID),
		SaleID:          s.ID,
		Number:          s.Number,
		OriginalAmount:  s.Settlement.OriginalAmount,
		Receivable:      s.Settlement.Receivable,
		Loss:            s.Settlement.Loss,
		Efficiency:      s.Settlement.Efficiency,
		SettledBy:       s.Settlement.SettledBy,
	}
}

// SaleCancelledEvent is published when a consignment is cancelled
type SaleCancelledEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID       `json:"sale_id"`
	Number      string          `json:"number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewSaleCancelledEvent creates a SaleCancelledEvent
func NewSaleCancelledEvent(s *Sale) *SaleCancelledEvent {
	return &SaleCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCancelled, AggregateTypeSale, s.ID, s.TenantID),
		SaleID:          s.ID,
		Number:          s.Number,
		TotalAmount:     s.TotalAmount,
	}
}
