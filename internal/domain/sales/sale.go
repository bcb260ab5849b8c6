package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultSettledBy is recorded when a settlement has no known operator
const DefaultSettledBy = "Sistema RST"

// LineItem is a product line on a sale. It is owned by its sale.
type LineItem struct {
	Name      string
	Quantity  decimal.Decimal
	Unit      string
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
}

// NewLineItem validates a line and computes its amount
func NewLineItem(name string, quantity decimal.Decimal, unit string, unitPrice decimal.Decimal) (LineItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return LineItem{}, shared.NewDomainError("INVALID_ITEM_NAME", "Product name cannot be empty")
	}
	if !IsValidUnit(unit) {
		return LineItem{}, shared.NewDomainError("INVALID_UNIT", "Invalid unit: "+unit)
	}
	if !quantity.IsPositive() {
		return LineItem{}, shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Quantity of %s must be positive", name))
	}
	if !unitPrice.IsPositive() {
		return LineItem{}, shared.NewDomainError("INVALID_UNIT_PRICE", fmt.Sprintf("Unit price of %s must be positive", name))
	}
	return LineItem{
		Name:      name,
		Quantity:  quantity,
		Unit:      unit,
		UnitPrice: unitPrice,
		Amount:    quantity.Mul(unitPrice).Round(2),
	}, nil
}

var _ shared.AggregateRoot = (*Sale)(nil)

// Sale is the aggregate root for sales, including consignments and their settlement
type Sale struct {
	shared.TenantAggregateRoot
	Number        string
	Date          time.Time
	CustomerName  string
	CustomerPhone string
	Modality      Modality
	PaymentType   PaymentType
	DueDate       *time.Time
	Status        Status
	Items         []LineItem
	TotalAmount   decimal.Decimal
	FinalAmount   *decimal.Decimal
	Notes         string
	Settlement    *Settlement
	ReceivedAt    *time.Time
	CancelledAt   *time.Time
	SettledAt     *time.Time
}

// SaleParams carries the operator input for a new sale
type SaleParams struct {
	Number        string
	Date          time.Time
	CustomerName  string
	CustomerPhone string
	Modality      Modality
	PaymentType   PaymentType
	DueDate       *time.Time
	Items         []LineItem
	Notes         string
}

// NewSale creates a complete sale. The status is derived from modality and payment type.
func NewSale(tenantID uuid.UUID, p SaleParams) (*Sale, error) {
	if strings.TrimSpace(p.Number) == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Sale number cannot be empty")
	}
	if p.Date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Date is required")
	}
	customer := strings.TrimSpace(p.CustomerName)
	if customer == "" {
		return nil, shared.NewDomainError("CUSTOMER_REQUIRED", "Customer name is required")
	}
	if !p.Modality.IsValid() {
		return nil, shared.NewDomainError("INVALID_MODALITY", "Invalid sale modality")
	}
	if !p.PaymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Invalid payment type")
	}
	if p.PaymentType == PaymentTerm && p.DueDate == nil {
		return nil, shared.NewDomainError("DUE_DATE_REQUIRED", "Due date is required for term payments")
	}
	if len(p.Items) == 0 {
		return nil, shared.NewDomainError("NO_LINE_ITEMS", "A sale needs at least one product")
	}

	total := decimal.Zero
	for _, item := range p.Items {
		total = total.Add(item.Amount)
	}
	total = total.Round(2)
	if !total.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Sale total must be positive")
	}

	dueDate := p.DueDate
	if p.PaymentType != PaymentTerm {
		dueDate = nil
	}

	sale := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              p.Number,
		Date:                p.Date,
		CustomerName:        customer,
		CustomerPhone:       strings.TrimSpace(p.CustomerPhone),
		Modality:            p.Modality,
		PaymentType:         p.PaymentType,
		DueDate:             dueDate,
		Status:              InitialStatus(p.Modality, p.PaymentType),
		Items:               append([]LineItem(nil), p.Items...),
		TotalAmount:         total,
		Notes:               strings.TrimSpace(p.Notes),
	}

	sale.AddDomainEvent(NewSaleCreatedEvent(sale))

	return sale, nil
}

// ItemCount returns the number of product lines
func (s *Sale) ItemCount() int {
	return len(s.Items)
}

// MarkPaid records the payment of a pending sale
func (s *Sale) MarkPaid(at time.Time) error {
	if err := s.transition(StatusPaid); err != nil {
		return err
	}
	s.ReceivedAt = &at
	s.AddDomainEvent(NewSalePaidEvent(s))
	return nil
}

// Cancel cancels a consignment before it is settled
func (s *Sale) Cancel(at time.Time) error {
	if err := s.transition(StatusCancelled); err != nil {
		return err
	}
	s.CancelledAt = &at
	s.AddDomainEvent(NewSaleCancelledEvent(s))
	return nil
}

// Settle applies a settlement computed by CalculateSettlement. The sale is left
// unchanged when the settlement does not fit the sale.
func (s *Sale) Settle(settlement *Settlement, notes, settledBy string, at time.Time) error {
	if settlement == nil {
		return shared.NewDomainError("INVALID_SETTLEMENT", "Settlement is required")
	}
	if !s.Status.CanTransitionTo(StatusSettled) {
		return invalidTransition(s.Status, StatusSettled)
	}
	if len(settlement.Items) != len(s.Items) {
		return shared.NewDomainError("INVALID_SETTLEMENT", "Settlement does not match the sale items")
	}
	if !settlement.Receivable.IsPositive() {
		return ErrNothingConsumed
	}

	settledBy = strings.TrimSpace(settledBy)
	if settledBy == "" {
		settledBy = DefaultSettledBy
	}
	applied := *settlement
	applied.Items = append([]SettlementItem(nil), settlement.Items...)
	applied.Notes = strings.TrimSpace(notes)
	applied.SettledBy = settledBy
	applied.SettledAt = at

	final := applied.Receivable
	s.Settlement = &applied
	s.FinalAmount = &final
	s.SettledAt = &at
	if err := s.transition(StatusSettled); err != nil {
		return err
	}
	s.AddDomainEvent(NewSaleSettledEvent(s))
	return nil
}

func (s *Sale) transition(target Status) error {
	if !s.Status.CanTransitionTo(target) {
		return invalidTransition(s.Status, target)
	}
	s.Status = target
	s.Touch()
	s.IncrementVersion()
	return nil
}

func invalidTransition(from, to Status) error {
	return shared.NewDomainError("INVALID_STATE",
		fmt.Sprintf("Cannot change sale from %s to %s", from, to))
}

// GenerateNumber builds the sale number V{YYYYMMDD}-{NNN}, where NNN is the
// number of sales already recorded in the month plus one.
func GenerateNumber(date time.Time, salesInMonth int64) string {
	return fmt.Sprintf("V%s-%03d", date.Format("20060102"), salesInMonth+1)
}
