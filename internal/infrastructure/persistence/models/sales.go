package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for sales.Sale.
// Settlement totals live on the sale row; per-item dispositions live on the item rows.
type SaleModel struct {
	TenantAggregateModel
	Number        string            `gorm:"type:varchar(20);not null;index"`
	Date          time.Time         `gorm:"type:date;not null;index:idx_sales_tenant_date,priority:2"`
	CustomerName  string            `gorm:"type:varchar(200);not null"`
	CustomerPhone string            `gorm:"type:varchar(30)"`
	Modality      sales.Modality    `gorm:"type:varchar(20);not null"`
	PaymentType   sales.PaymentType `gorm:"type:varchar(20);not null"`
	DueDate       *time.Time        `gorm:"type:date"`
	Status        sales.Status      `gorm:"type:varchar(20);not null;index"`
	TotalAmount   decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	FinalAmount   *decimal.Decimal  `gorm:"type:decimal(18,4)"`
	Notes         string            `gorm:"type:text"`
	ReceivedAt    *time.Time
	CancelledAt   *time.Time
	SettledAt     *time.Time

	SettlementOriginalAmount *decimal.Decimal `gorm:"type:decimal(18,4)"`
	SettlementReceivable     *decimal.Decimal `gorm:"type:decimal(18,4)"`
	SettlementLoss           *decimal.Decimal `gorm:"type:decimal(18,4)"`
	SettlementEfficiency     *decimal.Decimal `gorm:"type:decimal(7,2)"`
	SettlementNotes          string           `gorm:"type:text"`
	SettledBy                string           `gorm:"type:varchar(100)"`

	Items []SaleItemModel `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleItemModel is one line item of a sale. Settlement columns are null until settled.
type SaleItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position  int             `gorm:"not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit      string          `gorm:"type:varchar(20);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	Consumed   *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Lost       *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Returned   *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Receivable *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Loss       *decimal.Decimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the model and its loaded items to a sale
func (m *SaleModel) ToDomain() *sales.Sale {
	s := &sales.Sale{
		TenantAggregateRoot: m.TenantAggregateModel.ToDomain(),
		Number:              m.Number,
		Date:                m.Date,
		CustomerName:        m.CustomerName,
		CustomerPhone:       m.CustomerPhone,
		Modality:            m.Modality,
		PaymentType:         m.PaymentType,
		DueDate:             m.DueDate,
		Status:              m.Status,
		TotalAmount:         m.TotalAmount,
		FinalAmount:         m.FinalAmount,
		Notes:               m.Notes,
		ReceivedAt:          m.ReceivedAt,
		CancelledAt:         m.CancelledAt,
		SettledAt:           m.SettledAt,
		Items:               make([]sales.LineItem, 0, len(m.Items)),
	}
	for _, it := range m.Items {
		s.Items = append(s.Items, sales.LineItem{
			Name:      it.Name,
			Quantity:  it.Quantity,
			Unit:      it.Unit,
			UnitPrice: it.UnitPrice,
			Amount:    it.Amount,
		})
	}
	if m.SettlementReceivable != nil {
		s.Settlement = m.settlement()
	}
	return s
}

func (m *SaleModel) settlement() *sales.Settlement {
	st := &sales.Settlement{
		OriginalAmount: orZero(m.SettlementOriginalAmount),
		Receivable:     orZero(m.SettlementReceivable),
		Loss:           orZero(m.SettlementLoss),
		Efficiency:     orZero(m.SettlementEfficiency),
		Notes:          m.SettlementNotes,
		SettledBy:      m.SettledBy,
		Items:          make([]sales.SettlementItem, 0, len(m.Items)),
	}
	if m.SettledAt != nil {
		st.SettledAt = *m.SettledAt
	}
	for _, it := range m.Items {
		st.Items = append(st.Items, sales.SettlementItem{
			Name:             it.Name,
			Unit:             it.Unit,
			UnitPrice:        it.UnitPrice,
			OriginalQuantity: it.Quantity,
			Consumed:         orZero(it.Consumed),
			Lost:             orZero(it.Lost),
			Returned:         orZero(it.Returned),
			Receivable:       orZero(it.Receivable),
			Loss:             orZero(it.Loss),
		})
	}
	return st
}

// SaleModelFromDomain builds the sale model and its item rows
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{
		Number:        s.Number,
		Date:          s.Date,
		CustomerName:  s.CustomerName,
		CustomerPhone: s.CustomerPhone,
		Modality:      s.Modality,
		PaymentType:   s.PaymentType,
		DueDate:       s.DueDate,
		Status:        s.Status,
		TotalAmount:   s.TotalAmount,
		FinalAmount:   s.FinalAmount,
		Notes:         s.Notes,
		ReceivedAt:    s.ReceivedAt,
		CancelledAt:   s.CancelledAt,
		SettledAt:     s.SettledAt,
		Items:         make([]SaleItemModel, 0, len(s.Items)),
	}
	m.TenantAggregateModel.FromDomain(s.TenantAggregateRoot)

	for i, it := range s.Items {
		item := SaleItemModel{
			ID:        itemID(s.ID, i),
			SaleID:    s.ID,
			Position:  i,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Unit:      it.Unit,
			UnitPrice: it.UnitPrice,
			Amount:    it.Amount,
		}
		if st := s.Settlement; st != nil && i < len(st.Items) {
			si := st.Items[i]
			item.Consumed = ptr(si.Consumed)
			item.Lost = ptr(si.Lost)
			item.Returned = ptr(si.Returned)
			item.Receivable = ptr(si.Receivable)
			item.Loss = ptr(si.Loss)
		}
		m.Items = append(m.Items, item)
	}

	if st := s.Settlement; st != nil {
		m.SettlementOriginalAmount = ptr(st.OriginalAmount)
		m.SettlementReceivable = ptr(st.Receivable)
		m.SettlementLoss = ptr(st.Loss)
		m.SettlementEfficiency = ptr(st.Efficiency)
		m.SettlementNotes = st.Notes
		m.SettledBy = st.SettledBy
	}
	return m
}

// itemID derives a stable id per (sale, position) so re-saving a sale updates its rows in place
func itemID(saleID uuid.UUID, position int) uuid.UUID {
	return uuid.NewSHA1(saleID, []byte{byte(position >> 8), byte(position)})
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
