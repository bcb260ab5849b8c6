package cost

import (
	"time"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeCostEntry is the aggregate type name for cost entries
const AggregateTypeCostEntry = "CostEntry"

// EventTypeCostEntryRecorded is emitted when a cost entry is stored
const EventTypeCostEntryRecorded = "CostEntryRecorded"

// CostEntryRecordedEvent is published after a new cost entry is saved
type CostEntryRecordedEvent struct {
	shared.BaseDomainEvent
	CostEntryID         uuid.UUID       `json:"cost_entry_id"`
	Date                time.Time       `json:"date"`
	Classification      Classification  `json:"classification"`
	Category            string          `json:"category"`
	SupplierName        string          `json:"supplier_name"`
	Amount              decimal.Decimal `json:"amount"`
	MonthlyDepreciation decimal.Decimal `json:"monthly_depreciation"`
}

// NewCostEntryRecordedEvent creates a CostEntryRecordedEvent
func NewCostEntryRecordedEvent(e *CostEntry) *CostEntryRecordedEvent {
	return &CostEntryRecordedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeCostEntryRecorded, AggregateTypeCostEntry, e.ID, e.TenantID),
		CostEntryID:         e.ID,
		Date:                e.Date,
		Classification:      e.Classification,
		Category:            e.Category,
		SupplierName:        e.SupplierName,
		Amount:              e.Amount,
		MonthlyDepreciation: e.MonthlyDepreciation,
	}
}
