package sales

import "slices"

// Modality distinguishes immediate sales from consignment
type Modality string

const (
	ModalityDirect      Modality = "DIRECT"
	ModalityConsignment Modality = "CONSIGNMENT"
)

// IsValid checks if the modality is a known value
func (m Modality) IsValid() bool {
	return m == ModalityDirect || m == ModalityConsignment
}

// Label returns the display name of the modality
func (m Modality) Label() string {
	switch m {
	case ModalityDirect:
		return "Venda Direta"
	case ModalityConsignment:
		return "Consignação"
	}
	return string(m)
}

// PaymentType is how the customer pays
type PaymentType string

const (
	PaymentCash    PaymentType = "CASH"
	PaymentPix     PaymentType = "PIX"
	PaymentCard    PaymentType = "CARD"
	PaymentInvoice PaymentType = "INVOICE"
	PaymentTerm    PaymentType = "TERM"
)

// AllPaymentTypes returns every payment type in display order
func AllPaymentTypes() []PaymentType {
	return []PaymentType{PaymentCash, PaymentPix, PaymentCard, PaymentInvoice, PaymentTerm}
}

// IsValid checks if the payment type is a known value
func (p PaymentType) IsValid() bool {
	return slices.Contains(AllPaymentTypes(), p)
}

// IsImmediate reports whether the payment settles at the moment of sale
func (p PaymentType) IsImmediate() bool {
	return p == PaymentCash || p == PaymentPix || p == PaymentCard
}

// Label returns the display name of the payment type
func (p PaymentType) Label() string {
	switch p {
	case PaymentCash:
		return "Dinheiro"
	case PaymentPix:
		return "PIX"
	case PaymentCard:
		return "Cartão"
	case PaymentInvoice:
		return "Boleto"
	case PaymentTerm:
		return "Prazo"
	}
	return string(p)
}

// Status is the lifecycle state of a sale
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusConsigned Status = "CONSIGNED"
	StatusSettled   Status = "SETTLED"
	StatusCancelled Status = "CANCELLED"
)

// AllStatuses returns every status in display order
func AllStatuses() []Status {
	return []Status{StatusPaid, StatusPending, StatusConsigned, StatusSettled, StatusCancelled}
}

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	return slices.Contains(AllStatuses(), s)
}

// IsTerminal reports whether no transition leaves the status
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo checks if the sale can move to the target status
func (s Status) CanTransitionTo(target Status) bool {
	return slices.Contains(transitions[s], target)
}

// Label returns the display name of the status
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pendente"
	case StatusPaid:
		return "Pago"
	case StatusConsigned:
		return "Consignado"
	case StatusSettled:
		return "Acertado"
	case StatusCancelled:
		return "Cancelado"
	}
	return string(s)
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusPaid},
	StatusConsigned: {StatusSettled, StatusCancelled},
}

// InitialStatus derives the status a new sale starts in
func InitialStatus(modality Modality, payment PaymentType) Status {
	switch {
	case modality == ModalityConsignment:
		return StatusConsigned
	case payment.IsImmediate():
		return StatusPaid
	default:
		return StatusPending
	}
}

var units = []string{"UN", "KG", "L", "M", "M²", "M³", "T", "SC", "CX", "PC", "DZ"}

// Units returns the measurement units accepted on sale line items
func Units() []string {
	return slices.Clone(units)
}

// IsValidUnit reports whether unit is an accepted line-item unit
func IsValidUnit(unit string) bool {
	return slices.Contains(units, unit)
}
