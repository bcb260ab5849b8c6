package partner

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"golang.org/x/text/cases"
)

// SupplierCategory groups suppliers by what they provide
type SupplierCategory string

const (
	SupplierCategoryInputs     SupplierCategory = "INPUTS"
	SupplierCategoryEquipment  SupplierCategory = "EQUIPMENT"
	SupplierCategoryServices   SupplierCategory = "SERVICES"
	SupplierCategoryTransport  SupplierCategory = "TRANSPORT"
	SupplierCategoryConsulting SupplierCategory = "CONSULTING"
	SupplierCategoryOther      SupplierCategory = "OTHER"
)

// AllSupplierCategories returns every supplier category in display order
func AllSupplierCategories() []SupplierCategory {
	return []SupplierCategory{
		SupplierCategoryInputs, SupplierCategoryEquipment, SupplierCategoryServices,
		SupplierCategoryTransport, SupplierCategoryConsulting, SupplierCategoryOther,
	}
}

// IsValid checks if the category is a known value
func (c SupplierCategory) IsValid() bool {
	return slices.Contains(AllSupplierCategories(), c)
}

// Label returns the display name of the category
func (c SupplierCategory) Label() string {
	switch c {
	case SupplierCategoryInputs:
		return "Insumos Agrícolas"
	case SupplierCategoryEquipment:
		return "Equipamentos"
	case SupplierCategoryServices:
		return "Serviços"
	case SupplierCategoryTransport:
		return "Transporte"
	case SupplierCategoryConsulting:
		return "Consultoria"
	case SupplierCategoryOther:
		return "Outros"
	}
	return string(c)
}

var _ shared.AggregateRoot = (*Supplier)(nil)

// Supplier is a vendor the farm buys from.
// Suppliers are never hard-deleted; they are deactivated instead.
type Supplier struct {
	shared.TenantAggregateRoot
	Name     string
	TaxID    string // CNPJ or CPF
	Phone    string
	Email    string
	Address  string
	Category SupplierCategory
	Active   bool
	Notes    string
}

// NewSupplier creates an active supplier
func NewSupplier(tenantID uuid.UUID, name string, category SupplierCategory) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if err := validateSupplierName(name); err != nil {
		return nil, err
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}

	supplier := &Supplier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Category:            category,
		Active:              true,
	}

	supplier.AddDomainEvent(NewSupplierCreatedEvent(supplier))

	return supplier, nil
}

// SetContact sets tax id, phone, email and address. Empty values clear the field.
func (s *Supplier) SetContact(taxID, phone, email, address string) error {
	taxID = strings.TrimSpace(taxID)
	email = strings.ToLower(strings.TrimSpace(email))
	if len(taxID) > 20 {
		return shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 20 characters")
	}
	if len(phone) > 30 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 30 characters")
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	if len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}

	s.TaxID = taxID
	s.Phone = strings.TrimSpace(phone)
	s.Email = email
	s.Address = strings.TrimSpace(address)
	s.Touch()
	s.IncrementVersion()
	return nil
}

// SetCategory changes the supplier category
func (s *Supplier) SetCategory(category SupplierCategory) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	s.Category = category
	s.Touch()
	s.IncrementVersion()
	return nil
}

// SetNotes replaces the free-form notes
func (s *Supplier) SetNotes(notes string) {
	s.Notes = strings.TrimSpace(notes)
	s.Touch()
	s.IncrementVersion()
}

// ToggleActive flips the active flag
func (s *Supplier) ToggleActive() {
	s.Active = !s.Active
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(NewSupplierStatusChangedEvent(s))
}

// FoldedName returns the case-folded name used for uniqueness and lookup
func (s *Supplier) FoldedName() string {
	return FoldName(s.Name)
}

// FoldName normalizes a supplier name for case-insensitive comparison
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateSupplierName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot exceed 200 characters")
	}
	return nil
}

func validateCategory(category SupplierCategory) error {
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Invalid supplier category")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
