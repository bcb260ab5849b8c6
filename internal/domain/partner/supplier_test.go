package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSupplier(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates active supplier", func(t *testing.T) {
		supplier, err := NewSupplier(tenantID, "  Agro Sul  ", SupplierCategoryInputs)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, supplier.ID)
		assert.Equal(t, tenantID, supplier.TenantID)
		assert.Equal(t, "Agro Sul", supplier.Name)
		assert.True(t, supplier.Active)

		events := supplier.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeSupplierCreated, events[0].EventType())
	})

	t.Run("fails with empty name", func(t *testing.T) {
		supplier, err := NewSupplier(tenantID, " ", SupplierCategoryInputs)
		assert.Nil(t, supplier)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("fails with unknown category", func(t *testing.T) {
		supplier, err := NewSupplier(tenantID, "Agro Sul", SupplierCategory("FOOD"))
		assert.Nil(t, supplier)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CATEGORY", domainErr.Code)
	})
}

func TestSupplier_SetContact(t *testing.T) {
	supplier, err := NewSupplier(uuid.New(), "Agro Sul", SupplierCategoryInputs)
	require.NoError(t, err)

	require.NoError(t, supplier.SetContact("12.345.678/0001-90", "+5511987654321", " Vendas@AgroSul.com.br ", "Rod. BR-101"))
	assert.Equal(t, "vendas@agrosul.com.br", supplier.Email)
	assert.Equal(t, "12.345.678/0001-90", supplier.TaxID)

	err = supplier.SetContact("", "", "not-an-email", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email format")
	assert.Equal(t, "vendas@agrosul.com.br", supplier.Email, "failed update leaves state untouched")
}

func TestSupplier_ToggleActive(t *testing.T) {
	supplier, err := NewSupplier(uuid.New(), "Agro Sul", SupplierCategoryInputs)
	require.NoError(t, err)
	supplier.ClearDomainEvents()

	supplier.ToggleActive()
	assert.False(t, supplier.Active)
	supplier.ToggleActive()
	assert.True(t, supplier.Active)

	events := supplier.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeSupplierStatusChanged, events[0].EventType())
	assert.False(t, events[0].(*SupplierStatusChangedEvent).Active)
	assert.True(t, events[1].(*SupplierStatusChangedEvent).Active)
}

func TestSupplierCategory(t *testing.T) {
	assert.True(t, SupplierCategoryTransport.IsValid())
	assert.False(t, SupplierCategory("").IsValid())
	assert.Equal(t, "Insumos Agrícolas", SupplierCategoryInputs.Label())
	assert.Len(t, AllSupplierCategories(), 6)
}

func TestMatchByName(t *testing.T) {
	tenantID := uuid.New()
	mk := func(name string, active bool) Supplier {
		s, err := NewSupplier(tenantID, name, SupplierCategoryOther)
		require.NoError(t, err)
		s.Active = active
		return *s
	}
	suppliers := []Supplier{
		mk("Sementes Brasil", true),
		mk("agro norte", true),
		mk("Agro Sul", true),
		mk("Agro Leste", false),
		mk("Combustíveis AGRO", true),
		mk("Transportes Silva", true),
	}

	tests := []struct {
		name  string
		term  string
		limit int
		want  []string
	}{
		{"case-insensitive substring sorted by name", "AGRO", 0, []string{"agro norte", "Agro Sul", "Combustíveis AGRO"}},
		{"caps results", "agro", 2, []string{"agro norte", "Agro Sul"}},
		{"empty term returns active list", "", 0, []string{"agro norte", "Agro Sul", "Combustíveis AGRO", "Sementes Brasil", "Transportes Silva"}},
		{"empty term honours cap", "", QuickSearchLimit - 2, []string{"agro norte", "Agro Sul", "Combustíveis AGRO"}},
		{"inactive suppliers never match", "leste", 0, []string{}},
		{"accented names match", "COMBUSTÍVEIS", 0, []string{"Combustíveis AGRO"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchByName(suppliers, tt.term, tt.limit)
			names := make([]string, 0, len(got))
			for _, s := range got {
				names = append(names, s.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestFoldName(t *testing.T) {
	assert.Equal(t, FoldName("Agro Sul"), FoldName("  AGRO SUL "))
	assert.NotEqual(t, FoldName("Agro Sul"), FoldName("Agro Sol"))
}
