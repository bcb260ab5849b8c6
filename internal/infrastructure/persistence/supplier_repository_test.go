package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/partner"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSupplierRepository(t *testing.T) {
	repo := NewGormSupplierRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()
	tenantID := uuid.New()

	names := []string{"Transportes Beta", "Agro Sul", "Ávila Sementes", "Coop Norte"}
	saved := make(map[string]*partner.Supplier, len(names))
	for _, name := range names {
		s := testutil.NewSupplier(t, tenantID, name)
		require.NoError(t, repo.Save(ctx, s))
		saved[name] = s
	}

	inactive := saved["Coop Norte"]
	inactive.ToggleActive()
	require.NoError(t, repo.Save(ctx, inactive))

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, saved["Agro Sul"].ID)
		require.NoError(t, err)
		assert.Equal(t, "Agro Sul", found.Name)
		assert.True(t, found.Active)

		_, err = repo.FindByIDForTenant(ctx, uuid.New(), saved["Agro Sul"].ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("active suppliers ordered by folded name", func(t *testing.T) {
		active, err := repo.FindActive(ctx, tenantID)
		require.NoError(t, err)
		require.Len(t, active, 3)
		assert.Equal(t, "Agro Sul", active[0].Name)
		assert.Equal(t, "Transportes Beta", active[1].Name)
	})

	t.Run("duplicate check ignores case and inactive suppliers", func(t *testing.T) {
		exists, err := repo.ExistsActiveByName(ctx, tenantID, "  AGRO sul ")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsActiveByName(ctx, tenantID, "coop norte")
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsActiveByName(ctx, uuid.New(), "Agro Sul")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("list filters", func(t *testing.T) {
		active := false
		list, total, err := repo.FindAllForTenant(ctx, tenantID, partner.SupplierFilter{
			Filter: shared.Filter{Page: 1, PageSize: 10},
			Active: &active,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Coop Norte", list[0].Name)

		list, total, err = repo.FindAllForTenant(ctx, tenantID, partner.SupplierFilter{
			Filter:       shared.Filter{Page: 1, PageSize: 10},
			NameContains: "SEMENTES",
			Category:     partner.SupplierCategoryInputs,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Ávila Sementes", list[0].Name)
	})
}
