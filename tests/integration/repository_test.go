//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/cost"
	"github.com/rst/farmcontrol/internal/domain/partner"
	"github.com/rst/farmcontrol/internal/domain/sales"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/internal/infrastructure/persistence"
	"github.com/rst/farmcontrol/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostEntryRepository_Postgres(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormCostEntryRepository(tdb.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	march := testutil.NewCostEntry(t, tenantID, nil)
	april := testutil.NewCostEntry(t, tenantID, func(p *cost.EntryParams) {
		p.Date = testutil.Day(2026, 4, 2)
		p.SupplierName = "Casa do Adubo"
	})
	require.NoError(t, repo.Save(ctx, march))
	require.NoError(t, repo.Save(ctx, april))
	require.NoError(t, repo.Save(ctx, testutil.NewCostEntry(t, uuid.New(), nil)))

	t.Run("find by id is tenant scoped", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, march.ID)
		require.NoError(t, err)
		assert.True(t, found.Amount.Equal(testutil.Dec("25.00")))

		_, err = repo.FindByIDForTenant(ctx, uuid.New(), march.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("listing is newest first", func(t *testing.T) {
		entries, total, err := repo.FindAllForTenant(ctx, tenantID, cost.EntryFilter{Filter: shared.DefaultFilter()})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, entries, 2)
		assert.Equal(t, april.ID, entries[0].ID)
	})

	t.Run("date range is half open", func(t *testing.T) {
		entries, err := repo.FindByDateRange(ctx, tenantID, shared.MonthOf(testutil.Day(2026, 3, 20)))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, march.ID, entries[0].ID)
	})

	t.Run("purchases match the supplier name", func(t *testing.T) {
		entries, err := repo.FindBySupplierName(ctx, tenantID, "Agro Sul", 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, march.ID, entries[0].ID)
	})
}

func TestSupplierRepository_Postgres(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormSupplierRepository(tdb.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	active := testutil.NewSupplier(t, tenantID, "Agro Sul")
	inactive := testutil.NewSupplier(t, tenantID, "Viveiro Norte")
	inactive.ToggleActive()
	require.NoError(t, repo.Save(ctx, active))
	require.NoError(t, repo.Save(ctx, inactive))

	exists, err := repo.ExistsActiveByName(ctx, tenantID, "AGRO SUL")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsActiveByName(ctx, tenantID, "viveiro norte")
	require.NoError(t, err)
	assert.False(t, exists)

	roster, err := repo.FindActive(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, active.ID, roster[0].ID)

	onlyInactive := false
	list, total, err := repo.FindAllForTenant(ctx, tenantID, partner.SupplierFilter{Filter: shared.DefaultFilter(), Active: &onlyInactive})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, inactive.ID, list[0].ID)

	t.Run("unique index rejects a second active name", func(t *testing.T) {
		err := repo.Save(ctx, testutil.NewSupplier(t, tenantID, "agro sul"))
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("a name held only by an inactive supplier can be reused", func(t *testing.T) {
		twin := testutil.NewSupplier(t, tenantID, "Viveiro Norte")
		require.NoError(t, repo.Save(ctx, twin))
	})
}

func TestSaleRepository_Postgres(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormSaleRepository(tdb.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	sale := testutil.NewConsignmentSale(t, tenantID)
	require.NoError(t, repo.Save(ctx, sale))

	settlement, err := sales.CalculateSettlement(sale, []sales.Disposition{
		{Consumed: testutil.Dec("15"), Lost: testutil.Dec("2")},
		{Consumed: testutil.Dec("10"), Lost: testutil.Dec("0")},
	})
	require.NoError(t, err)
	require.NoError(t, sale.Settle(settlement, "acerto semanal", "joana", testutil.Day(2026, 3, 19)))
	require.NoError(t, repo.Save(ctx, sale))

	found, err := repo.FindByIDForTenant(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusSettled, found.Status)
	require.Len(t, found.Items, 2)
	require.NotNil(t, found.Settlement)
	assert.True(t, found.Settlement.Receivable.Equal(testutil.Dec("57.50")))
	assert.Equal(t, "joana", found.Settlement.SettledBy)
	require.NotNil(t, found.FinalAmount)
	assert.True(t, found.FinalAmount.Equal(testutil.Dec("57.50")))

	count, err := repo.CountInRange(ctx, tenantID, shared.MonthOf(sale.Date))
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	list, total, err := repo.FindAllForTenant(ctx, tenantID, sales.SaleFilter{
		Filter:   shared.DefaultFilter(),
		Statuses: []sales.Status{sales.StatusSettled},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list[0].Items, 2)
}
