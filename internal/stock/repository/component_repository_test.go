package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloomstock/internal/errors"
	"bloomstock/internal/testutil"
)

// Unit Tests

func TestNewMySQLComponentRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLComponentRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

func TestComponentRepository_FindByID_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLComponentRepository(db)
	id := testutil.SeedComponent(t, db, 1, "red rose", 50, 10)

	component, err := repo.FindByID(context.Background(), id, 1)
	require.NoError(t, err)
	assert.Equal(t, "red rose", component.Name)
	assert.Equal(t, 50, component.Quantity)
	assert.Equal(t, 10, component.MinQuantity)
}

func TestComponentRepository_FindByID_WrongCompany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLComponentRepository(db)
	id := testutil.SeedComponent(t, db, 1, "red rose", 50, 10)

	_, err := repo.FindByID(context.Background(), id, 2)
	require.Error(t, err)
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestComponentRepository_FindByIDsForUpdate_OrdersByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLComponentRepository(db)
	idA := testutil.SeedComponent(t, db, 1, "rose", 50, 0)
	idB := testutil.SeedComponent(t, db, 1, "ribbon", 20, 0)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	components, err := repo.FindByIDsForUpdate(context.Background(), tx, []int{idB, idA}, 1)
	require.NoError(t, err)
	assert.Len(t, components, 2)
	assert.Equal(t, 50, components[idA].Quantity)
	assert.Equal(t, 20, components[idB].Quantity)
}

func TestComponentRepository_FindByIDs_EmptyList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLComponentRepository(db)

	components, err := repo.FindByIDs(context.Background(), []int{}, 1)
	require.NoError(t, err)
	assert.Empty(t, components)
}

func TestComponentRepository_UpdateQuantity_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLComponentRepository(db)
	id := testutil.SeedComponent(t, db, 1, "rose", 50, 0)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	err = repo.UpdateQuantity(context.Background(), tx, id, 42)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	component, err := repo.FindByID(context.Background(), id, 1)
	require.NoError(t, err)
	assert.Equal(t, 42, component.Quantity)
}

func TestComponentRepository_UpdatePrices_PartialUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLComponentRepository(db)
	id := testutil.SeedComponent(t, db, 1, "rose", 50, 0)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	cost := 120
	err = repo.UpdatePrices(context.Background(), tx, id, &cost, nil)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	component, err := repo.FindByID(context.Background(), id, 1)
	require.NoError(t, err)
	assert.Equal(t, 120, component.CostPrice)
	assert.Equal(t, 0, component.RetailPrice)
	assert.Equal(t, 50, component.Quantity)
}

func TestComponentRepository_FindLowStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLComponentRepository(db)
	lowID := testutil.SeedComponent(t, db, 1, "rose", 5, 10)
	testutil.SeedComponent(t, db, 1, "ribbon", 100, 10)
	testutil.SeedComponent(t, db, 2, "other company rose", 0, 10)

	components, err := repo.FindLowStock(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, components, 1)
	assert.Equal(t, lowID, components[0].ID)
}
