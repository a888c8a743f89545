package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bloomstock/internal/domain"
	"bloomstock/internal/dto"
	"bloomstock/internal/stock/repository"
	"bloomstock/internal/testutil"
)

// Integration tests against MySQL; skipped when the test database is down.

func TestLedgerService_MovementSumMatchesQuantity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	componentRepo := repository.NewMySQLComponentRepository(db)
	movementRepo := repository.NewMySQLMovementRepository(db)
	svc := NewLedgerService(db, componentRepo, movementRepo, zap.NewNop(), 5*time.Second)

	id := testutil.SeedComponent(t, db, 1, "red rose", 0, 0)

	movements := []dto.MovementInput{
		{ComponentID: id, CompanyID: 1, Kind: domain.MovementDelivery, QuantityChange: 100, Description: "supplier batch"},
		{ComponentID: id, CompanyID: 1, Kind: domain.MovementSale, QuantityChange: -30},
		{ComponentID: id, CompanyID: 1, Kind: domain.MovementWriteOff, QuantityChange: -4, Description: "wilted"},
		{ComponentID: id, CompanyID: 1, Kind: domain.MovementDelivery, QuantityChange: 20},
	}
	for _, input := range movements {
		_, err := svc.ApplyMovement(context.Background(), input)
		require.NoError(t, err)
	}

	component, err := componentRepo.FindByID(context.Background(), id, 1)
	require.NoError(t, err)
	assert.Equal(t, 86, component.Quantity)

	// Replaying the ledger must land on the stored quantity.
	sum, err := movementRepo.SumQuantityChange(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, component.Quantity, sum)
}

func TestLedgerService_WriteOffBelowZero_LeavesNoTrace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	componentRepo := repository.NewMySQLComponentRepository(db)
	movementRepo := repository.NewMySQLMovementRepository(db)
	svc := NewLedgerService(db, componentRepo, movementRepo, zap.NewNop(), 5*time.Second)

	id := testutil.SeedComponent(t, db, 1, "ribbon", 3, 0)

	_, err := svc.ApplyMovement(context.Background(), dto.MovementInput{
		ComponentID:    id,
		CompanyID:      1,
		Kind:           domain.MovementWriteOff,
		QuantityChange: -5,
		Description:    "damaged",
	})
	require.Error(t, err)

	component, err := componentRepo.FindByID(context.Background(), id, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, component.Quantity)

	history, err := movementRepo.ListByComponent(context.Background(), id, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLedgerService_AdjustmentRecordsDelta(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	componentRepo := repository.NewMySQLComponentRepository(db)
	movementRepo := repository.NewMySQLMovementRepository(db)
	svc := NewLedgerService(db, componentRepo, movementRepo, zap.NewNop(), 5*time.Second)

	id := testutil.SeedComponent(t, db, 1, "red rose", 50, 0)

	movement, err := svc.ApplyMovement(context.Background(), dto.MovementInput{
		ComponentID: id,
		CompanyID:   1,
		Kind:        domain.MovementAdjustment,
		NewQuantity: 46,
		Description: "inventory count",
	})
	require.NoError(t, err)
	assert.Equal(t, -4, movement.QuantityChange)
	assert.Equal(t, 46, movement.BalanceAfter)

	component, err := componentRepo.FindByID(context.Background(), id, 1)
	require.NoError(t, err)
	assert.Equal(t, 46, component.Quantity)
}
