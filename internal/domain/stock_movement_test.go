package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovementKind_IsValid(t *testing.T) {
	valid := []MovementKind{
		MovementDelivery,
		MovementSale,
		MovementWriteOff,
		MovementPriceChange,
		MovementAdjustment,
	}
	for _, k := range valid {
		assert.True(t, k.IsValid(), "expected %s to be valid", k)
	}

	assert.False(t, MovementKind("REFUND").IsValid())
	assert.False(t, MovementKind("").IsValid())
}

func TestStockMovement_ReplayEqualsBalance(t *testing.T) {
	movements := []StockMovement{
		{ComponentID: 1, Kind: MovementDelivery, QuantityChange: 100, BalanceAfter: 100},
		{ComponentID: 1, Kind: MovementSale, QuantityChange: -30, BalanceAfter: 70},
		{ComponentID: 1, Kind: MovementWriteOff, QuantityChange: -5, BalanceAfter: 65},
		{ComponentID: 1, Kind: MovementAdjustment, QuantityChange: -15, BalanceAfter: 50},
	}

	sum := 0
	for _, m := range movements {
		sum += m.QuantityChange
		assert.Equal(t, sum, m.BalanceAfter)
	}
	assert.Equal(t, 50, sum)
}
