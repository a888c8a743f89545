package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponent_EffectiveAvailable(t *testing.T) {
	c := Component{ID: 1, Quantity: 50}

	assert.Equal(t, 50, c.EffectiveAvailable(0))
	assert.Equal(t, 2, c.EffectiveAvailable(48))
	assert.Equal(t, 0, c.EffectiveAvailable(50))
}

func TestComponent_EffectiveAvailable_NeverNegative(t *testing.T) {
	c := Component{ID: 1, Quantity: 10}

	assert.Equal(t, 0, c.EffectiveAvailable(15))
}

func TestComponent_CanApplyDelta(t *testing.T) {
	c := Component{ID: 1, Quantity: 50}

	assert.True(t, c.CanApplyDelta(100))
	assert.True(t, c.CanApplyDelta(-50))
	assert.False(t, c.CanApplyDelta(-51))
	assert.False(t, c.CanApplyDelta(-200))
}

func TestComponent_IsLowStock(t *testing.T) {
	assert.True(t, Component{Quantity: 3, MinQuantity: 5}.IsLowStock())
	assert.True(t, Component{Quantity: 5, MinQuantity: 5}.IsLowStock())
	assert.False(t, Component{Quantity: 6, MinQuantity: 5}.IsLowStock())
}
