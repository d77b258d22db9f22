package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mzhao/ai-invoice-audit/internal/models"
)

func TestComputeSubtotal(t *testing.T) {
	items := []models.LineItem{
		{Name: "Widget", Qty: 3, UnitPrice: 10},
		{Name: "Gadget", Qty: 1.5, UnitPrice: 20},
	}
	assert.InDelta(t, 60.0, ComputeSubtotal(items), 1e-9)

	assert.Equal(t, 0.0, ComputeSubtotal(nil))
	assert.Equal(t, 0.0, ComputeSubtotal([]models.LineItem{}))
}

func TestNearlyEqual(t *testing.T) {
	assert.True(t, NearlyEqual(100.00, 100.00))
	assert.True(t, NearlyEqual(100.00, 100.01))
	assert.True(t, NearlyEqual(100.01, 100.00))
	assert.False(t, NearlyEqual(100.00, 100.02))
	assert.True(t, NearlyEqual(-5.005, -5.0))
}
