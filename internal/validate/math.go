package validate

import (
	"math"

	"github.com/mzhao/ai-invoice-audit/internal/models"
)

// Tolerance is the maximum absolute difference before two monetary
// amounts are considered mismatched.
const Tolerance = 0.01

// ComputeSubtotal sums qty × unit price over the line items.
func ComputeSubtotal(items []models.LineItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Qty * item.UnitPrice
	}
	return sum
}

// NearlyEqual reports whether two amounts agree within Tolerance.
func NearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance
}
