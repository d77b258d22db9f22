// Package risk maps validation flags to a numeric score and a
// three-tier risk level.
package risk

import "github.com/mzhao/ai-invoice-audit/internal/models"

// Per-flag weights. The sum is deliberately unclamped: several
// high-weight flags firing together can exceed 100.
const (
	weightSubtotalMismatch    = 25
	weightTotalMismatch       = 25
	weightHighUnitPrice       = 20
	weightVendorNotFound      = 15
	weightInvoiceDateFuture   = 15
	weightGSTInvalid          = 10
	weightGSTMismatch         = 10
	weightDuplicateInvoice    = 10
	weightDateOutsideContract = 10
	weightTaxRateUnusual      = 10
)

// Level thresholds.
const (
	highThreshold   = 70
	mediumThreshold = 40
)

const justification = "Rule-based risk scoring from validation flags."

// Engine performs deterministic additive scoring. It is stateless.
type Engine struct{}

// NewEngine creates a risk engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Score sums the weights of the raised flags and classifies the total.
// No flags yields score 0, level "low". Confidence is fixed to
// "medium" for rule-based results.
func (e *Engine) Score(flags models.ValidationFlags) models.RiskResult {
	score := 0
	if flags.SubtotalMismatch {
		score += weightSubtotalMismatch
	}
	if flags.TotalMismatch {
		score += weightTotalMismatch
	}
	if flags.HighUnitPrice {
		score += weightHighUnitPrice
	}
	if flags.GSTInvalid {
		score += weightGSTInvalid
	}
	if flags.GSTMismatch {
		score += weightGSTMismatch
	}
	if flags.DuplicateInvoice {
		score += weightDuplicateInvoice
	}
	if flags.DateOutsideContract {
		score += weightDateOutsideContract
	}
	if flags.VendorNotFound {
		score += weightVendorNotFound
	}
	if flags.InvoiceDateFuture {
		score += weightInvoiceDateFuture
	}
	if flags.TaxRateUnusual {
		score += weightTaxRateUnusual
	}

	level := models.RiskLevelLow
	switch {
	case score >= highThreshold:
		level = models.RiskLevelHigh
	case score >= mediumThreshold:
		level = models.RiskLevelMedium
	}

	return models.RiskResult{
		RiskScore:     score,
		RiskLevel:     level,
		Justification: justification,
		Confidence:    "medium",
	}
}
