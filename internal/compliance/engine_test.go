package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mzhao/ai-invoice-audit/internal/models"
	"github.com/mzhao/ai-invoice-audit/internal/policy"
	"github.com/mzhao/ai-invoice-audit/internal/vendors"
)

func testInvoice() models.Invoice {
	return models.Invoice{
		InvoiceNumber: "INV-001",
		VendorName:    "Acme Corp",
		InvoiceDate:   "2024-03-10",
		Subtotal:      100,
		Tax:           10,
		Total:         110,
	}
}

func TestEvaluate_NoInputs(t *testing.T) {
	answers := NewEngine().Evaluate(testInvoice(), nil, nil, nil)

	assert.Equal(t, models.AnswerUnknown, answers[models.QuestionWithinContractPeriod])
	assert.Equal(t, models.AnswerUnknown, answers[models.QuestionVendorApproved])
	assert.Equal(t, models.AnswerUnknown, answers[models.QuestionTaxRateMatchesPolicy])

	// Flag-derived questions are absent without flags.
	_, ok := answers[models.QuestionInternallyConsistent]
	assert.False(t, ok)
	_, ok = answers[models.QuestionDateNotInFuture]
	assert.False(t, ok)
}

func TestEvaluate_ContractPeriod(t *testing.T) {
	engine := NewEngine()
	pol := &policy.Policy{StartDate: "2024-01-01", EndDate: "2024-03-31"}

	t.Run("inside", func(t *testing.T) {
		answers := engine.Evaluate(testInvoice(), pol, nil, nil)
		assert.Equal(t, models.AnswerYes, answers[models.QuestionWithinContractPeriod])
	})

	t.Run("boundary day counts as inside", func(t *testing.T) {
		invoice := testInvoice()
		invoice.InvoiceDate = "2024-03-31"
		answers := engine.Evaluate(invoice, pol, nil, nil)
		assert.Equal(t, models.AnswerYes, answers[models.QuestionWithinContractPeriod])
	})

	t.Run("outside", func(t *testing.T) {
		invoice := testInvoice()
		invoice.InvoiceDate = "2024-04-01"
		answers := engine.Evaluate(invoice, pol, nil, nil)
		assert.Equal(t, models.AnswerNo, answers[models.QuestionWithinContractPeriod])
	})

	t.Run("unparseable invoice date", func(t *testing.T) {
		invoice := testInvoice()
		invoice.InvoiceDate = "sometime in spring"
		answers := engine.Evaluate(invoice, pol, nil, nil)
		assert.Equal(t, models.AnswerUnknown, answers[models.QuestionWithinContractPeriod])
	})

	t.Run("partial period", func(t *testing.T) {
		partial := &policy.Policy{StartDate: "2024-01-01"}
		answers := engine.Evaluate(testInvoice(), partial, nil, nil)
		assert.Equal(t, models.AnswerUnknown, answers[models.QuestionWithinContractPeriod])
	})
}

func TestEvaluate_VendorApproved(t *testing.T) {
	engine := NewEngine()
	dir := vendors.NewMemoryDirectory(
		[]models.VendorRecord{{VendorName: "Acme Corp", GSTNumber: "GST1234567"}},
		nil,
	)

	answers := engine.Evaluate(testInvoice(), nil, dir, nil)
	assert.Equal(t, models.AnswerYes, answers[models.QuestionVendorApproved])

	invoice := testInvoice()
	invoice.VendorName = "Nobody Inc"
	answers = engine.Evaluate(invoice, nil, dir, nil)
	assert.Equal(t, models.AnswerNo, answers[models.QuestionVendorApproved])
}

func TestEvaluate_FlagDerivedQuestions(t *testing.T) {
	engine := NewEngine()

	t.Run("clean flags", func(t *testing.T) {
		answers := engine.Evaluate(testInvoice(), nil, nil, &models.ValidationFlags{})
		assert.Equal(t, models.AnswerYes, answers[models.QuestionInternallyConsistent])
		assert.Equal(t, models.AnswerYes, answers[models.QuestionDateNotInFuture])
	})

	t.Run("subtotal mismatch breaks consistency", func(t *testing.T) {
		flags := &models.ValidationFlags{SubtotalMismatch: true}
		answers := engine.Evaluate(testInvoice(), nil, nil, flags)
		assert.Equal(t, models.AnswerNo, answers[models.QuestionInternallyConsistent])
	})

	t.Run("future date", func(t *testing.T) {
		flags := &models.ValidationFlags{InvoiceDateFuture: true}
		answers := engine.Evaluate(testInvoice(), nil, nil, flags)
		assert.Equal(t, models.AnswerNo, answers[models.QuestionDateNotInFuture])
	})
}

func TestEvaluate_TaxRate(t *testing.T) {
	engine := NewEngine()
	rate := 10.0
	pol := &policy.Policy{AllowedTaxRate: &rate}

	t.Run("matches", func(t *testing.T) {
		answers := engine.Evaluate(testInvoice(), pol, nil, nil)
		assert.Equal(t, models.AnswerYes, answers[models.QuestionTaxRateMatchesPolicy])
	})

	t.Run("deviates", func(t *testing.T) {
		invoice := testInvoice()
		invoice.Tax = 18
		answers := engine.Evaluate(invoice, pol, nil, nil)
		assert.Equal(t, models.AnswerNo, answers[models.QuestionTaxRateMatchesPolicy])
	})

	t.Run("zero subtotal", func(t *testing.T) {
		invoice := testInvoice()
		invoice.Subtotal = 0
		answers := engine.Evaluate(invoice, pol, nil, nil)
		assert.Equal(t, models.AnswerUnknown, answers[models.QuestionTaxRateMatchesPolicy])
	})
}

// The flag and the compliance answer are two views of the same check
// and must never disagree.
func TestEvaluate_AgreesWithFlags(t *testing.T) {
	engine := NewEngine()
	rate := 10.0
	pol := &policy.Policy{
		StartDate:      "2024-01-01",
		EndDate:        "2024-12-31",
		AllowedTaxRate: &rate,
	}

	flags := models.ValidationFlags{TaxRateUnusual: true}
	invoice := testInvoice()
	invoice.Tax = 18

	answers := engine.Evaluate(invoice, pol, nil, &flags)
	assert.Equal(t, models.AnswerNo, answers[models.QuestionTaxRateMatchesPolicy])
	assert.Equal(t, models.AnswerYes, answers[models.QuestionWithinContractPeriod])
}
