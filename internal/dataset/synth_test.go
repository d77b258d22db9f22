package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mzhao/ai-invoice-audit/internal/validate"
)

func TestGenerateInvoice_Consistent(t *testing.T) {
	invoice := GenerateInvoice(SynthOptions{Seed: 1, Items: 3})

	require.Len(t, invoice.LineItems, 3)
	assert.NotEmpty(t, invoice.InvoiceNumber)
	assert.NotEmpty(t, invoice.VendorName)
	assert.NotEmpty(t, invoice.InvoiceDate)

	// A non-fraudulent invoice passes the arithmetic checks.
	validator := validate.NewLogicalValidator(0, zap.NewNop())
	flags := validator.Validate(invoice, nil, nil)
	assert.False(t, flags.SubtotalMismatch)
	assert.False(t, flags.TotalMismatch)
}

func TestGenerateInvoice_Fraudulent(t *testing.T) {
	invoice := GenerateInvoice(SynthOptions{Seed: 1, Fraudulent: true, Items: 3})

	validator := validate.NewLogicalValidator(0, zap.NewNop())
	flags := validator.Validate(invoice, nil, nil)
	assert.False(t, flags.SubtotalMismatch)
	assert.True(t, flags.TotalMismatch)
}

func TestGenerateInvoice_Deterministic(t *testing.T) {
	a := GenerateInvoice(SynthOptions{Seed: 42, Items: 2})
	b := GenerateInvoice(SynthOptions{Seed: 42, Items: 2})
	c := GenerateInvoice(SynthOptions{Seed: 43, Items: 2})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerateInvoice_DefaultItemCount(t *testing.T) {
	invoice := GenerateInvoice(SynthOptions{Seed: 5})
	assert.GreaterOrEqual(t, len(invoice.LineItems), 2)
	assert.LessOrEqual(t, len(invoice.LineItems), 4)
}
