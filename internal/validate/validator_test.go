package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/mzhao/ai-invoice-audit/internal/models"
	"github.com/mzhao/ai-invoice-audit/internal/policy"
	"github.com/mzhao/ai-invoice-audit/internal/vendors"
)

// fixedNow pins the validator's clock so the future-date check is
// deterministic.
var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestValidator(threshold float64) *LogicalValidator {
	v := NewLogicalValidator(threshold, zap.NewNop())
	v.now = func() time.Time { return fixedNow }
	return v
}

func consistentInvoice() models.Invoice {
	return models.Invoice{
		InvoiceNumber: "INV-001",
		VendorName:    "Acme Corp",
		InvoiceDate:   "2024-03-10",
		LineItems: []models.LineItem{
			{Name: "Service", Qty: 2, UnitPrice: 50},
		},
		Subtotal: 100,
		Tax:      10,
		Total:    110,
	}
}

func TestValidate_CleanInvoice(t *testing.T) {
	v := newTestValidator(0)
	flags := v.Validate(consistentInvoice(), nil, nil)
	assert.Equal(t, models.ValidationFlags{}, flags)
	assert.Empty(t, flags.Raised())
}

func TestValidate_SubtotalMismatchOnly(t *testing.T) {
	v := newTestValidator(0)

	// Claimed subtotal 30 with no line items: computed subtotal is 0.
	// Total arithmetic still holds, so only the subtotal flag fires.
	invoice := models.Invoice{
		InvoiceNumber: "INV-002",
		VendorName:    "Acme Corp",
		InvoiceDate:   "2024-03-10",
		Subtotal:      30,
		Tax:           3,
		Total:         33,
	}

	flags := v.Validate(invoice, nil, nil)

	assert.True(t, flags.SubtotalMismatch)
	assert.False(t, flags.TotalMismatch)
	assert.Equal(t, []string{"subtotal_mismatch"}, flags.Raised())
}

func TestValidate_TotalMismatch(t *testing.T) {
	v := newTestValidator(0)
	invoice := consistentInvoice()
	invoice.Total = 125 // subtotal + tax is 110

	flags := v.Validate(invoice, nil, nil)

	assert.True(t, flags.TotalMismatch)
	assert.False(t, flags.SubtotalMismatch)
}

func TestValidate_ToleranceBoundary(t *testing.T) {
	v := newTestValidator(0)
	invoice := consistentInvoice()
	invoice.Total = 110.01

	flags := v.Validate(invoice, nil, nil)
	assert.False(t, flags.TotalMismatch)

	invoice.Total = 110.02
	flags = v.Validate(invoice, nil, nil)
	assert.True(t, flags.TotalMismatch)
}

func TestValidate_HighUnitPrice(t *testing.T) {
	t.Run("default threshold", func(t *testing.T) {
		v := newTestValidator(0)
		invoice := consistentInvoice()
		invoice.LineItems = []models.LineItem{
			{Name: "Server", Qty: 1, UnitPrice: 10000.01},
		}
		invoice.Subtotal = 10000.01
		invoice.Tax = 0
		invoice.Total = 10000.01

		flags := v.Validate(invoice, nil, nil)
		assert.True(t, flags.HighUnitPrice)
	})

	t.Run("exactly at threshold does not fire", func(t *testing.T) {
		v := newTestValidator(0)
		invoice := consistentInvoice()
		invoice.LineItems = []models.LineItem{
			{Name: "Server", Qty: 1, UnitPrice: 10000},
		}
		invoice.Subtotal = 10000
		invoice.Tax = 0
		invoice.Total = 10000

		flags := v.Validate(invoice, nil, nil)
		assert.False(t, flags.HighUnitPrice)
	})

	t.Run("custom threshold", func(t *testing.T) {
		v := newTestValidator(100)
		flags := v.Validate(consistentInvoice(), nil, nil) // unit price 50
		assert.False(t, flags.HighUnitPrice)

		invoice := consistentInvoice()
		invoice.LineItems[0].UnitPrice = 50
		invoice.LineItems = append(invoice.LineItems, models.LineItem{Name: "Laptop", Qty: 1, UnitPrice: 150})
		invoice.Subtotal = 250
		invoice.Tax = 25
		invoice.Total = 275
		flags = v.Validate(invoice, nil, nil)
		assert.True(t, flags.HighUnitPrice)
	})
}

func TestValidate_InvoiceDateFuture(t *testing.T) {
	v := newTestValidator(0)

	invoice := consistentInvoice()
	invoice.InvoiceDate = "2024-07-01" // after the pinned clock
	flags := v.Validate(invoice, nil, nil)
	assert.True(t, flags.InvoiceDateFuture)

	// Same day as the clock is not the future.
	invoice.InvoiceDate = "2024-06-15"
	flags = v.Validate(invoice, nil, nil)
	assert.False(t, flags.InvoiceDateFuture)
}

func TestValidate_UnparseableDateSkipsDateChecks(t *testing.T) {
	v := newTestValidator(0)

	invoice := consistentInvoice()
	invoice.InvoiceDate = "when the work was done"
	pol := &policy.Policy{StartDate: "2024-01-01", EndDate: "2024-12-31"}

	flags := v.Validate(invoice, nil, pol)

	assert.False(t, flags.InvoiceDateFuture)
	assert.False(t, flags.DateOutsideContract)
}

func TestValidate_DateOutsideContract(t *testing.T) {
	v := newTestValidator(0)
	pol := &policy.Policy{StartDate: "2024-01-01", EndDate: "2024-03-31"}

	tests := []struct {
		date string
		want bool
	}{
		{"2023-12-31", true},
		{"2024-01-01", false}, // boundaries are inclusive
		{"2024-02-15", false},
		{"2024-03-31", false},
		{"2024-04-01", true},
	}

	for _, tt := range tests {
		invoice := consistentInvoice()
		invoice.InvoiceDate = tt.date
		flags := v.Validate(invoice, nil, pol)
		assert.Equal(t, tt.want, flags.DateOutsideContract, tt.date)
	}
}

func TestValidate_TaxRateUnusual(t *testing.T) {
	v := newTestValidator(0)
	rate := 10.0
	pol := &policy.Policy{AllowedTaxRate: &rate}

	t.Run("matching rate", func(t *testing.T) {
		flags := v.Validate(consistentInvoice(), nil, pol) // 10/100 = 10%
		assert.False(t, flags.TaxRateUnusual)
	})

	t.Run("within one point", func(t *testing.T) {
		invoice := consistentInvoice()
		invoice.Tax = 10.5
		invoice.Total = 110.5
		flags := v.Validate(invoice, nil, pol)
		assert.False(t, flags.TaxRateUnusual)
	})

	t.Run("beyond one point", func(t *testing.T) {
		invoice := consistentInvoice()
		invoice.Tax = 18
		invoice.Total = 118
		flags := v.Validate(invoice, nil, pol)
		assert.True(t, flags.TaxRateUnusual)
	})

	t.Run("zero subtotal skips the check", func(t *testing.T) {
		invoice := models.Invoice{InvoiceDate: "2024-03-10", Total: 0}
		flags := v.Validate(invoice, nil, pol)
		assert.False(t, flags.TaxRateUnusual)
	})
}

func TestValidate_VendorChecks(t *testing.T) {
	dir := vendors.NewMemoryDirectory(
		[]models.VendorRecord{
			{VendorName: "Acme Corp", GSTNumber: "GST1234567"},
			{VendorName: "Shady LLC", GSTNumber: "AB12"},
			{VendorName: "Cash Traders"},
		},
		[]string{"INV-900"},
	)
	v := newTestValidator(0)

	t.Run("known vendor with valid registration", func(t *testing.T) {
		flags := v.Validate(consistentInvoice(), dir, nil)
		assert.False(t, flags.VendorNotFound)
		assert.False(t, flags.GSTInvalid)
	})

	t.Run("case-insensitive vendor match", func(t *testing.T) {
		invoice := consistentInvoice()
		invoice.VendorName = "ACME CORP"
		flags := v.Validate(invoice, dir, nil)
		assert.False(t, flags.VendorNotFound)
	})

	t.Run("unknown vendor", func(t *testing.T) {
		invoice := consistentInvoice()
		invoice.VendorName = "Nobody Inc"
		flags := v.Validate(invoice, dir, nil)
		assert.True(t, flags.VendorNotFound)
		assert.False(t, flags.GSTInvalid)
	})

	t.Run("registration too short", func(t *testing.T) {
		invoice := consistentInvoice()
		invoice.VendorName = "Shady LLC"
		flags := v.Validate(invoice, dir, nil)
		assert.False(t, flags.VendorNotFound)
		assert.True(t, flags.GSTInvalid)
	})

	t.Run("missing registration is not invalid", func(t *testing.T) {
		invoice := consistentInvoice()
		invoice.VendorName = "Cash Traders"
		flags := v.Validate(invoice, dir, nil)
		assert.False(t, flags.GSTInvalid)
	})

	t.Run("duplicate invoice number", func(t *testing.T) {
		invoice := consistentInvoice()
		invoice.InvoiceNumber = "INV-900"
		flags := v.Validate(invoice, dir, nil)
		assert.True(t, flags.DuplicateInvoice)
	})

	t.Run("no directory disables vendor checks", func(t *testing.T) {
		invoice := consistentInvoice()
		invoice.VendorName = "Nobody Inc"
		flags := v.Validate(invoice, nil, nil)
		assert.False(t, flags.VendorNotFound)
		assert.False(t, flags.DuplicateInvoice)
	})
}

func TestValidate_CombinedScenario(t *testing.T) {
	dir := vendors.NewMemoryDirectory(nil, nil)
	v := newTestValidator(0)

	// Subtotal mismatch plus a future date plus an unknown vendor.
	invoice := models.Invoice{
		InvoiceNumber: "INV-003",
		VendorName:    "Nobody Inc",
		InvoiceDate:   "2024-07-01",
		Subtotal:      30,
		Tax:           3,
		Total:         33,
	}

	flags := v.Validate(invoice, dir, nil)

	assert.True(t, flags.SubtotalMismatch)
	assert.True(t, flags.InvoiceDateFuture)
	assert.True(t, flags.VendorNotFound)
	assert.False(t, flags.TotalMismatch)
	assert.Len(t, flags.Raised(), 3)
}

func TestValidGST(t *testing.T) {
	assert.True(t, ValidGST("GST1234567"))
	assert.True(t, ValidGST("abc123"))        // case-insensitive
	assert.True(t, ValidGST("  GST1234567 ")) // trimmed
	assert.False(t, ValidGST("AB12"))         // too short
	assert.False(t, ValidGST("1234567890123456")) // too long
	assert.False(t, ValidGST("GST-1234567"))  // punctuation
	assert.False(t, ValidGST(""))
}

func TestNewLogicalValidator_ThresholdFallback(t *testing.T) {
	v := NewLogicalValidator(-1, zap.NewNop())
	assert.Equal(t, DefaultHighUnitPriceThreshold, v.highUnitPriceThreshold)

	v = NewLogicalValidator(500, zap.NewNop())
	assert.Equal(t, 500.0, v.highUnitPriceThreshold)
}
