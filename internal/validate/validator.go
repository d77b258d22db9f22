// Package validate derives the validation flag set for an invoice.
// Each flag is an independent function of the invoice, the vendor
// directory, and the contract policy; toggling one input flips only
// the flags whose condition it affects.
package validate

import (
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mzhao/ai-invoice-audit/internal/models"
	"github.com/mzhao/ai-invoice-audit/internal/policy"
	"github.com/mzhao/ai-invoice-audit/internal/vendors"
	"github.com/mzhao/ai-invoice-audit/pkg/utils"
)

// DefaultHighUnitPriceThreshold is the unit price above which a line
// item is flagged when no threshold is configured.
const DefaultHighUnitPriceThreshold = 10000.0

// taxRateTolerancePoints is the allowed deviation, in percentage
// points, between the invoice's effective tax rate and the policy's.
const taxRateTolerancePoints = 1.0

var gstRe = regexp.MustCompile(`(?i)^[A-Z0-9]{6,15}$`)

// LogicalValidator performs the rule checks. It holds no per-audit
// state and is safe for concurrent use.
type LogicalValidator struct {
	highUnitPriceThreshold float64
	now                    func() time.Time
	logger                 *zap.Logger
}

// NewLogicalValidator creates a validator. A non-positive threshold
// falls back to the default.
func NewLogicalValidator(highUnitPriceThreshold float64, logger *zap.Logger) *LogicalValidator {
	if highUnitPriceThreshold <= 0 {
		highUnitPriceThreshold = DefaultHighUnitPriceThreshold
	}
	return &LogicalValidator{
		highUnitPriceThreshold: highUnitPriceThreshold,
		now:                    time.Now,
		logger:                 logger,
	}
}

// Validate derives the flag set for an invoice. Both the directory and
// the policy are optional; checks that depend on a missing collaborator
// stay false. An unparseable invoice date silently skips the
// date-dependent checks.
func (v *LogicalValidator) Validate(invoice models.Invoice, dir vendors.Directory, pol *policy.Policy) models.ValidationFlags {
	var flags models.ValidationFlags

	if !NearlyEqual(ComputeSubtotal(invoice.LineItems), invoice.Subtotal) {
		flags.SubtotalMismatch = true
	}
	if !NearlyEqual(invoice.Subtotal+invoice.Tax, invoice.Total) {
		flags.TotalMismatch = true
	}
	for _, item := range invoice.LineItems {
		if item.UnitPrice > v.highUnitPriceThreshold {
			flags.HighUnitPrice = true
			break
		}
	}

	invDate, invDateOK := utils.ParseDate(invoice.InvoiceDate)
	if !invDateOK && invoice.InvoiceDate != "" {
		v.logger.Debug("Invoice date did not parse, skipping date checks",
			zap.String("invoice_date", invoice.InvoiceDate))
	}
	if invDateOK && invDate.After(today(v.now())) {
		flags.InvoiceDateFuture = true
	}

	if pol != nil {
		if pol.HasPeriod() && invDateOK {
			start, startOK := utils.ParseDate(pol.StartDate)
			end, endOK := utils.ParseDate(pol.EndDate)
			if startOK && endOK && (invDate.Before(start) || invDate.After(end)) {
				flags.DateOutsideContract = true
			}
		}

		if pol.AllowedTaxRate != nil && invoice.Subtotal > 0 {
			rate := (invoice.Tax / invoice.Subtotal) * 100.0
			if diff := rate - *pol.AllowedTaxRate; diff > taxRateTolerancePoints || diff < -taxRateTolerancePoints {
				flags.TaxRateUnusual = true
			}
		}
	}

	if dir != nil {
		vendor := dir.FindVendor(invoice.VendorName)
		if vendor == nil {
			flags.VendorNotFound = true
		}
		if vendor != nil && vendor.GSTNumber != "" && !ValidGST(vendor.GSTNumber) {
			flags.GSTInvalid = true
		}
		if dir.HasInvoiceNumber(invoice.InvoiceNumber) {
			flags.DuplicateInvoice = true
		}
	}

	return flags
}

// ValidGST reports whether a tax-registration identifier is 6-15
// alphanumeric characters, case-insensitive. Input is trimmed first.
func ValidGST(value string) bool {
	return gstRe.MatchString(strings.TrimSpace(value))
}

func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
