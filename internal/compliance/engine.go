// Package compliance answers a fixed list of yes/no/unknown questions
// about an invoice. Each answer is computed independently; a missing
// input degrades that answer to "unknown" rather than failing the
// evaluation.
package compliance

import (
	"github.com/mzhao/ai-invoice-audit/internal/models"
	"github.com/mzhao/ai-invoice-audit/internal/policy"
	"github.com/mzhao/ai-invoice-audit/internal/vendors"
	"github.com/mzhao/ai-invoice-audit/pkg/utils"
)

// taxRateTolerancePoints matches the validator's tax rate tolerance so
// that the flag and the answer never disagree.
const taxRateTolerancePoints = 1.0

// Engine evaluates the compliance questions. It is stateless.
type Engine struct{}

// NewEngine creates a compliance engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate answers the compliance questions for an invoice. Policy,
// directory, and flags are all optional. The flag-derived questions are
// only present when flags are supplied.
func (e *Engine) Evaluate(invoice models.Invoice, pol *policy.Policy, dir vendors.Directory, flags *models.ValidationFlags) map[string]models.Answer {
	answers := make(map[string]models.Answer)

	answers[models.QuestionWithinContractPeriod] = models.AnswerUnknown
	if pol != nil && pol.HasPeriod() {
		invDate, invOK := utils.ParseDate(invoice.InvoiceDate)
		start, startOK := utils.ParseDate(pol.StartDate)
		end, endOK := utils.ParseDate(pol.EndDate)
		if invOK && startOK && endOK {
			if !invDate.Before(start) && !invDate.After(end) {
				answers[models.QuestionWithinContractPeriod] = models.AnswerYes
			} else {
				answers[models.QuestionWithinContractPeriod] = models.AnswerNo
			}
		}
	}

	if dir == nil {
		answers[models.QuestionVendorApproved] = models.AnswerUnknown
	} else if dir.FindVendor(invoice.VendorName) != nil {
		answers[models.QuestionVendorApproved] = models.AnswerYes
	} else {
		answers[models.QuestionVendorApproved] = models.AnswerNo
	}

	if flags != nil {
		if flags.SubtotalMismatch || flags.TotalMismatch {
			answers[models.QuestionInternallyConsistent] = models.AnswerNo
		} else {
			answers[models.QuestionInternallyConsistent] = models.AnswerYes
		}
		if flags.InvoiceDateFuture {
			answers[models.QuestionDateNotInFuture] = models.AnswerNo
		} else {
			answers[models.QuestionDateNotInFuture] = models.AnswerYes
		}
	}

	answers[models.QuestionTaxRateMatchesPolicy] = models.AnswerUnknown
	if pol != nil && pol.AllowedTaxRate != nil && invoice.Subtotal > 0 {
		rate := (invoice.Tax / invoice.Subtotal) * 100.0
		diff := rate - *pol.AllowedTaxRate
		if diff <= taxRateTolerancePoints && diff >= -taxRateTolerancePoints {
			answers[models.QuestionTaxRateMatchesPolicy] = models.AnswerYes
		} else {
			answers[models.QuestionTaxRateMatchesPolicy] = models.AnswerNo
		}
	}

	return answers
}
