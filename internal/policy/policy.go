// Package policy extracts a contract period and an allowed tax rate
// from free-form contract text. Extraction is best-effort pattern
// matching: absence of a pattern yields unset fields, never an error.
package policy

import (
	"regexp"
	"strconv"

	"github.com/mzhao/ai-invoice-audit/pkg/utils"
)

// Policy is the best-effort extraction from unstructured contract
// text. Empty date strings and a nil rate mean "unset", which is a
// first-class value distinct from zero.
type Policy struct {
	StartDate      string   `json:"start_date,omitempty"` // ISO date or empty
	EndDate        string   `json:"end_date,omitempty"`   // ISO date or empty
	AllowedTaxRate *float64 `json:"allowed_tax_rate,omitempty"` // percentage, not 0-1
}

// HasPeriod reports whether both contract dates were extracted.
func (p Policy) HasPeriod() bool {
	return p.StartDate != "" && p.EndDate != ""
}

// The hyphen separator requires surrounding whitespace so that
// hyphenated dates ("2024-01-01") are not split mid-date.
var dateRangeRe = regexp.MustCompile(
	`(?i)(?:effective|start|from)\s*[:\-]?\s*([^\n]+?)\s+(?:to|through|-)\s+([^\n]+)`)

var taxRateRe = regexp.MustCompile(
	`(?i)(?:tax|gst|vat)\s*rate\s*[:\-]?\s*(\d+(?:\.\d+)?)\s*%`)

// Parse extracts a Policy from arbitrary text. Only the first match of
// each pattern is used. A date that fails to parse leaves its field
// unset; a rate is stored verbatim as a percentage.
func Parse(text string) Policy {
	var p Policy
	if text == "" {
		return p
	}

	if m := dateRangeRe.FindStringSubmatch(text); m != nil {
		if start, ok := utils.ParseDate(m[1]); ok {
			p.StartDate = start.Format("2006-01-02")
		}
		if end, ok := utils.ParseDate(m[2]); ok {
			p.EndDate = end.Format("2006-01-02")
		}
	}

	if m := taxRateRe.FindStringSubmatch(text); m != nil {
		if rate, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.AllowedTaxRate = &rate
		}
	}

	return p
}
