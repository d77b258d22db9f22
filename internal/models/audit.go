package models

// ValidationFlags is the fixed set of independent anomaly signals the
// logical validator can raise. A plain struct keeps the risk scoring
// table exhaustive and statically checkable.
type ValidationFlags struct {
	SubtotalMismatch    bool `json:"subtotal_mismatch"`
	TotalMismatch       bool `json:"total_mismatch"`
	DateOutsideContract bool `json:"date_outside_contract"`
	DuplicateInvoice    bool `json:"duplicate_invoice"`
	GSTInvalid          bool `json:"gst_invalid"`
	GSTMismatch         bool `json:"gst_mismatch"`
	HighUnitPrice       bool `json:"high_unit_price"`
	VendorNotFound      bool `json:"vendor_not_found"`
	InvoiceDateFuture   bool `json:"invoice_date_future"`
	TaxRateUnusual      bool `json:"tax_rate_unusual"`
}

// Raised returns the JSON names of the flags that are set, in the
// struct's declaration order.
func (f ValidationFlags) Raised() []string {
	var raised []string
	for _, e := range []struct {
		name string
		set  bool
	}{
		{"subtotal_mismatch", f.SubtotalMismatch},
		{"total_mismatch", f.TotalMismatch},
		{"date_outside_contract", f.DateOutsideContract},
		{"duplicate_invoice", f.DuplicateInvoice},
		{"gst_invalid", f.GSTInvalid},
		{"gst_mismatch", f.GSTMismatch},
		{"high_unit_price", f.HighUnitPrice},
		{"vendor_not_found", f.VendorNotFound},
		{"invoice_date_future", f.InvoiceDateFuture},
		{"tax_rate_unusual", f.TaxRateUnusual},
	} {
		if e.set {
			raised = append(raised, e.name)
		}
	}
	return raised
}

// Risk level constants.
const (
	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"
)

// RiskResult is a risk judgment for one invoice, either from the
// rule-based engine or from the vision model's second opinion.
type RiskResult struct {
	RiskScore     int    `json:"risk_score"` // unclamped upward, 0-100+
	RiskLevel     string `json:"risk_level"`
	Justification string `json:"justification"`
	Confidence    string `json:"confidence"`
}

// Answer is a three-valued compliance verdict. "unknown" is used when
// the inputs needed to decide the question are missing or unparseable,
// never as a default for a decidable case.
type Answer string

const (
	AnswerYes     Answer = "yes"
	AnswerNo      Answer = "no"
	AnswerUnknown Answer = "unknown"
)

// Compliance question keys.
const (
	QuestionWithinContractPeriod  = "invoice_within_contract_period"
	QuestionVendorApproved        = "vendor_is_approved"
	QuestionInternallyConsistent  = "invoice_internally_consistent"
	QuestionDateNotInFuture       = "invoice_date_not_in_future"
	QuestionTaxRateMatchesPolicy  = "tax_rate_matches_policy"
)

// AuditReport aggregates everything one audit run produced. It is
// assembled once by the orchestrator and not mutated afterwards.
type AuditReport struct {
	Invoice    Invoice           `json:"invoice"`
	Flags      ValidationFlags   `json:"flags"`
	Risk       RiskResult        `json:"risk"`
	VLMRisk    *RiskResult       `json:"vlm_risk,omitempty"`
	Compliance map[string]Answer `json:"compliance,omitempty"`
	RawText    string            `json:"raw_text,omitempty"`
}
