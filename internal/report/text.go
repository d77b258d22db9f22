// Package report renders finished audit reports for people. It is a
// pure consumer of the audit aggregate.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mzhao/ai-invoice-audit/internal/models"
)

// RenderText renders an audit report as plain text for terminal output.
func RenderText(report *models.AuditReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Invoice: %s\n", report.Invoice.InvoiceNumber)
	fmt.Fprintf(&b, "Vendor: %s\n", report.Invoice.VendorName)
	fmt.Fprintf(&b, "Date: %s\n", report.Invoice.InvoiceDate)

	b.WriteString("Flags:\n")
	for _, name := range report.Flags.Raised() {
		fmt.Fprintf(&b, "- %s\n", name)
	}

	fmt.Fprintf(&b, "Risk: %d (%s)\n", report.Risk.RiskScore, report.Risk.RiskLevel)
	fmt.Fprintf(&b, "Justification: %s\n", report.Risk.Justification)

	if report.VLMRisk != nil {
		fmt.Fprintf(&b, "VLM Risk: %d (%s)\n", report.VLMRisk.RiskScore, report.VLMRisk.RiskLevel)
		fmt.Fprintf(&b, "VLM Justification: %s\n", report.VLMRisk.Justification)
	}

	if report.Compliance != nil {
		b.WriteString("Compliance:\n")
		for _, q := range sortedQuestions(report.Compliance) {
			fmt.Fprintf(&b, "- %s: %s\n", q, report.Compliance[q])
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func sortedQuestions(answers map[string]models.Answer) []string {
	questions := make([]string, 0, len(answers))
	for q := range answers {
		questions = append(questions, q)
	}
	sort.Strings(questions)
	return questions
}
