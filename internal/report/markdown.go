package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/mzhao/ai-invoice-audit/internal/models"
)

// WriteMarkdown renders an audit report as markdown for sharing.
func WriteMarkdown(w io.Writer, report *models.AuditReport) error {
	md := markdown.NewMarkdown(w)

	md.H1("Invoice Audit Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows: [][]string{
			{"Invoice", report.Invoice.InvoiceNumber},
			{"Vendor", report.Invoice.VendorName},
			{"Date", report.Invoice.InvoiceDate},
			{"Subtotal", fmt.Sprintf("%.2f", report.Invoice.Subtotal)},
			{"Tax", fmt.Sprintf("%.2f", report.Invoice.Tax)},
			{"Total", fmt.Sprintf("%.2f", report.Invoice.Total)},
		},
	})
	md.PlainText("")

	md.H2("Risk")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Source", "Score", "Level", "Justification"},
		Rows:   riskRows(report),
	})
	md.PlainText("")

	raised := report.Flags.Raised()
	md.H2("Validation Flags")
	md.PlainText("")
	if len(raised) == 0 {
		md.PlainText("No flags raised.")
	} else {
		md.BulletList(raised...)
	}
	md.PlainText("")

	if report.Compliance != nil {
		md.H2("Compliance")
		md.PlainText("")
		var rows [][]string
		for _, q := range sortedQuestions(report.Compliance) {
			rows = append(rows, []string{q, string(report.Compliance[q])})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Question", "Answer"},
			Rows:   rows,
		})
	}

	return md.Build()
}

func riskRows(report *models.AuditReport) [][]string {
	rows := [][]string{
		{"Rules", strconv.Itoa(report.Risk.RiskScore), report.Risk.RiskLevel, report.Risk.Justification},
	}
	if report.VLMRisk != nil {
		rows = append(rows, []string{
			"Model", strconv.Itoa(report.VLMRisk.RiskScore), report.VLMRisk.RiskLevel, report.VLMRisk.Justification,
		})
	}
	return rows
}
