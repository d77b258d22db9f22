package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mzhao/ai-invoice-audit/internal/compliance"
	"github.com/mzhao/ai-invoice-audit/internal/extract"
	"github.com/mzhao/ai-invoice-audit/internal/ocr"
	"github.com/mzhao/ai-invoice-audit/internal/pipeline"
	"github.com/mzhao/ai-invoice-audit/internal/report"
	"github.com/mzhao/ai-invoice-audit/internal/risk"
	"github.com/mzhao/ai-invoice-audit/internal/validate"
	"github.com/mzhao/ai-invoice-audit/internal/vendors"
	"github.com/mzhao/ai-invoice-audit/internal/vlm"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [document]",
		Short: "Audit one scanned invoice",
		Long: `Audit runs the full pipeline on one invoice document (PDF, JPEG,
or PNG): text extraction, structured extraction, rule validation, risk
scoring, an optional model risk opinion, and compliance evaluation.

Examples:
  # Audit an invoice
  auditctl audit invoice.pdf

  # Audit against a vendor directory and contract text
  auditctl audit invoice.pdf --vendor-db vendors.csv --contract contract.txt

  # Skip the model's second opinion and write JSON
  auditctl audit invoice.pdf --no-vlm --json-out report.json`,
		Args: cobra.ExactArgs(1),
		RunE: runAuditCmd,
	}

	cmd.Flags().String("vendor-db", "", "vendor directory file (CSV or XLSX)")
	cmd.Flags().String("contract", "", "contract policy text file")
	cmd.Flags().String("model", "gpt-4o", "vision model name")
	cmd.Flags().Bool("no-vlm", false, "skip the model risk opinion")
	cmd.Flags().Bool("no-ocr", false, "skip raw text extraction")
	cmd.Flags().Float64("high-unit-price", validate.DefaultHighUnitPriceThreshold,
		"unit price threshold for the high unit price flag")
	cmd.Flags().String("json-out", "", "write the full report as JSON to this file")
	cmd.Flags().String("markdown-out", "", "write the report as markdown to this file")

	return cmd
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	model, _ := cmd.Flags().GetString("model")
	noVLM, _ := cmd.Flags().GetBool("no-vlm")
	noOCR, _ := cmd.Flags().GetBool("no-ocr")
	threshold, _ := cmd.Flags().GetFloat64("high-unit-price")

	var directory vendors.Directory
	if path, _ := cmd.Flags().GetString("vendor-db"); path != "" {
		dir, err := vendors.Load(path, logger)
		if err != nil {
			return err
		}
		directory = dir
	}

	var policyText string
	if path, _ := cmd.Flags().GetString("contract"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read contract text: %w", err)
		}
		policyText = string(data)
	}

	var textExtractor pipeline.TextExtractor
	if !noOCR {
		textExtractor = ocr.NewFitzExtractor(logger)
	}
	var analyzer pipeline.RiskAnalyzer
	if !noVLM {
		analyzer = vlm.NewAnalyzer(apiKey, model, logger)
	}

	auditor := pipeline.NewAuditor(
		textExtractor,
		extract.NewExtractor(apiKey, model, logger),
		validate.NewLogicalValidator(threshold, logger),
		risk.NewEngine(),
		analyzer,
		compliance.NewEngine(),
		logger,
	)

	auditReport, err := auditor.Run(cmd.Context(), args[0], directory, policyText)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), report.RenderText(auditReport))

	if jsonOut, _ := cmd.Flags().GetString("json-out"); jsonOut != "" {
		if err := writeJSON(jsonOut, auditReport); err != nil {
			return err
		}
	}
	if mdOut, _ := cmd.Flags().GetString("markdown-out"); mdOut != "" {
		f, err := os.Create(mdOut)
		if err != nil {
			return fmt.Errorf("failed to create markdown report: %w", err)
		}
		defer f.Close()
		if err := report.WriteMarkdown(f, auditReport); err != nil {
			return fmt.Errorf("failed to write markdown report: %w", err)
		}
	}

	return nil
}
