// Package pipeline sequences one invoice audit end to end. The
// orchestrator performs no business logic of its own beyond data
// threading; every judgment lives in the validator, risk, and
// compliance engines.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mzhao/ai-invoice-audit/internal/compliance"
	"github.com/mzhao/ai-invoice-audit/internal/models"
	"github.com/mzhao/ai-invoice-audit/internal/policy"
	"github.com/mzhao/ai-invoice-audit/internal/risk"
	"github.com/mzhao/ai-invoice-audit/internal/validate"
	"github.com/mzhao/ai-invoice-audit/internal/vendors"
)

// TextExtractor recovers raw text from a scanned document. An
// unreadable document yields empty text, not an error.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// StructuredExtractor turns a document into structured invoice fields.
// Unparseable model output is a hard failure for that document.
type StructuredExtractor interface {
	Extract(ctx context.Context, imagePath, rawText string) (models.Invoice, error)
}

// RiskAnalyzer produces the advisory model risk opinion.
type RiskAnalyzer interface {
	Analyze(ctx context.Context, imagePath string, invoice models.Invoice, flags models.ValidationFlags) (models.RiskResult, error)
}

// Auditor runs the audit sequence: text extraction, structured
// extraction, policy parse, validation, risk scoring, the optional
// model opinion, and compliance evaluation. All per-audit state is
// owned by the Run call; an Auditor may serve concurrent audits.
type Auditor struct {
	textExtractor TextExtractor
	extractor     StructuredExtractor
	validator     *validate.LogicalValidator
	riskEngine    *risk.Engine
	analyzer      RiskAnalyzer
	compliance    *compliance.Engine
	logger        *zap.Logger
}

// NewAuditor creates an auditor. textExtractor and analyzer are
// optional; nil disables raw text capture and the second opinion
// respectively.
func NewAuditor(
	textExtractor TextExtractor,
	extractor StructuredExtractor,
	validator *validate.LogicalValidator,
	riskEngine *risk.Engine,
	analyzer RiskAnalyzer,
	complianceEngine *compliance.Engine,
	logger *zap.Logger,
) *Auditor {
	return &Auditor{
		textExtractor: textExtractor,
		extractor:     extractor,
		validator:     validator,
		riskEngine:    riskEngine,
		analyzer:      analyzer,
		compliance:    complianceEngine,
		logger:        logger,
	}
}

// Run audits one invoice document. The vendor directory and policy
// text are optional; dependent checks degrade per the engines'
// contracts. The only hard failures are structured extraction and the
// model risk opinion.
func (a *Auditor) Run(ctx context.Context, imagePath string, dir vendors.Directory, policyText string) (*models.AuditReport, error) {
	a.logger.Info("Starting audit", zap.String("path", imagePath))

	var rawText string
	if a.textExtractor != nil {
		text, err := a.textExtractor.ExtractText(ctx, imagePath)
		if err != nil {
			a.logger.Warn("Text extraction failed, continuing without raw text",
				zap.String("path", imagePath),
				zap.Error(err))
		} else {
			rawText = text
		}
	}

	invoice, err := a.extractor.Extract(ctx, imagePath, rawText)
	if err != nil {
		return nil, fmt.Errorf("structured extraction failed: %w", err)
	}

	pol := policy.Parse(policyText)
	flags := a.validator.Validate(invoice, dir, &pol)
	riskResult := a.riskEngine.Score(flags)

	var vlmRisk *models.RiskResult
	if a.analyzer != nil {
		opinion, err := a.analyzer.Analyze(ctx, imagePath, invoice, flags)
		if err != nil {
			return nil, fmt.Errorf("model risk opinion failed: %w", err)
		}
		vlmRisk = &opinion
	}

	answers := a.compliance.Evaluate(invoice, &pol, dir, &flags)

	a.logger.Info("Audit completed",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Int("risk_score", riskResult.RiskScore),
		zap.String("risk_level", riskResult.RiskLevel),
		zap.Strings("flags", flags.Raised()))

	return &models.AuditReport{
		Invoice:    invoice,
		Flags:      flags,
		Risk:       riskResult,
		VLMRisk:    vlmRisk,
		Compliance: answers,
		RawText:    rawText,
	}, nil
}
