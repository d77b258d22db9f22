// Package vlm obtains a second, advisory risk opinion from a vision
// model. The opinion is carried alongside the rule-based score and
// never feeds back into it.
package vlm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mzhao/ai-invoice-audit/internal/extract"
	"github.com/mzhao/ai-invoice-audit/internal/models"
	"github.com/mzhao/ai-invoice-audit/internal/ocr"
)

// OutputError indicates the model's risk opinion could not be parsed.
// It propagates as a failure; it is never silently dropped.
type OutputError struct {
	Msg string
	Err error
}

func (e *OutputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// Analyzer asks a vision model for a fraud-risk opinion.
type Analyzer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewAnalyzer creates a risk analyzer.
func NewAnalyzer(apiKey, model string, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

type riskPayload struct {
	RiskScore     int    `json:"risk_score"`
	RiskLevel     string `json:"risk_level"`
	Justification string `json:"justification"`
	Confidence    string `json:"confidence"`
}

// Analyze requests a risk opinion for the invoice, providing the
// extracted structure and the raised validation flags as context.
func (a *Analyzer) Analyze(ctx context.Context, imagePath string, invoice models.Invoice, flags models.ValidationFlags) (models.RiskResult, error) {
	pages, err := ocr.RenderPages(imagePath, 2)
	if err != nil {
		return models.RiskResult{}, fmt.Errorf("failed to render document: %w", err)
	}

	invoiceJSON, err := json.Marshal(invoice)
	if err != nil {
		return models.RiskResult{}, fmt.Errorf("failed to marshal invoice: %w", err)
	}

	raised := flags.Raised()
	issues := "none"
	if len(raised) > 0 {
		issues = strings.Join(raised, ", ")
	}

	prompt := fmt.Sprintf(`Analyze this invoice for fraud risk.
Return JSON with keys: risk_score (0-100), risk_level (low/medium/high),
justification, confidence.

Validation issues found: %s.
Extracted fields: %s.

Return only JSON.`, issues, string(invoiceJSON))

	contentParts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: prompt,
		},
	}
	for _, page := range pages {
		contentParts = append(contentParts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(page)),
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0.2,
		MaxTokens:   1024,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a fraud analyst reviewing scanned invoices. Always respond with valid JSON.",
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: contentParts,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return models.RiskResult{}, fmt.Errorf("risk opinion call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.RiskResult{}, &OutputError{Msg: "no response from model"}
	}

	result, err := ParseRiskResult(resp.Choices[0].Message.Content)
	if err != nil {
		a.logger.Error("Failed to parse risk opinion",
			zap.String("path", imagePath),
			zap.Error(err))
		return models.RiskResult{}, err
	}

	a.logger.Info("Model risk opinion received",
		zap.Int("risk_score", result.RiskScore),
		zap.String("risk_level", result.RiskLevel))
	return result, nil
}

// ParseRiskResult parses model output into a RiskResult.
func ParseRiskResult(output string) (models.RiskResult, error) {
	block, err := extract.ExtractJSONBlock(output)
	if err != nil {
		return models.RiskResult{}, &OutputError{Msg: "no JSON object in risk opinion", Err: err}
	}

	var payload riskPayload
	if err := json.Unmarshal(block, &payload); err != nil {
		return models.RiskResult{}, &OutputError{Msg: "failed to parse risk opinion JSON", Err: err}
	}
	return models.RiskResult{
		RiskScore:     payload.RiskScore,
		RiskLevel:     payload.RiskLevel,
		Justification: payload.Justification,
		Confidence:    payload.Confidence,
	}, nil
}
