package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mzhao/ai-invoice-audit/internal/models"
	"github.com/mzhao/ai-invoice-audit/internal/ocr"
)

const extractionPrompt = `Extract a JSON object from this invoice with keys:
invoice_number, vendor_name, invoice_date,
line_items (array of {name, qty, unit_price}), subtotal, tax, total.

Use numbers without currency symbols for amounts. If a field is not
visible, use empty string "" or 0. Return only JSON.`

// Extractor extracts structured invoice fields with a vision model.
type Extractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewExtractor creates a structured extractor.
func NewExtractor(apiKey, model string, logger *zap.Logger) *Extractor {
	return &Extractor{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// Extract reads an invoice document and returns the structured fields.
// rawText, when available from text extraction, is passed to the model
// as additional context. Model output that does not parse is a
// ParseError.
func (e *Extractor) Extract(ctx context.Context, imagePath, rawText string) (models.Invoice, error) {
	e.logger.Info("Extracting invoice structure", zap.String("path", imagePath))

	pages, err := ocr.RenderPages(imagePath, 2)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("failed to render document: %w", err)
	}

	prompt := extractionPrompt
	if rawText != "" {
		prompt = fmt.Sprintf("%s\n\nText already recognized from the document:\n%s", extractionPrompt, rawText)
	}

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

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0.1,
		MaxTokens:   2048,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert at reading scanned invoices. Extract fields exactly as printed. Always respond with valid JSON.",
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
		return models.Invoice{}, fmt.Errorf("extraction call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Invoice{}, &ParseError{Msg: "no response from model"}
	}

	invoice, err := ParseInvoice(resp.Choices[0].Message.Content)
	if err != nil {
		e.logger.Error("Failed to parse extraction output",
			zap.String("path", imagePath),
			zap.Error(err))
		return models.Invoice{}, err
	}

	e.logger.Info("Invoice structure extracted",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("vendor", invoice.VendorName),
		zap.Float64("total", invoice.Total))
	return invoice, nil
}

// ParseInvoice parses model output into an Invoice. Exposed separately
// so callers with raw model output (tests, replays) share the exact
// parse behavior.
func ParseInvoice(output string) (models.Invoice, error) {
	block, err := ExtractJSONBlock(output)
	if err != nil {
		return models.Invoice{}, err
	}

	var payload invoicePayload
	if err := json.Unmarshal(block, &payload); err != nil {
		return models.Invoice{}, &ParseError{Msg: "failed to parse invoice JSON from model output", Err: err}
	}
	return payload.toInvoice(), nil
}
