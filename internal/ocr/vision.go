package ocr

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const transcriptionPrompt = `Transcribe all visible text from this scanned invoice.
Preserve the reading order, one line per printed line.
Return only the transcribed text, no commentary.`

// VisionExtractor transcribes a scanned invoice with a vision model.
// It stands in for a local OCR engine when documents have no text
// layer.
type VisionExtractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewVisionExtractor creates a vision-based text extractor.
func NewVisionExtractor(apiKey, model string, logger *zap.Logger) *VisionExtractor {
	return &VisionExtractor{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// ExtractText transcribes the document's pages. Failures degrade to
// empty text so the audit proceeds on the structured extraction alone.
func (e *VisionExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	pages, err := RenderPages(path, 2)
	if err != nil {
		e.logger.Warn("Failed to render document for transcription",
			zap.String("path", path),
			zap.Error(err))
		return "", nil
	}

	contentParts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: transcriptionPrompt,
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
		Temperature: 0,
		MaxTokens:   2048,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: contentParts,
			},
		},
	})
	if err != nil {
		e.logger.Warn("Transcription call failed", zap.String("path", path), zap.Error(err))
		return "", nil
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}
