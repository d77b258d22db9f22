package ocr

import (
	"context"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// FitzExtractor reads the embedded text layer of a PDF. Scanned images
// have no text layer, so this extractor yields empty text for them and
// the vision model works from the rendered pages instead.
type FitzExtractor struct {
	logger *zap.Logger
}

// NewFitzExtractor creates a text-layer extractor.
func NewFitzExtractor(logger *zap.Logger) *FitzExtractor {
	return &FitzExtractor{logger: logger}
}

// ExtractText returns the document's text layer. Unreadable documents
// yield empty text, never an error.
func (e *FitzExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		e.logger.Warn("Failed to open document for text extraction",
			zap.String("path", path),
			zap.Error(err))
		return "", nil
	}
	defer doc.Close()

	var pages []string
	for pageNum := 0; pageNum < doc.NumPage(); pageNum++ {
		text, err := doc.Text(pageNum)
		if err != nil {
			e.logger.Warn("Failed to read page text",
				zap.String("path", path),
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n"), nil
}
