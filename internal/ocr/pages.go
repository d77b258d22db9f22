// Package ocr provides the text-extraction collaborators for the audit
// pipeline: a PDF text-layer reader and a vision-model transcriber.
// Text extraction never fails an audit: an unreadable document yields
// empty text.
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// RenderPages renders a document's pages to JPEG bytes for vision-model
// consumption. PDFs are rasterized page by page; JPEG and PNG files are
// re-encoded as a single page. maxPages caps the output; 0 means all.
func RenderPages(path string, maxPages int) ([][]byte, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("document not found: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
		page, err := renderImageFile(path, ext)
		if err != nil {
			return nil, err
		}
		return [][]byte{page}, nil
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if maxPages > 0 && pageCount > maxPages {
		pageCount = maxPages
	}

	var pages [][]byte
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		img, err := doc.Image(pageNum)
		if err != nil {
			continue
		}
		data, err := encodeJPEG(img)
		if err != nil {
			continue
		}
		pages = append(pages, data)
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages rendered from %s", path)
	}
	return pages, nil
}

func renderImageFile(path, ext string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	var img image.Image
	switch ext {
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(f)
	case ".png":
		img, err = png.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return encodeJPEG(img)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
