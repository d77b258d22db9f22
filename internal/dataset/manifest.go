// Package dataset builds, splits, and evaluates invoice manifests used
// to measure extraction quality. Manifests are JSONL, one row per
// document.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Row is one manifest entry. JSONData holds the labeled ground truth
// where available; unlabeled rows carry an empty object.
type Row struct {
	ImagePath string          `json:"image_path"`
	JSONData  json.RawMessage `json:"json_data"`
	OCRText   string          `json:"ocr_text"`
	Source    string          `json:"source"`
	Labeled   bool            `json:"labeled"`
}

// LoadJSONL reads manifest rows from a JSONL file, skipping blank
// lines.
func LoadJSONL(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	var rows []Row
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row Row
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("malformed manifest row at line %d: %w", lineNum, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return rows, nil
}

// WriteJSONL writes manifest rows to a JSONL file, creating parent
// directories as needed.
func WriteJSONL(path string, rows []Row) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal manifest row: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write manifest row: %w", err)
		}
	}
	return w.Flush()
}
