package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CollectImages builds unlabeled manifest rows from the image files in
// a directory (non-recursive).
func CollectImages(dir, source string) ([]Row, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	var rows []Row
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".pdf":
		default:
			continue
		}
		rows = append(rows, Row{
			ImagePath: filepath.ToSlash(filepath.Join(dir, entry.Name())),
			JSONData:  json.RawMessage("{}"),
			Source:    source,
			Labeled:   false,
		})
	}
	return rows, nil
}

// CollectLabeledBatch builds labeled manifest rows from a batch
// directory containing CSV files with "File Name", "Json Data", and
// "OCRed Text" columns. Image files are resolved against the listed
// subdirectories; rows whose image cannot be found are skipped.
func CollectLabeledBatch(batchDir string, imageSubdirs []string, source string) ([]Row, error) {
	matches, err := filepath.Glob(filepath.Join(batchDir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob batch directory: %w", err)
	}

	var rows []Row
	for _, csvPath := range matches {
		batchRows, err := collectLabeledCSV(csvPath, batchDir, imageSubdirs, source)
		if err != nil {
			return nil, err
		}
		rows = append(rows, batchRows...)
	}
	return rows, nil
}

func collectLabeledCSV(csvPath, batchDir string, imageSubdirs []string, source string) ([]Row, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read batch CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read batch CSV row: %w", err)
		}

		fileName := cell(record, "File Name")
		if fileName == "" {
			continue
		}

		imagePath := resolveImage(batchDir, imageSubdirs, fileName)
		if imagePath == "" {
			continue
		}

		jsonData := json.RawMessage("{}")
		if raw := cell(record, "Json Data"); raw != "" && json.Valid([]byte(raw)) {
			jsonData = json.RawMessage(raw)
		}

		rows = append(rows, Row{
			ImagePath: filepath.ToSlash(imagePath),
			JSONData:  jsonData,
			OCRText:   cell(record, "OCRed Text"),
			Source:    source,
			Labeled:   true,
		})
	}
	return rows, nil
}

func resolveImage(batchDir string, imageSubdirs []string, fileName string) string {
	for _, sub := range imageSubdirs {
		candidate := filepath.Join(batchDir, sub, fileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
