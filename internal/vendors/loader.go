package vendors

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mzhao/ai-invoice-audit/internal/models"
)

// Load opens a vendor directory file, choosing the loader by file
// extension. CSV and XLSX are supported.
func Load(path string, logger *zap.Logger) (*MemoryDirectory, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path, logger)
	case ".xlsx":
		return LoadXLSX(path, logger)
	default:
		return nil, fmt.Errorf("unsupported vendor directory format: %s", path)
	}
}

// LoadCSV reads a vendor directory from a CSV file. The header row
// names the columns; vendor_name is required, gst_number and
// invoice_number are optional.
func LoadCSV(path string, logger *zap.Logger) (*MemoryDirectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vendor directory: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	cols := columnIndex(header)

	var records []models.VendorRecord
	var invoiceNumbers []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read vendor row: %w", err)
		}
		rec, number := rowToRecord(row, cols)
		if rec != nil {
			records = append(records, *rec)
		}
		if number != "" {
			invoiceNumbers = append(invoiceNumbers, number)
		}
	}

	dir := NewMemoryDirectory(records, invoiceNumbers)
	logger.Info("Loaded vendor directory",
		zap.String("path", path),
		zap.Int("vendors", dir.Len()),
		zap.Int("invoice_numbers", len(invoiceNumbers)))
	return dir, nil
}

// LoadXLSX reads a vendor directory from the first sheet of an XLSX
// workbook. The first row names the columns, as with CSV.
func LoadXLSX(path string, logger *zap.Logger) (*MemoryDirectory, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vendor workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("vendor workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read vendor sheet: %w", err)
	}
	if len(rows) == 0 {
		return NewMemoryDirectory(nil, nil), nil
	}
	cols := columnIndex(rows[0])

	var records []models.VendorRecord
	var invoiceNumbers []string
	for _, row := range rows[1:] {
		rec, number := rowToRecord(row, cols)
		if rec != nil {
			records = append(records, *rec)
		}
		if number != "" {
			invoiceNumbers = append(invoiceNumbers, number)
		}
	}

	dir := NewMemoryDirectory(records, invoiceNumbers)
	logger.Info("Loaded vendor directory",
		zap.String("path", path),
		zap.Int("vendors", dir.Len()),
		zap.Int("invoice_numbers", len(invoiceNumbers)))
	return dir, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func rowToRecord(row []string, cols map[string]int) (*models.VendorRecord, string) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	number := cell("invoice_number")
	name := cell("vendor_name")
	if name == "" {
		return nil, number
	}
	return &models.VendorRecord{
		VendorName: name,
		GSTNumber:  cell("gst_number"),
	}, number
}
