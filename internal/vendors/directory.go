// Package vendors provides the approved-vendor directory consulted
// during validation. The directory is loaded once and treated as
// read-only for the lifetime of the process; concurrent audits may
// query it freely.
package vendors

import (
	"strings"

	"github.com/mzhao/ai-invoice-audit/internal/models"
)

// Directory is the lookup surface the audit core depends on. Backing
// stores (CSV, XLSX, SQLite) live behind this interface.
type Directory interface {
	// FindVendor returns the directory record whose name matches the
	// given name case-insensitively, or nil if there is none.
	FindVendor(name string) *models.VendorRecord
	// HasInvoiceNumber reports whether the directory already contains
	// the given invoice number (trimmed exact match).
	HasInvoiceNumber(number string) bool
}

// MemoryDirectory is an in-memory Directory built by the CSV and XLSX
// loaders. It never mutates after construction.
type MemoryDirectory struct {
	records        []models.VendorRecord
	invoiceNumbers map[string]struct{}
}

// NewMemoryDirectory builds a directory from vendor records and known
// invoice numbers.
func NewMemoryDirectory(records []models.VendorRecord, invoiceNumbers []string) *MemoryDirectory {
	numbers := make(map[string]struct{}, len(invoiceNumbers))
	for _, n := range invoiceNumbers {
		n = strings.TrimSpace(n)
		if n != "" {
			numbers[n] = struct{}{}
		}
	}
	return &MemoryDirectory{
		records:        records,
		invoiceNumbers: numbers,
	}
}

// FindVendor returns the first record matching name case-insensitively.
func (d *MemoryDirectory) FindVendor(name string) *models.VendorRecord {
	want := strings.ToLower(strings.TrimSpace(name))
	for i := range d.records {
		if strings.ToLower(d.records[i].VendorName) == want {
			rec := d.records[i]
			return &rec
		}
	}
	return nil
}

// HasInvoiceNumber reports whether the invoice number is already known.
func (d *MemoryDirectory) HasInvoiceNumber(number string) bool {
	_, ok := d.invoiceNumbers[strings.TrimSpace(number)]
	return ok
}

// Len returns the number of vendor records in the directory.
func (d *MemoryDirectory) Len() int {
	return len(d.records)
}
