package vendors

import (
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/mzhao/ai-invoice-audit/internal/models"
)

// SQLiteDirectory serves vendor lookups from the vendors and
// vendor_invoices tables. The audit core never writes through it;
// rows are maintained out of band.
type SQLiteDirectory struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteDirectory creates a directory backed by an open database.
func NewSQLiteDirectory(db *sql.DB, logger *zap.Logger) *SQLiteDirectory {
	return &SQLiteDirectory{
		db:     db,
		logger: logger,
	}
}

// FindVendor looks up a vendor by case-insensitive exact name match.
// Query failures are logged and reported as not-found so that a
// degraded directory never aborts an audit.
func (d *SQLiteDirectory) FindVendor(name string) *models.VendorRecord {
	query := `
		SELECT vendor_name, COALESCE(gst_number, '')
		FROM vendors
		WHERE LOWER(vendor_name) = LOWER(?)
		LIMIT 1
	`

	var rec models.VendorRecord
	err := d.db.QueryRow(query, strings.TrimSpace(name)).Scan(&rec.VendorName, &rec.GSTNumber)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		d.logger.Error("Vendor lookup failed", zap.String("vendor", name), zap.Error(err))
		return nil
	}
	return &rec
}

// HasInvoiceNumber reports whether the invoice number is already on
// record, comparing trimmed values.
func (d *SQLiteDirectory) HasInvoiceNumber(number string) bool {
	query := `SELECT 1 FROM vendor_invoices WHERE TRIM(invoice_number) = ? LIMIT 1`

	var one int
	err := d.db.QueryRow(query, strings.TrimSpace(number)).Scan(&one)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		d.logger.Error("Invoice number lookup failed", zap.String("invoice_number", number), zap.Error(err))
		return false
	}
	return true
}
