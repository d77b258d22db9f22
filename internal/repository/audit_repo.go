// Package repository persists audit results. Persistence is a
// convenience layer on top of the audit core; the core itself never
// depends on it.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mzhao/ai-invoice-audit/internal/models"
)

// AuditRecord is one stored audit run.
type AuditRecord struct {
	ID            int64               `json:"id"`
	InvoiceNumber string              `json:"invoice_number"`
	VendorName    string              `json:"vendor_name"`
	InvoiceDate   string              `json:"invoice_date,omitempty"`
	RiskScore     int                 `json:"risk_score"`
	RiskLevel     string              `json:"risk_level"`
	Report        *models.AuditReport `json:"report,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// AuditRepository handles audit database operations
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a finished audit report and returns its row id.
func (r *AuditRepository) Create(ctx context.Context, report *models.AuditReport) (int64, error) {
	flagsJSON, err := json.Marshal(report.Flags)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal flags: %w", err)
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO audits (
			invoice_number, vendor_name, invoice_date, risk_score, risk_level, flags, report
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		report.Invoice.InvoiceNumber,
		report.Invoice.VendorName,
		report.Invoice.InvoiceDate,
		report.Risk.RiskScore,
		report.Risk.RiskLevel,
		string(flagsJSON),
		string(reportJSON),
	)
	if err != nil {
		r.logger.Error("Failed to store audit", zap.Error(err))
		return 0, fmt.Errorf("failed to store audit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	r.logger.Info("Stored audit",
		zap.Int64("audit_id", id),
		zap.String("invoice_number", report.Invoice.InvoiceNumber),
		zap.Int("risk_score", report.Risk.RiskScore))
	return id, nil
}

// GetByID loads one stored audit, including the full report payload.
func (r *AuditRepository) GetByID(ctx context.Context, id int64) (*AuditRecord, error) {
	query := `
		SELECT id, invoice_number, vendor_name, COALESCE(invoice_date, ''),
		       risk_score, risk_level, report, created_at
		FROM audits
		WHERE id = ?
	`

	var rec AuditRecord
	var reportJSON string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.InvoiceNumber,
		&rec.VendorName,
		&rec.InvoiceDate,
		&rec.RiskScore,
		&rec.RiskLevel,
		&reportJSON,
		&rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("audit %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load audit %d: %w", id, err)
	}

	var report models.AuditReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored report %d: %w", id, err)
	}
	rec.Report = &report
	return &rec, nil
}

// List returns stored audits, newest first, without report payloads.
func (r *AuditRepository) List(ctx context.Context, limit, offset int) ([]*AuditRecord, error) {
	query := `
		SELECT id, invoice_number, vendor_name, COALESCE(invoice_date, ''),
		       risk_score, risk_level, created_at
		FROM audits
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	defer rows.Close()

	var records []*AuditRecord
	for rows.Next() {
		var rec AuditRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.InvoiceNumber,
			&rec.VendorName,
			&rec.InvoiceDate,
			&rec.RiskScore,
			&rec.RiskLevel,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// CountByInvoiceNumber reports how many stored audits exist for an
// invoice number. Used to surface repeat submissions in the UI.
func (r *AuditRepository) CountByInvoiceNumber(ctx context.Context, invoiceNumber string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM audits WHERE invoice_number = ?", invoiceNumber,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count audits: %w", err)
	}
	return count, nil
}
