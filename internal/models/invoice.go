package models

// LineItem is a single billed line on an invoice. Items have no
// identity beyond their position in the invoice.
type LineItem struct {
	Name      string  `json:"name"`
	Qty       float64 `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
}

// Invoice holds the structured fields extracted from a scanned invoice.
// All amounts are the values claimed by the document; nothing is
// recomputed or corrected at construction. Inconsistency between the
// claimed values is exactly what validation detects.
type Invoice struct {
	InvoiceNumber string     `json:"invoice_number"`
	VendorName    string     `json:"vendor_name"`
	InvoiceDate   string     `json:"invoice_date"` // free-form, parsed lazily
	LineItems     []LineItem `json:"line_items"`
	Subtotal      float64    `json:"subtotal"`
	Tax           float64    `json:"tax"`
	Total         float64    `json:"total"`
}

// VendorRecord is one row of the approved-vendor directory.
type VendorRecord struct {
	VendorName string `json:"vendor_name"`
	GSTNumber  string `json:"gst_number,omitempty"`
}
