package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mzhao/ai-invoice-audit/internal/models"
)

// flexNumber accepts a JSON number or a numeric string ("1,250.00").
// Vision models are inconsistent about quoting amounts.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*n = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
		if raw == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		*n = flexNumber(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = flexNumber(v)
	return nil
}

type lineItemPayload struct {
	Name      string     `json:"name"`
	Qty       flexNumber `json:"qty"`
	UnitPrice flexNumber `json:"unit_price"`
}

type invoicePayload struct {
	InvoiceNumber string            `json:"invoice_number"`
	VendorName    string            `json:"vendor_name"`
	InvoiceDate   string            `json:"invoice_date"`
	LineItems     []lineItemPayload `json:"line_items"`
	Subtotal      flexNumber        `json:"subtotal"`
	Tax           flexNumber        `json:"tax"`
	Total         flexNumber        `json:"total"`
}

func (p invoicePayload) toInvoice() models.Invoice {
	items := make([]models.LineItem, 0, len(p.LineItems))
	for _, item := range p.LineItems {
		items = append(items, models.LineItem{
			Name:      item.Name,
			Qty:       float64(item.Qty),
			UnitPrice: float64(item.UnitPrice),
		})
	}
	return models.Invoice{
		InvoiceNumber: p.InvoiceNumber,
		VendorName:    p.VendorName,
		InvoiceDate:   p.InvoiceDate,
		LineItems:     items,
		Subtotal:      float64(p.Subtotal),
		Tax:           float64(p.Tax),
		Total:         float64(p.Total),
	}
}
