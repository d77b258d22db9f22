package dataset

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/mzhao/ai-invoice-audit/internal/models"
)

const synthTaxRate = 0.10

// SynthOptions configures synthetic invoice generation.
type SynthOptions struct {
	Seed       uint64
	Fraudulent bool // inflate the claimed total so validation flags it
	Items      int  // line item count; 0 picks 2-4
}

// GenerateInvoice produces a synthetic invoice for tests and demos.
// Fraudulent invoices claim a total 15.00 above the consistent value,
// which trips the total mismatch rule.
func GenerateInvoice(opts SynthOptions) models.Invoice {
	faker := gofakeit.New(opts.Seed)

	itemCount := opts.Items
	if itemCount <= 0 {
		itemCount = faker.Number(2, 4)
	}

	items := make([]models.LineItem, 0, itemCount)
	var subtotal float64
	for i := 0; i < itemCount; i++ {
		item := models.LineItem{
			Name:      faker.ProductName(),
			Qty:       float64(faker.Number(1, 5)),
			UnitPrice: faker.Price(5, 500),
		}
		subtotal += item.Qty * item.UnitPrice
		items = append(items, item)
	}

	tax := subtotal * synthTaxRate
	total := subtotal + tax
	if opts.Fraudulent {
		total += 15
	}

	date := faker.DateRange(
		time.Now().AddDate(-2, 0, 0),
		time.Now(),
	).Format("2006-01-02")

	return models.Invoice{
		InvoiceNumber: fmt.Sprintf("INV-%d", faker.Number(1000, 9999)),
		VendorName:    faker.Company(),
		InvoiceDate:   date,
		LineItems:     items,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
	}
}
