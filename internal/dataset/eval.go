package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mzhao/ai-invoice-audit/internal/models"
)

// amountTolerance matches the validator's monetary tolerance.
const amountTolerance = 0.01

// Prediction is one extraction result being evaluated, keyed by the
// image it was extracted from.
type Prediction struct {
	ImagePath string         `json:"image_path"`
	Extracted models.Invoice `json:"extracted_json"`
}

// Metrics holds per-field accuracy and line-item F1 over the evaluated
// sample.
type Metrics struct {
	Samples       int                `json:"samples"`
	FieldAccuracy map[string]float64 `json:"field_accuracy"`
	LineItemF1    float64            `json:"line_items_f1"`
}

// evaluated string fields use normalized comparison; amount fields use
// the monetary tolerance.
var evalFields = []string{"invoice_number", "vendor_name", "invoice_date", "subtotal", "tax", "total"}

// labeledInvoice is the labeling tool's ground-truth schema, which
// nests differently from the extraction target schema.
type labeledInvoice struct {
	Invoice struct {
		InvoiceNumber string `json:"invoice_number"`
		SellerName    string `json:"seller_name"`
		InvoiceDate   string `json:"invoice_date"`
	} `json:"invoice"`
	Items []struct {
		Description string      `json:"description"`
		Quantity    interface{} `json:"quantity"`
		TotalPrice  interface{} `json:"total_price"`
	} `json:"items"`
	Subtotal struct {
		Total interface{} `json:"total"`
		Tax   interface{} `json:"tax"`
	} `json:"subtotal"`
}

// Evaluate scores predictions against the labeled rows of a manifest.
// Rows without a matching prediction are skipped; zero matches is a
// caller-facing error.
func Evaluate(gtRows []Row, predictions []Prediction) (*Metrics, error) {
	predMap := make(map[string]models.Invoice, len(predictions))
	for _, p := range predictions {
		predMap[p.ImagePath] = p.Extracted
	}

	totals := make(map[string]float64, len(evalFields))
	var f1Total float64
	count := 0

	for _, row := range gtRows {
		if !row.Labeled {
			continue
		}
		pred, ok := predMap[row.ImagePath]
		if !ok {
			continue
		}

		gt, err := groundTruthInvoice(row.JSONData)
		if err != nil {
			return nil, fmt.Errorf("bad ground truth for %s: %w", row.ImagePath, err)
		}

		totals["invoice_number"] += stringAccuracy(gt.InvoiceNumber, pred.InvoiceNumber)
		totals["vendor_name"] += stringAccuracy(gt.VendorName, pred.VendorName)
		totals["invoice_date"] += stringAccuracy(gt.InvoiceDate, pred.InvoiceDate)
		totals["subtotal"] += amountAccuracy(gt.Subtotal, pred.Subtotal)
		totals["tax"] += amountAccuracy(gt.Tax, pred.Tax)
		totals["total"] += amountAccuracy(gt.Total, pred.Total)
		f1Total += ItemF1(gt.LineItems, pred.LineItems)
		count++
	}

	if count == 0 {
		return nil, fmt.Errorf("no matching labeled rows found for evaluation")
	}

	accuracy := make(map[string]float64, len(evalFields))
	for _, field := range evalFields {
		accuracy[field] = totals[field] / float64(count)
	}
	return &Metrics{
		Samples:       count,
		FieldAccuracy: accuracy,
		LineItemF1:    f1Total / float64(count),
	}, nil
}

// groundTruthInvoice converts the labeling schema to the extraction
// target schema. Unit prices are derived from item totals when the
// quantity is known.
func groundTruthInvoice(data json.RawMessage) (models.Invoice, error) {
	var labeled labeledInvoice
	if err := json.Unmarshal(data, &labeled); err != nil {
		return models.Invoice{}, err
	}

	items := make([]models.LineItem, 0, len(labeled.Items))
	for _, item := range labeled.Items {
		qty := parseAmount(item.Quantity)
		totalPrice := parseAmount(item.TotalPrice)
		var unitPrice float64
		if qty != 0 {
			unitPrice = totalPrice / qty
		}
		items = append(items, models.LineItem{
			Name:      item.Description,
			Qty:       qty,
			UnitPrice: unitPrice,
		})
	}

	return models.Invoice{
		InvoiceNumber: labeled.Invoice.InvoiceNumber,
		VendorName:    labeled.Invoice.SellerName,
		InvoiceDate:   labeled.Invoice.InvoiceDate,
		LineItems:     items,
		Subtotal:      parseAmount(labeled.Subtotal.Total),
		Tax:           parseAmount(labeled.Subtotal.Tax),
		Total:         parseAmount(labeled.Subtotal.Total),
	}, nil
}

// ItemF1 computes name-set F1 between ground-truth and predicted line
// items. Both empty scores 1; one empty scores 0.
func ItemF1(gtItems, predItems []models.LineItem) float64 {
	if len(gtItems) == 0 && len(predItems) == 0 {
		return 1.0
	}
	if len(gtItems) == 0 || len(predItems) == 0 {
		return 0.0
	}

	gtSet := nameSet(gtItems)
	predSet := nameSet(predItems)

	tp := 0
	for name := range predSet {
		if _, ok := gtSet[name]; ok {
			tp++
		}
	}
	if tp == 0 {
		return 0.0
	}
	fp := len(predSet) - tp
	fn := len(gtSet) - tp

	precision := float64(tp) / float64(tp+fp)
	recall := float64(tp) / float64(tp+fn)
	if precision+recall == 0 {
		return 0.0
	}
	return 2 * precision * recall / (precision + recall)
}

func nameSet(items []models.LineItem) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[normalizeText(item.Name)] = struct{}{}
	}
	return set
}

func stringAccuracy(gt, pred string) float64 {
	if normalizeText(gt) == normalizeText(pred) {
		return 1.0
	}
	return 0.0
}

func amountAccuracy(gt, pred float64) float64 {
	if math.Abs(gt-pred) <= amountTolerance {
		return 1.0
	}
	return 0.0
}

func normalizeText(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// parseAmount coerces labeled numeric values, which may arrive as
// numbers or formatted strings ("1,250.00").
func parseAmount(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		if cleaned == "" {
			return 0
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
