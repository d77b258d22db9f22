package dataset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzhao/ai-invoice-audit/internal/models"
)

const labeledJSON = `{
	"invoice": {
		"invoice_number": "INV-001",
		"seller_name": "Acme Corp",
		"invoice_date": "2024-03-10"
	},
	"items": [
		{"description": "Widget", "quantity": 2, "total_price": 100},
		{"description": "Gadget", "quantity": "1", "total_price": "50.00"}
	],
	"subtotal": {"total": "150.00", "tax": 15}
}`

func labeledRow(imagePath string) Row {
	return Row{
		ImagePath: imagePath,
		JSONData:  json.RawMessage(labeledJSON),
		Labeled:   true,
	}
}

func perfectPrediction(imagePath string) Prediction {
	return Prediction{
		ImagePath: imagePath,
		Extracted: models.Invoice{
			InvoiceNumber: "INV-001",
			VendorName:    "acme corp", // comparison is normalized
			InvoiceDate:   "2024-03-10",
			LineItems: []models.LineItem{
				{Name: "Widget", Qty: 2, UnitPrice: 50},
				{Name: "Gadget", Qty: 1, UnitPrice: 50},
			},
			Subtotal: 150,
			Tax:      15,
			Total:    150,
		},
	}
}

func TestEvaluate_PerfectPrediction(t *testing.T) {
	rows := []Row{labeledRow("a.jpg")}
	metrics, err := Evaluate(rows, []Prediction{perfectPrediction("a.jpg")})
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.Samples)
	for field, acc := range metrics.FieldAccuracy {
		assert.Equal(t, 1.0, acc, field)
	}
	assert.Equal(t, 1.0, metrics.LineItemF1)
}

func TestEvaluate_PartialErrors(t *testing.T) {
	pred := perfectPrediction("a.jpg")
	pred.Extracted.InvoiceNumber = "INV-999"
	pred.Extracted.Subtotal = 140 // outside tolerance

	metrics, err := Evaluate([]Row{labeledRow("a.jpg")}, []Prediction{pred})
	require.NoError(t, err)

	assert.Equal(t, 0.0, metrics.FieldAccuracy["invoice_number"])
	assert.Equal(t, 0.0, metrics.FieldAccuracy["subtotal"])
	assert.Equal(t, 1.0, metrics.FieldAccuracy["vendor_name"])
	assert.Equal(t, 1.0, metrics.FieldAccuracy["tax"])
}

func TestEvaluate_SkipsUnmatchedRows(t *testing.T) {
	rows := []Row{
		labeledRow("a.jpg"),
		labeledRow("b.jpg"), // no prediction
		{ImagePath: "c.jpg", Labeled: false},
	}

	metrics, err := Evaluate(rows, []Prediction{perfectPrediction("a.jpg")})
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.Samples)
}

func TestEvaluate_NoMatchesIsError(t *testing.T) {
	_, err := Evaluate([]Row{labeledRow("a.jpg")}, []Prediction{perfectPrediction("z.jpg")})
	assert.Error(t, err)

	_, err = Evaluate(nil, nil)
	assert.Error(t, err)
}

func TestItemF1(t *testing.T) {
	widget := models.LineItem{Name: "Widget"}
	gadget := models.LineItem{Name: "Gadget"}
	sprocket := models.LineItem{Name: "Sprocket"}

	t.Run("both empty", func(t *testing.T) {
		assert.Equal(t, 1.0, ItemF1(nil, nil))
	})

	t.Run("one empty", func(t *testing.T) {
		assert.Equal(t, 0.0, ItemF1([]models.LineItem{widget}, nil))
		assert.Equal(t, 0.0, ItemF1(nil, []models.LineItem{widget}))
	})

	t.Run("exact match", func(t *testing.T) {
		gt := []models.LineItem{widget, gadget}
		assert.Equal(t, 1.0, ItemF1(gt, gt))
	})

	t.Run("case-insensitive names", func(t *testing.T) {
		gt := []models.LineItem{{Name: "Widget"}}
		pred := []models.LineItem{{Name: "  widget "}}
		assert.Equal(t, 1.0, ItemF1(gt, pred))
	})

	t.Run("partial overlap", func(t *testing.T) {
		gt := []models.LineItem{widget, gadget}
		pred := []models.LineItem{widget, sprocket}
		// precision 0.5, recall 0.5, F1 0.5
		assert.InDelta(t, 0.5, ItemF1(gt, pred), 1e-9)
	})

	t.Run("no overlap", func(t *testing.T) {
		assert.Equal(t, 0.0, ItemF1([]models.LineItem{widget}, []models.LineItem{sprocket}))
	})
}

func TestEvaluate_BadGroundTruth(t *testing.T) {
	rows := []Row{{
		ImagePath: "a.jpg",
		JSONData:  json.RawMessage(`{"invoice":`),
		Labeled:   true,
	}}

	_, err := Evaluate(rows, []Prediction{perfectPrediction("a.jpg")})
	assert.Error(t, err)
}
