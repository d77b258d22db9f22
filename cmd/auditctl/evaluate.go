package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mzhao/ai-invoice-audit/internal/dataset"
	"github.com/mzhao/ai-invoice-audit/internal/extract"
)

// NewEvaluateCmd creates the evaluate command.
func NewEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate [manifest]",
		Short: "Score extraction quality against a labeled manifest",
		Long: `Evaluate compares extraction predictions against the labeled rows
of a manifest and reports per-field accuracy and line-item F1.

Predictions come from a JSON file written earlier (--predictions), or
are produced live by running the extractor over every labeled row,
which requires OPENAI_API_KEY.`,
		Args: cobra.ExactArgs(1),
		RunE: runEvaluateCmd,
	}

	cmd.Flags().String("predictions", "", "JSON file of prior extraction predictions")
	cmd.Flags().String("model", "gpt-4o", "vision model used for live extraction")
	cmd.Flags().String("json-out", "", "write the metrics as JSON to this file")

	return cmd
}

func runEvaluateCmd(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	rows, err := dataset.LoadJSONL(args[0])
	if err != nil {
		return err
	}

	var predictions []dataset.Prediction
	if path, _ := cmd.Flags().GetString("predictions"); path != "" {
		predictions, err = loadPredictions(path)
	} else {
		model, _ := cmd.Flags().GetString("model")
		predictions, err = extractPredictions(cmd, rows, model, logger)
	}
	if err != nil {
		return err
	}

	metrics, err := dataset.Evaluate(rows, predictions)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "samples: %d\n", metrics.Samples)
	for _, field := range []string{"invoice_number", "vendor_name", "invoice_date", "subtotal", "tax", "total"} {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %.3f\n", field, metrics.FieldAccuracy[field])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "line_items_f1: %.3f\n", metrics.LineItemF1)

	if jsonOut, _ := cmd.Flags().GetString("json-out"); jsonOut != "" {
		if err := writeJSON(jsonOut, metrics); err != nil {
			return err
		}
	}
	return nil
}

func loadPredictions(path string) ([]dataset.Prediction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read predictions: %w", err)
	}
	var predictions []dataset.Prediction
	if err := json.Unmarshal(data, &predictions); err != nil {
		return nil, fmt.Errorf("failed to parse predictions: %w", err)
	}
	return predictions, nil
}

// extractPredictions runs the extractor over every labeled row that has
// an image on disk. Individual extraction failures are logged and
// skipped so one bad scan does not sink the whole evaluation run.
func extractPredictions(cmd *cobra.Command, rows []dataset.Row, model string, logger *zap.Logger) ([]dataset.Prediction, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for live extraction")
	}
	extractor := extract.NewExtractor(apiKey, model, logger)

	var predictions []dataset.Prediction
	for _, row := range rows {
		if !row.Labeled || row.ImagePath == "" {
			continue
		}
		invoice, err := extractor.Extract(cmd.Context(), row.ImagePath, row.OCRText)
		if err != nil {
			logger.Warn("Extraction failed, skipping row",
				zap.String("image", row.ImagePath),
				zap.Error(err))
			continue
		}
		predictions = append(predictions, dataset.Prediction{
			ImagePath: row.ImagePath,
			Extracted: invoice,
		})
	}
	return predictions, nil
}
