package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mzhao/ai-invoice-audit/internal/dataset"
)

// NewDatasetCmd creates the dataset command group.
func NewDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Build, split, and synthesize invoice datasets",
	}

	cmd.AddCommand(newDatasetBuildCmd())
	cmd.AddCommand(newDatasetSplitCmd())
	cmd.AddCommand(newDatasetSynthCmd())

	return cmd
}

func newDatasetBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Collect invoice images and labeled batches into a JSONL manifest",
		RunE:  runDatasetBuildCmd,
	}

	cmd.Flags().String("images", "", "directory of unlabeled invoice images")
	cmd.Flags().String("batch", "", "labeled batch directory containing CSV files")
	cmd.Flags().StringSlice("image-subdir", []string{"images", "."},
		"subdirectories of the batch directory to search for image files")
	cmd.Flags().String("source", "manual", "source tag recorded on collected rows")
	cmd.Flags().String("out", "dataset.jsonl", "output manifest path")

	return cmd
}

func runDatasetBuildCmd(cmd *cobra.Command, args []string) error {
	imagesDir, _ := cmd.Flags().GetString("images")
	batchDir, _ := cmd.Flags().GetString("batch")
	subdirs, _ := cmd.Flags().GetStringSlice("image-subdir")
	source, _ := cmd.Flags().GetString("source")
	out, _ := cmd.Flags().GetString("out")

	if imagesDir == "" && batchDir == "" {
		return fmt.Errorf("at least one of --images or --batch is required")
	}

	var rows []dataset.Row
	if imagesDir != "" {
		collected, err := dataset.CollectImages(imagesDir, source)
		if err != nil {
			return err
		}
		rows = append(rows, collected...)
	}
	if batchDir != "" {
		labeled, err := dataset.CollectLabeledBatch(batchDir, subdirs, source)
		if err != nil {
			return err
		}
		rows = append(rows, labeled...)
	}

	if err := dataset.WriteJSONL(out, rows); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(rows), out)
	return nil
}

func newDatasetSplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split [manifest]",
		Short: "Split a manifest into train, validation, and test sets",
		Args:  cobra.ExactArgs(1),
		RunE:  runDatasetSplitCmd,
	}

	opts := dataset.DefaultSplitOptions()
	cmd.Flags().Int64("seed", opts.Seed, "shuffle seed")
	cmd.Flags().Float64("train", opts.Train, "train ratio")
	cmd.Flags().Float64("val", opts.Val, "validation ratio")
	cmd.Flags().Float64("test", opts.Test, "test ratio")
	cmd.Flags().Bool("labeled-only", false, "drop unlabeled rows before splitting")
	cmd.Flags().String("out-dir", ".", "directory for the split manifests")

	return cmd
}

func runDatasetSplitCmd(cmd *cobra.Command, args []string) error {
	rows, err := dataset.LoadJSONL(args[0])
	if err != nil {
		return err
	}

	opts := dataset.DefaultSplitOptions()
	opts.Seed, _ = cmd.Flags().GetInt64("seed")
	opts.Train, _ = cmd.Flags().GetFloat64("train")
	opts.Val, _ = cmd.Flags().GetFloat64("val")
	opts.Test, _ = cmd.Flags().GetFloat64("test")
	opts.LabeledOnly, _ = cmd.Flags().GetBool("labeled-only")

	train, val, test, err := dataset.Split(rows, opts)
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	for name, part := range map[string][]dataset.Row{
		"train.jsonl": train,
		"val.jsonl":   val,
		"test.jsonl":  test,
	} {
		if err := dataset.WriteJSONL(filepath.Join(outDir, name), part); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "train=%d val=%d test=%d\n",
		len(train), len(val), len(test))
	return nil
}

func newDatasetSynthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate synthetic invoices for pipeline testing",
		RunE:  runDatasetSynthCmd,
	}

	cmd.Flags().Int("count", 10, "number of invoices to generate")
	cmd.Flags().Uint64("seed", 42, "generator seed")
	cmd.Flags().Float64("fraud-rate", 0.2, "fraction of invoices with an inflated total")
	cmd.Flags().Int("items", 0, "line items per invoice (0 picks a random count)")
	cmd.Flags().String("out", "synthetic.jsonl", "output manifest path")

	return cmd
}

func runDatasetSynthCmd(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	seed, _ := cmd.Flags().GetUint64("seed")
	fraudRate, _ := cmd.Flags().GetFloat64("fraud-rate")
	items, _ := cmd.Flags().GetInt("items")
	out, _ := cmd.Flags().GetString("out")

	if count <= 0 {
		return fmt.Errorf("--count must be positive")
	}

	rows := make([]dataset.Row, 0, count)
	for i := 0; i < count; i++ {
		invoice := dataset.GenerateInvoice(dataset.SynthOptions{
			Seed:       seed + uint64(i),
			Fraudulent: float64(i) < fraudRate*float64(count),
			Items:      items,
		})
		data, err := json.Marshal(invoice)
		if err != nil {
			return fmt.Errorf("failed to encode synthetic invoice: %w", err)
		}
		rows = append(rows, dataset.Row{
			JSONData: data,
			Source:   "synthetic",
			Labeled:  true,
		})
	}

	if err := dataset.WriteJSONL(out, rows); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d synthetic invoices to %s\n", count, out)
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
