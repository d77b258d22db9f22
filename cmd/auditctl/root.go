package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/mzhao/ai-invoice-audit/pkg/utils"
)

// NewRootCmd creates the root command for auditctl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auditctl",
		Short: "Audit scanned invoices for inconsistency and fraud risk",
		Long: `auditctl audits scanned invoices against arithmetic rules, an
optional vendor directory, and an optional contract policy, producing
a deterministic risk score and compliance answers.

It also manages the extraction datasets used to measure how well the
vision model reads invoices.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")

	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewDatasetCmd())
	cmd.AddCommand(NewEvaluateCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	_ = gotenv.Load()
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds a console logger honoring the --verbose flag.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := "warn"
	if verbose {
		level = "debug"
	}
	return utils.NewLogger(utils.LoggerConfig{
		Level:      level,
		OutputPath: "stderr",
		Format:     "console",
	})
}
