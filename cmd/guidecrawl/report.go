package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/guidecrawl/internal/report"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the restaurant database",
		Long: `Report prints the table totals of the restaurant database together with
the number of restaurants per city and per cuisine.

Examples:
  guidecrawl report
  guidecrawl report --markdown -o reports/restaurants.md
  guidecrawl report --json`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	addStorageFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	db, err := openQueryDB(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer db.Close()

	summary := report.NewSummary(nil)
	if err := summary.AddDatabase(ctx, db.Path(), db); err != nil {
		return err
	}
	return writeSummary(cmd, cfg, summary, false)
}
