package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/guidecrawl/internal/pipeline"
)

// NewLoadCmd creates the load command.
func NewLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Rebuild the database from the interchange file",
		Long: `Load reads the JSON interchange file and rebuilds the SQLite database
from it. Existing tables are dropped first, so loading the same file twice
yields the same database.

Restaurants whose URL or address is already taken by another restaurant
are skipped and listed in the report.

Examples:
  guidecrawl load
  guidecrawl load --json-path rest_data.json --db-path restaurants.db`,
		Args: cobra.NoArgs,
		RunE: runLoadCmd,
	}

	addStorageFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

func runLoadCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	return executePipeline(cmd, cfg, logger,
		pipeline.NewReadStep(),
		pipeline.NewLoadStep(pipeline.WithLoadLogger(logger)),
	)
}
