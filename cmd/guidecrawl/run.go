package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/guidecrawl/internal/pipeline"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [seed-path]",
		Short: "Crawl, save and load in one go",
		Long: `Run crawls the guide, writes the interchange file and rebuilds the
database from the crawled records.

Examples:
  guidecrawl run
  guidecrawl run /us/en/california/cupertino/restaurants --markdown -o report.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRunCmd,
	}

	addCrawlFlags(cmd)
	addStorageFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	spider, err := newSpider(cfg, logger)
	if err != nil {
		return err
	}

	return executePipeline(cmd, cfg, logger,
		pipeline.NewCrawlStep(spider, pipeline.WithCrawlLogger(logger)),
		pipeline.NewSaveStep(),
		pipeline.NewLoadStep(pipeline.WithLoadLogger(logger)),
	)
}
