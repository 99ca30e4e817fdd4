package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/guidecrawl/internal/pipeline"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-path]",
		Short: "Crawl the guide and write the interchange file",
		Long: `Crawl walks every listing page reachable from the seed path through
pagination links, fetches each restaurant's detail page for its address,
and writes the records to the JSON interchange file.

Examples:
  # Crawl the default seed
  guidecrawl crawl

  # Crawl another city, stopping after five listing pages
  guidecrawl crawl /us/en/california/san-jose/restaurants -p 5

  # Keep going when a page stays unreachable after retries
  guidecrawl crawl --skip-unreachable --retries 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	addCrawlFlags(cmd)
	addStorageFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, args []string) error {
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
	)
}
