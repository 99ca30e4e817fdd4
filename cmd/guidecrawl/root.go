package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for guidecrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guidecrawl",
		Short: "Crawl a restaurant guide into a queryable SQLite database",
		Long: `guidecrawl crawls the paginated restaurant listings of an online guide,
visits every restaurant's detail page for its address, and stores the
result as a JSON interchange file and a relational SQLite database.

The database can be inspected with "guidecrawl query", summarized with
"guidecrawl report" or served read-only with "guidecrawl serve".`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .guidecrawl in current or home directory)")
	cmd.PersistentFlags().String("env-file", "",
		"Load GUIDECRAWL_* variables from this file (default: .env if present)")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewLoadCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewQueryCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
