package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/guidecrawl/internal/aggregate"
	"github.com/nao1215/guidecrawl/internal/config"
	"github.com/nao1215/guidecrawl/internal/crawler"
	"github.com/nao1215/guidecrawl/internal/database"
	"github.com/nao1215/guidecrawl/internal/log"
	"github.com/nao1215/guidecrawl/internal/pipeline"
	"github.com/nao1215/guidecrawl/internal/report"
)

// setupLogger returns the logger for a command. Log output goes to the
// command's error stream so reports on stdout stay clean.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	return log.NewLogger(cmd.ErrOrStderr(), verbose)
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// newSpider builds the crawler for cfg: a colly fetcher carrying the site's
// headers and cookie, wrapped in retry with exponential backoff.
func newSpider(cfg *config.Config, logger *slog.Logger) (*crawler.Spider, error) {
	site := cfg.Site()

	fetcher := crawler.NewCollyFetcher(
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithHeaders(siteHeaders(site)),
		crawler.WithCookie(site.Cookie),
		crawler.WithFetcherLogger(logger),
	)
	retrying := crawler.NewRetryingFetcher(fetcher, crawler.RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.RetryBaseDelay,
		MaxDelay:   cfg.RetryMaxDelay,
	}, crawler.WithRetryLogger(logger))

	policy, err := aggregate.ParsePolicy(cfg.CollisionPolicy)
	if err != nil {
		return nil, err
	}

	return crawler.NewSpider(retrying, cfg.BaseURL,
		crawler.WithSelectors(crawler.DefaultSelectors().Merge(crawler.Selectors(site.Selectors))),
		crawler.WithCollisionPolicy(policy),
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithSkipUnreachable(cfg.SkipUnreachable),
		crawler.WithLogger(logger),
	)
}

// executePipeline runs steps for cfg and prints the run report. The
// pipeline error is returned after the report is written so partial
// results are always shown.
func executePipeline(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, steps ...pipeline.Step) error {
	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	run := pipeline.NewRun(cfg.BaseURL, cfg.SeedPath, cfg.InterchangePath(), cfg.DatabasePath())
	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(steps...)

	logger.Info("starting run",
		"run", run.ID,
		"steps", p.StepNames(),
		"json", run.JSONPath,
		"db", run.DBPath,
	)

	runErr := p.Execute(ctx, run)

	summary := report.NewSummary(run)
	if run.LoadStats != nil {
		if err := addDatabase(ctx, summary, run.DBPath); err != nil {
			logger.Warn("failed to read database totals", "error", err)
		}
	}
	if err := writeSummary(cmd, cfg, summary, true); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// addDatabase opens path read-only and adds its totals to summary.
func addDatabase(ctx context.Context, summary *report.Summary, path string) error {
	db, err := database.Open(path, database.QueryOptions())
	if err != nil {
		return err
	}
	defer db.Close()
	return summary.AddDatabase(ctx, path, db)
}

// writeSummary writes summary to the configured report file, or stdout.
// With echo set, a file report is accompanied by the text summary on stdout.
func writeSummary(cmd *cobra.Command, cfg *config.Config, summary *report.Summary, echo bool) (err error) {
	var w report.Writer
	if cfg.ReportFile == "" {
		w = newReportWriter(cfg, cmd.OutOrStdout())
	} else {
		f, ferr := createReportFile(cfg.ReportFile)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		w = newReportWriter(cfg, f)
		if echo {
			w = report.NewMultiWriter(w, report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(cfg.Verbose)))
		}
	}

	if _, err := w.Write(summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if cfg.ReportFile != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", cfg.ReportFile)
	}
	return nil
}

func newReportWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
}

func createReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	// Reports list local paths and crawled URLs; owner-only.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, nil
}

// openQueryDB opens the database read-only. A missing database or schema
// is returned as database.ErrSchemaAbsent.
func openQueryDB(path string) (*database.RestaurantDB, error) {
	db, err := database.Open(path, database.QueryOptions())
	if err != nil {
		if errors.Is(err, database.ErrSchemaAbsent) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
