package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/guidecrawl/internal/config"
)

// addStorageFlags registers the flags that locate the interchange file and
// the database.
func addStorageFlags(cmd *cobra.Command) {
	cmd.Flags().String("data-dir", config.XDGDataDir(),
		"Directory holding the interchange file and the database")
	cmd.Flags().String("json-path", "",
		"Interchange file path (default: <data-dir>/"+config.DefaultJSONFile+")")
	cmd.Flags().String("db-path", "",
		"Database file path (default: <data-dir>/"+config.DefaultDBFile+")")
}

// addCrawlFlags registers the flags that shape a crawl.
func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Directory origin every path is resolved against")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Int("retries", config.DefaultMaxRetries,
		"Retries for a failed page fetch (0 disables retry)")
	cmd.Flags().Duration("retry-delay", config.DefaultRetryBaseDelay,
		"First retry backoff; later delays double")
	cmd.Flags().Duration("retry-max-delay", config.DefaultRetryMaxDelay,
		"Upper bound of a single retry backoff")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Detail pages fetched in parallel per listing page")
	cmd.Flags().IntP("max-pages", "p", 0,
		"Stop after this many listing pages (0 is unbounded)")
	cmd.Flags().Bool("skip-unreachable", false,
		"Record pages that keep failing and continue instead of aborting")
	cmd.Flags().String("collision-policy", config.DefaultCollisionPolicy,
		"Two restaurants with the same name: overwrite, reject or suffix")
}

// addReportFlags registers the report output flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// buildConfig assembles the configuration for cmd. Sources are applied in
// order: defaults, configuration file, environment, then flags the user set
// explicitly. A positional argument overrides the seed path.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = lookupString(cmd, "config")
	if err != nil {
		return nil, err
	}

	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cfg.Apply(file); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
	case explicitConfigPath:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	envFile, err := lookupString(cmd, "env-file")
	if err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(nil)

	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.SeedPath = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// applyFlags copies every flag the user changed onto cfg. Flags a command
// does not define are skipped.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	strs := map[string]*string{
		"base-url":         &cfg.BaseURL,
		"data-dir":         &cfg.DataDir,
		"json-path":        &cfg.JSONPath,
		"db-path":          &cfg.DBPath,
		"user-agent":       &cfg.UserAgent,
		"collision-policy": &cfg.CollisionPolicy,
		"output":           &cfg.ReportFile,
	}
	durations := map[string]*time.Duration{
		"timeout":         &cfg.Timeout,
		"retry-delay":     &cfg.RetryBaseDelay,
		"retry-max-delay": &cfg.RetryMaxDelay,
	}
	ints := map[string]*int{
		"retries":     &cfg.MaxRetries,
		"concurrency": &cfg.Concurrency,
		"max-pages":   &cfg.MaxPages,
	}
	bools := map[string]*bool{
		"skip-unreachable": &cfg.SkipUnreachable,
		"markdown":         &cfg.MarkdownReport,
		"json":             &cfg.JSONReport,
	}

	var errs []error
	for name, dst := range strs {
		if changed(fs, name) {
			v, err := fs.GetString(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	for name, dst := range durations {
		if changed(fs, name) {
			v, err := fs.GetDuration(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	for name, dst := range ints {
		if changed(fs, name) {
			v, err := fs.GetInt(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	for name, dst := range bools {
		if changed(fs, name) {
			v, err := fs.GetBool(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	return errors.Join(errs...)
}

func changed(fs *pflag.FlagSet, name string) bool {
	return fs.Lookup(name) != nil && fs.Changed(name)
}

// lookupString reads a flag that may be defined on cmd or inherited from
// the root command. An undefined flag reads as "".
func lookupString(cmd *cobra.Command, name string) (string, error) {
	if cmd.Flags().Lookup(name) != nil {
		return cmd.Flags().GetString(name)
	}
	if cmd.Root().PersistentFlags().Lookup(name) != nil {
		return cmd.Root().PersistentFlags().GetString(name)
	}
	return "", nil
}

func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// siteHeaders converts configured headers to an http.Header.
func siteHeaders(site config.SiteConfig) http.Header {
	h := make(http.Header, len(site.Headers))
	for k, v := range site.Headers {
		h.Set(k, v)
	}
	return h
}
