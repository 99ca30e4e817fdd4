package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/guidecrawl/internal/config"
)

// newFlagCmd returns a command carrying every run flag plus --config.
func newFlagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().String("env-file", "", "")
	addCrawlFlags(cmd)
	addStorageFlags(cmd)
	addReportFlags(cmd)

	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	return cmd
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guidecrawl.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("unset flags keep defaults", func(t *testing.T) {
		t.Parallel()

		dataDir := t.TempDir()
		cfg, err := buildConfig(newFlagCmd(t, "--data-dir", dataDir), nil)
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if cfg.BaseURL != config.DefaultBaseURL || cfg.SeedPath != config.DefaultSeedPath {
			t.Errorf("expected default seed, got %s%s", cfg.BaseURL, cfg.SeedPath)
		}
		if cfg.DatabasePath() != filepath.Join(dataDir, config.DefaultDBFile) {
			t.Errorf("DatabasePath() = %q", cfg.DatabasePath())
		}
	})

	t.Run("flags override config file", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, `settings:
  baseURL: "https://file.example"
  seedPath: "/from/file"
  concurrency: 2
  timeout: "5s"
  maxRetries: 0
sites:
  file.example:
    cookie: "session=abc"
    selectors:
      address: "p.addr"
`)
		cmd := newFlagCmd(t,
			"--config", path,
			"--concurrency", "8",
			"--max-pages", "3",
			"--skip-unreachable",
			"--data-dir", t.TempDir(),
		)
		cfg, err := buildConfig(cmd, []string{"/from/args"})
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}

		if cfg.BaseURL != "https://file.example" {
			t.Errorf("BaseURL = %q, want value from file", cfg.BaseURL)
		}
		if cfg.SeedPath != "/from/args" {
			t.Errorf("SeedPath = %q, want positional argument", cfg.SeedPath)
		}
		if cfg.Concurrency != 8 || cfg.MaxPages != 3 || !cfg.SkipUnreachable {
			t.Errorf("flags not applied: %+v", cfg)
		}
		if cfg.Timeout != 5*time.Second || cfg.MaxRetries != 0 {
			t.Errorf("file settings not applied: timeout %v retries %d", cfg.Timeout, cfg.MaxRetries)
		}
		site := cfg.Site()
		if site.Cookie != "session=abc" || site.Selectors.Address != "p.addr" {
			t.Errorf("Site() = %+v", site)
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := newFlagCmd(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
		if _, err := buildConfig(cmd, nil); !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("buildConfig() error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid values fail validation", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			args []string
			want error
		}{
			{"collision policy", []string{"--collision-policy", "merge"}, config.ErrInvalidCollisionPolicy},
			{"concurrency", []string{"--concurrency", "0"}, config.ErrInvalidConcurrency},
			{"base url", []string{"--base-url", "ftp://guide.example"}, config.ErrInvalidBaseURL},
			{"report formats", []string{"--json", "--markdown"}, config.ErrConflictingReportFormats},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				args := append([]string{"--data-dir", t.TempDir()}, tt.args...)
				if _, err := buildConfig(newFlagCmd(t, args...), nil); !errors.Is(err, tt.want) {
					t.Errorf("buildConfig() error = %v, want %v", err, tt.want)
				}
			})
		}
	})
}

func TestBuildConfig_EnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(envPath, []byte("GUIDECRAWL_SEED_PATH=/from/env\nGUIDECRAWL_COLLISION_POLICY=reject\n"), 0600); err != nil {
		t.Fatal(err)
	}
	// godotenv sets the variables on the process; remove them afterwards.
	t.Cleanup(func() {
		_ = os.Unsetenv("GUIDECRAWL_SEED_PATH")
		_ = os.Unsetenv("GUIDECRAWL_COLLISION_POLICY")
	})

	cmd := newFlagCmd(t, "--env-file", envPath, "--collision-policy", "overwrite", "--data-dir", t.TempDir())
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		t.Fatalf("buildConfig() error = %v", err)
	}
	if cfg.SeedPath != "/from/env" {
		t.Errorf("SeedPath = %q, want value from env file", cfg.SeedPath)
	}
	if cfg.CollisionPolicy != "overwrite" {
		t.Errorf("CollisionPolicy = %q, flag should win over environment", cfg.CollisionPolicy)
	}
}

func TestNewSpider(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.BaseURL = "https://guide.example"
	if _, err := newSpider(cfg, discardLogger()); err != nil {
		t.Fatalf("newSpider() error = %v", err)
	}

	cfg.CollisionPolicy = "merge"
	if _, err := newSpider(cfg, discardLogger()); err == nil {
		t.Error("expected error for unknown collision policy")
	}
}
