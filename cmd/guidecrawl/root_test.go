package main

import (
	"testing"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "guidecrawl" {
			t.Errorf("expected use 'guidecrawl', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has global flags", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name      string
			shorthand string
			defValue  string
		}{
			{"verbose", "v", "false"},
			{"config", "c", ""},
			{"env-file", "", ""},
		}
		for _, tt := range tests {
			flag := cmd.PersistentFlags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("%s: expected shorthand %q, got %q", tt.name, tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("%s: expected default %q, got %q", tt.name, tt.defValue, flag.DefValue)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()

		want := []string{"crawl", "load", "run", "query", "report", "serve", "init", "version"}
		for _, name := range want {
			sub, _, err := cmd.Find([]string{name})
			if err != nil || sub == cmd {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})

	t.Run("query has lookups", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"cities", "cuisines", "city", "cuisine", "show"} {
			sub, _, err := cmd.Find([]string{"query", name})
			if err != nil || sub.Name() != name {
				t.Errorf("expected query %s subcommand", name)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage {
			t.Error("expected SilenceUsage to be true")
		}
		if !cmd.SilenceErrors {
			t.Error("expected SilenceErrors to be true")
		}
	})
}
