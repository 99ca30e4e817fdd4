package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func() string
	}{
		{"getVersion", getVersion},
		{"getCommit", getCommit},
		{"getDate", getDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.fn() == "" {
				t.Errorf("%s() returned empty string", tt.name)
			}
		})
	}
}

func TestBuildSetting(t *testing.T) {
	t.Parallel()

	if got := buildSetting("no.such.setting"); got != "unknown" {
		t.Errorf("buildSetting() = %q, want unknown", got)
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"guidecrawl version", "commit:", "built:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got %q", want, output)
		}
	}
}
