package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/guidecrawl/internal/crawler"
	"github.com/nao1215/guidecrawl/internal/database"
	"github.com/nao1215/guidecrawl/internal/model"
	"github.com/nao1215/guidecrawl/internal/pipeline"
)

// fakeSource serves fixed database counts.
type fakeSource struct {
	err error
}

func (f fakeSource) Counts(context.Context) (database.TableCounts, error) {
	return database.TableCounts{Cities: 2, Costs: 2, Cuisines: 2, Restaurants: 3}, f.err
}

func (f fakeSource) CityCounts(context.Context) ([]database.GroupCount, error) {
	return []database.GroupCount{{Value: "Cupertino", Count: 2}, {Value: "San Jose", Count: 1}}, nil
}

func (f fakeSource) CuisineCounts(context.Context) ([]database.GroupCount, error) {
	return []database.GroupCount{{Value: "Japanese", Count: 1}, {Value: "Thai", Count: 2}}, nil
}

// createTestRun creates a finished run with problems of every kind.
func createTestRun() *pipeline.Run {
	run := pipeline.NewRun("https://guide.example", "/restaurants", "rest_data.json", "restaurants.db")
	run.StartedAt = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	run.FinishedAt = run.StartedAt.Add(1500 * time.Millisecond)
	run.PerformedSteps = []string{"crawl", "save", "load"}
	run.Restaurants = map[string]model.Restaurant{
		"Alpha": {Website: "https://guide.example/alpha"},
		"Bravo": {Website: "https://guide.example/bravo"},
	}
	run.CrawlStats = &crawler.CrawlStats{
		Pages:    2,
		Listings: 3,
		Enriched: 2,
		Rejected: []crawler.Rejection{
			{Record: "Charlie", Page: "https://guide.example/restaurants", Field: "price_cuisine", Reason: "missing separator"},
		},
		Unreachable: []crawler.Unreachable{
			{URL: "https://guide.example/restaurants/page/3", StatusCode: 503, Reason: "service unavailable"},
		},
		Collisions: []crawler.Collision{
			{Name: "Alpha", Key: "Alpha (2)", Website: "https://guide.example/alpha-2", Outcome: "suffixed"},
		},
	}
	run.LoadStats = &database.LoadStats{
		Restaurants: 1,
		Duplicates:  []database.Duplicate{{Name: "Bravo", Column: "address", Value: "1 Main St"}},
	}
	return run
}

func createTestSummary(t *testing.T) *Summary {
	t.Helper()
	s := NewSummary(createTestRun())
	if err := s.AddDatabase(context.Background(), "/data/restaurants.db", fakeSource{}); err != nil {
		t.Fatalf("AddDatabase() error = %v", err)
	}
	return s
}

func TestNewSummary(t *testing.T) {
	t.Parallel()

	t.Run("copies run state", func(t *testing.T) {
		t.Parallel()

		s := NewSummary(createTestRun())

		if s.Status != StatusComplete {
			t.Errorf("Status = %q, want %q", s.Status, StatusComplete)
		}
		if s.SeedURL != "https://guide.example/restaurants" {
			t.Errorf("SeedURL = %q", s.SeedURL)
		}
		if s.Duration != 1500*time.Millisecond {
			t.Errorf("Duration = %v", s.Duration)
		}
		if s.Crawl.Restaurants != 2 || s.Crawl.Listings != 3 {
			t.Errorf("Crawl = %+v", s.Crawl)
		}
		if s.Problems() != 3 {
			t.Errorf("Problems() = %d, want 3", s.Problems())
		}
	})

	t.Run("status reflects errors and cancellation", func(t *testing.T) {
		t.Parallel()

		failed := createTestRun()
		failed.Error = errors.New("boom")
		failed.ErrorMessage = "boom"
		if s := NewSummary(failed); s.Status != StatusError || s.Error != "boom" {
			t.Errorf("failed run: status %q error %q", s.Status, s.Error)
		}

		canceled := createTestRun()
		canceled.Canceled = true
		canceled.Error = context.Canceled
		canceled.ErrorMessage = context.Canceled.Error()
		if s := NewSummary(canceled); s.Status != StatusCanceled {
			t.Errorf("canceled run: status %q", s.Status)
		}
	})

	t.Run("nil run gives database-only summary", func(t *testing.T) {
		t.Parallel()

		s := NewSummary(nil)
		if s.HasRun() || s.Crawl != nil || s.Problems() != 0 {
			t.Errorf("unexpected run data: %+v", s)
		}
	})

	t.Run("AddDatabase propagates errors", func(t *testing.T) {
		t.Parallel()

		s := NewSummary(nil)
		if err := s.AddDatabase(context.Background(), "x.db", fakeSource{err: database.ErrSchemaAbsent}); !errors.Is(err, database.ErrSchemaAbsent) {
			t.Errorf("AddDatabase() error = %v", err)
		}
	})
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes all sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestSummary(t))
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if n != buf.Len() {
			t.Errorf("Write() = %d bytes, buffer has %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"GUIDECRAWL REPORT",
			"Seed:           https://guide.example/restaurants",
			"Status:         Complete",
			"Duration:       1.5s",
			"[rejected] Charlie (price_cuisine): missing separator",
			"[unreachable] https://guide.example/restaurants/page/3 (HTTP 503)",
			`[duplicate] Bravo: address "1 Main St" already loaded`,
			"Restaurant:   3",
			"By city:",
			"Cupertino",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q\n%s", want, out)
			}
		}
		if strings.Contains(out, "[collision]") {
			t.Error("collisions listed without verbose")
		}
	})

	t.Run("verbose lists collisions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestSummary(t)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "[collision] Alpha -> Alpha (2) (suffixed)") {
			t.Errorf("missing collision line:\n%s", buf.String())
		}
	})

	t.Run("showEmpty prints empty problem section", func(t *testing.T) {
		t.Parallel()

		run := createTestRun()
		run.CrawlStats.Rejected = nil
		run.CrawlStats.Unreachable = nil
		run.LoadStats.Duplicates = nil

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(NewSummary(run)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "PROBLEMS") || !strings.Contains(buf.String(), "None") {
			t.Errorf("expected empty problems section:\n%s", buf.String())
		}
	})

	t.Run("shows error in status", func(t *testing.T) {
		t.Parallel()

		run := createTestRun()
		run.Error = errors.New("crawl failed")
		run.ErrorMessage = "crawl failed"

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(NewSummary(run)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "ERROR - crawl failed") {
			t.Errorf("missing error status:\n%s", buf.String())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(createTestSummary(t)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# guidecrawl Report",
		"## Run Summary",
		"## Problems",
		"### Rejected records",
		"### Unreachable pages",
		"### Duplicates",
		"## Database",
		"### Restaurants by city",
		"### Restaurants by cuisine",
		"```mermaid",
		"Cuisine Distribution",
		"✅ Complete",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestSummary(t)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		var got Summary
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Counts == nil || got.Counts.Restaurants != 3 {
			t.Errorf("Counts = %+v", got.Counts)
		}
		if len(got.Load.Duplicates) != 1 {
			t.Errorf("Duplicates = %+v", got.Load.Duplicates)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("compact output should be a single line")
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(NewSummary(nil)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"generated_at\"") {
			t.Errorf("expected indented output:\n%s", buf.String())
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, md bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewMarkdownWriter(&md))

	n, err := mw.Write(createTestSummary(t))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if text.Len() == 0 || md.Len() == 0 {
		t.Error("expected output in both writers")
	}
	if n < text.Len() {
		t.Errorf("total bytes %d smaller than text output %d", n, text.Len())
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
		{"ééééé", 4, "é..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
