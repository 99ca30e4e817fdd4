package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/guidecrawl/internal/crawler"
	"github.com/nao1215/guidecrawl/internal/database"
	"github.com/nao1215/guidecrawl/internal/model"
)

// Run carries the state of one pipeline execution between steps.
type Run struct {
	// ID identifies the run in logs and reports.
	ID string

	BaseURL  string
	SeedPath string
	JSONPath string
	DBPath   string

	StartedAt  time.Time
	FinishedAt time.Time

	// Restaurants is the current snapshot, keyed by name.
	Restaurants map[string]model.Restaurant

	CrawlStats *crawler.CrawlStats
	LoadStats  *database.LoadStats

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string

	// Canceled is set when the context ended before all steps ran.
	Canceled bool

	Error        error
	ErrorMessage string
}

// NewRun creates a Run with a fresh identifier.
func NewRun(baseURL, seedPath, jsonPath, dbPath string) *Run {
	return &Run{
		ID:       uuid.NewString(),
		BaseURL:  baseURL,
		SeedPath: seedPath,
		JSONPath: jsonPath,
		DBPath:   dbPath,
	}
}

// Duration returns the wall time of the run.
func (r *Run) Duration() time.Duration {
	if r.StartedAt.IsZero() {
		return 0
	}
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
