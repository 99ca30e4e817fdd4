package report

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/guidecrawl/internal/crawler"
	"github.com/nao1215/guidecrawl/internal/database"
	"github.com/nao1215/guidecrawl/internal/pipeline"
)

// Source is the part of the restaurant database a report reads.
// *database.RestaurantDB implements it.
type Source interface {
	Counts(ctx context.Context) (database.TableCounts, error)
	CityCounts(ctx context.Context) ([]database.GroupCount, error)
	CuisineCounts(ctx context.Context) ([]database.GroupCount, error)
}

// Status values of a Summary.
const (
	StatusComplete = "complete"
	StatusCanceled = "canceled"
	StatusError    = "error"
)

// CrawlSummary is the crawl section of a Summary.
type CrawlSummary struct {
	Pages       int                   `json:"pages"`
	Listings    int                   `json:"listings"`
	Enriched    int                   `json:"enriched"`
	Restaurants int                   `json:"restaurants"`
	Rejected    []crawler.Rejection   `json:"rejected,omitempty"`
	Unreachable []crawler.Unreachable `json:"unreachable,omitempty"`
	Collisions  []crawler.Collision   `json:"collisions,omitempty"`
}

// Summary is the data every writer renders.
type Summary struct {
	Version     string    `json:"version,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	// Run fields are empty for database-only reports.
	RunID    string        `json:"run_id,omitempty"`
	SeedURL  string        `json:"seed_url,omitempty"`
	Steps    []string      `json:"steps,omitempty"`
	Status   string        `json:"status,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns,omitempty"`

	Crawl *CrawlSummary       `json:"crawl,omitempty"`
	Load  *database.LoadStats `json:"load,omitempty"`

	// Database fields are filled by AddDatabase.
	DatabasePath string                `json:"database_path,omitempty"`
	Counts       *database.TableCounts `json:"counts,omitempty"`
	Cities       []database.GroupCount `json:"cities,omitempty"`
	Cuisines     []database.GroupCount `json:"cuisines,omitempty"`
}

// NewSummary builds a summary of run. A nil run yields an empty summary
// for database-only reports.
func NewSummary(run *pipeline.Run) *Summary {
	s := &Summary{GeneratedAt: time.Now()}
	if run == nil {
		return s
	}

	s.RunID = run.ID
	s.SeedURL = run.BaseURL + run.SeedPath
	s.Steps = run.PerformedSteps
	s.Duration = run.Duration()
	s.Load = run.LoadStats

	switch {
	case run.Canceled:
		s.Status = StatusCanceled
	case run.Error != nil:
		s.Status = StatusError
	default:
		s.Status = StatusComplete
	}
	if run.Error != nil {
		s.Error = run.ErrorMessage
	}

	if st := run.CrawlStats; st != nil {
		s.Crawl = &CrawlSummary{
			Pages:       st.Pages,
			Listings:    st.Listings,
			Enriched:    st.Enriched,
			Restaurants: len(run.Restaurants),
			Rejected:    st.Rejected,
			Unreachable: st.Unreachable,
			Collisions:  st.Collisions,
		}
	}
	return s
}

// AddDatabase fills the database section from src.
func (s *Summary) AddDatabase(ctx context.Context, path string, src Source) error {
	counts, err := src.Counts(ctx)
	if err != nil {
		return fmt.Errorf("count tables: %w", err)
	}
	cities, err := src.CityCounts(ctx)
	if err != nil {
		return fmt.Errorf("count cities: %w", err)
	}
	cuisines, err := src.CuisineCounts(ctx)
	if err != nil {
		return fmt.Errorf("count cuisines: %w", err)
	}

	s.DatabasePath = path
	s.Counts = &counts
	s.Cities = cities
	s.Cuisines = cuisines
	return nil
}

// HasRun reports whether the summary describes a pipeline run.
func (s *Summary) HasRun() bool {
	return s.RunID != ""
}

// Problems returns the number of records or pages that need attention.
func (s *Summary) Problems() int {
	n := 0
	if s.Crawl != nil {
		n += len(s.Crawl.Rejected) + len(s.Crawl.Unreachable)
	}
	if s.Load != nil {
		n += len(s.Load.Duplicates)
	}
	return n
}
