package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/guidecrawl/internal/crawler"
	"github.com/nao1215/guidecrawl/internal/database"
	"github.com/nao1215/guidecrawl/internal/interchange"
	"github.com/nao1215/guidecrawl/internal/model"
)

// ErrNoRecords is returned by SaveStep when the run holds no snapshot.
var ErrNoRecords = errors.New("no restaurants to save")

// Crawler collects restaurants starting from a seed path.
// *crawler.Spider implements it.
type Crawler interface {
	Crawl(ctx context.Context, seedPath string) (map[string]model.Restaurant, *crawler.CrawlStats, error)
}

// CrawlStep walks the directory and stores the snapshot in the run.
type CrawlStep struct {
	crawler Crawler
	logger  *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a crawl step around c.
func NewCrawlStep(c Crawler, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		crawler: c,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl. Partial results are kept in the run on error.
func (s *CrawlStep) Do(ctx context.Context, run *Run) error {
	restaurants, stats, err := s.crawler.Crawl(ctx, run.SeedPath)
	run.Restaurants = restaurants
	run.CrawlStats = stats
	if err != nil {
		return fmt.Errorf("crawl %s: %w", run.SeedPath, err)
	}

	s.logger.Debug("crawl step finished",
		"run", run.ID,
		"restaurants", len(restaurants),
	)
	return nil
}

// SaveStep writes the run's snapshot to the interchange file.
type SaveStep struct{}

// NewSaveStep creates a save step.
func NewSaveStep() *SaveStep {
	return &SaveStep{}
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do writes run.Restaurants to run.JSONPath.
func (s *SaveStep) Do(_ context.Context, run *Run) error {
	if run.Restaurants == nil {
		return ErrNoRecords
	}
	if err := interchange.Write(run.JSONPath, run.Restaurants); err != nil {
		return fmt.Errorf("save %s: %w", run.JSONPath, err)
	}
	return nil
}

// ReadStep replaces the run's snapshot with the interchange file contents.
type ReadStep struct{}

// NewReadStep creates a read step.
func NewReadStep() *ReadStep {
	return &ReadStep{}
}

// Name returns the step name.
func (s *ReadStep) Name() string {
	return "read"
}

// Do reads run.JSONPath into run.Restaurants.
func (s *ReadStep) Do(_ context.Context, run *Run) error {
	records, err := interchange.Read(run.JSONPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", run.JSONPath, err)
	}
	run.Restaurants = records
	return nil
}

// LoadStep rebuilds the relational database from the run's snapshot.
type LoadStep struct {
	options database.Options
	logger  *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// WithDatabaseOptions overrides the options used to open the database.
func WithDatabaseOptions(opts database.Options) LoadStepOption {
	return func(s *LoadStep) {
		s.options = opts
	}
}

// NewLoadStep creates a load step.
func NewLoadStep(opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{
		options: database.DefaultOptions(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do opens run.DBPath, loads run.Restaurants and closes the database.
func (s *LoadStep) Do(ctx context.Context, run *Run) (err error) {
	if run.Restaurants == nil {
		return ErrNoRecords
	}

	db, err := database.Open(run.DBPath, s.options)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close database: %w", cerr)
		}
	}()

	stats, err := db.Load(ctx, run.Restaurants)
	if err != nil {
		return fmt.Errorf("load %s: %w", run.DBPath, err)
	}
	run.LoadStats = stats

	for _, dup := range stats.Duplicates {
		s.logger.Warn("restaurant not loaded",
			"name", dup.Name,
			"column", dup.Column,
			"value", dup.Value,
		)
	}
	return nil
}
