package crawler

import (
	"errors"
	"sync"
	"time"

	"github.com/nao1215/guidecrawl/internal/aggregate"
	"github.com/nao1215/guidecrawl/internal/model"
)

// Rejection is a record dropped because of malformed markup.
type Rejection struct {
	Record string `json:"record"`
	Page   string `json:"page"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Unreachable is a page that could not be fetched after retries.
type Unreachable struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code,omitempty"`
	Reason     string `json:"reason"`
}

// Collision is a name clash resolved by the aggregate store.
type Collision struct {
	Name    string `json:"name"`
	Key     string `json:"key"`
	Website string `json:"website"`
	Outcome string `json:"outcome"`
}

// CrawlStats summarizes one crawl. It is safe for concurrent use.
type CrawlStats struct {
	mu sync.Mutex

	StartedAt   time.Time
	FinishedAt  time.Time
	Pages       int
	Listings    int
	Enriched    int
	Rejected    []Rejection
	Unreachable []Unreachable
	Collisions  []Collision
}

func newCrawlStats() *CrawlStats {
	return &CrawlStats{StartedAt: time.Now()}
}

// Duration returns how long the crawl took.
func (s *CrawlStats) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

func (s *CrawlStats) addPage(listings int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Pages++
	s.Listings += listings
}

func (s *CrawlStats) addEnriched() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Enriched++
}

func (s *CrawlStats) addRejected(err error) {
	var shapeErr *model.ParseShapeError
	if !errors.As(err, &shapeErr) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rejected = append(s.Rejected, Rejection{
		Record: shapeErr.Record,
		Page:   shapeErr.Page,
		Field:  shapeErr.Field,
		Reason: shapeErr.Detail,
	})
}

func (s *CrawlStats) addUnreachable(url string, err error) {
	u := Unreachable{URL: url, Reason: err.Error()}
	var transportErr *model.TransportError
	if errors.As(err, &transportErr) {
		u.StatusCode = transportErr.StatusCode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Unreachable = append(s.Unreachable, u)
}

func (s *CrawlStats) addCollision(name, key string, r model.Restaurant, outcome aggregate.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Collisions = append(s.Collisions, Collision{
		Name:    name,
		Key:     key,
		Website: r.Website,
		Outcome: outcome.String(),
	})
}

func (s *CrawlStats) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FinishedAt = time.Now()
}
