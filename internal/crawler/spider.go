package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/guidecrawl/internal/aggregate"
	"github.com/nao1215/guidecrawl/internal/model"
)

// Spider crawls a restaurant directory from a seed listing page.
type Spider struct {
	fetcher         Fetcher
	base            *url.URL
	selectors       Selectors
	policy          aggregate.Policy
	concurrency     int
	maxPages        int
	skipUnreachable bool
	logger          *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithSelectors overrides the page selectors.
func WithSelectors(sel Selectors) SpiderOption {
	return func(s *Spider) {
		s.selectors = sel
	}
}

// WithCollisionPolicy sets how same-named restaurants are stored.
func WithCollisionPolicy(p aggregate.Policy) SpiderOption {
	return func(s *Spider) {
		s.policy = p
	}
}

// WithConcurrency bounds parallel detail-page fetches per listing page.
// Values below 1 are treated as 1.
func WithConcurrency(n int) SpiderOption {
	return func(s *Spider) {
		s.concurrency = max(n, 1)
	}
}

// WithMaxPages stops the crawl after n listing pages. 0 means unbounded.
func WithMaxPages(n int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = n
	}
}

// WithSkipUnreachable records unreachable pages and keeps crawling instead
// of aborting.
func WithSkipUnreachable(skip bool) SpiderOption {
	return func(s *Spider) {
		s.skipUnreachable = skip
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider returns a Spider that fetches through fetcher and resolves
// every path against baseURL.
func NewSpider(fetcher Fetcher, baseURL string, opts ...SpiderOption) (*Spider, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: must be absolute", baseURL)
	}

	s := &Spider{
		fetcher:     fetcher,
		base:        base,
		selectors:   DefaultSelectors(),
		policy:      aggregate.PolicySuffix,
		concurrency: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Crawl walks every listing page reachable from seedPath through
// pagination links and returns the collected restaurants keyed by name.
//
// On error the records collected so far are still returned together with
// the stats.
func (s *Spider) Crawl(ctx context.Context, seedPath string) (map[string]model.Restaurant, *CrawlStats, error) {
	seed, ok := frontierKey(s.base, s.base.Host, seedPath)
	if !ok {
		return nil, nil, fmt.Errorf("invalid seed path %q for %s", seedPath, s.base)
	}

	frontier := NewFrontier(seed)
	store := aggregate.NewStore(s.policy)
	stats := newCrawlStats()
	extractor := NewExtractor(s.selectors)
	enricher := NewEnricher(s.fetcher, extractor)

	err := s.crawl(ctx, frontier, store, stats, extractor, enricher)
	stats.finish()

	s.logger.Info("crawl finished",
		"pages", stats.Pages,
		"restaurants", store.Len(),
		"rejected", len(stats.Rejected),
		"unreachable", len(stats.Unreachable),
		"duration", stats.Duration(),
	)
	return store.Snapshot(), stats, err
}

func (s *Spider) crawl(
	ctx context.Context,
	frontier *Frontier,
	store *aggregate.Store,
	stats *CrawlStats,
	extractor *Extractor,
	enricher *Enricher,
) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.maxPages > 0 && stats.Pages >= s.maxPages {
			s.logger.Info("page limit reached", "max_pages", s.maxPages, "pending", frontier.Pending())
			return nil
		}

		path, ok := frontier.Next()
		if !ok {
			return nil
		}
		ref, err := url.Parse(path)
		if err != nil {
			return fmt.Errorf("invalid frontier path %q: %w", path, err)
		}
		pageURL := s.base.ResolveReference(ref).String()

		s.logger.Debug("crawling listing page", "url", pageURL)
		page, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if s.skipUnreachable && model.IsTransportError(err) {
				s.logger.Warn("skipping unreachable listing page", "url", pageURL, "error", err)
				stats.addUnreachable(pageURL, err)
				continue
			}
			return fmt.Errorf("failed to fetch listing page: %w", err)
		}

		extraction, err := extractor.Extract(page)
		if err != nil {
			return fmt.Errorf("failed to extract listing page: %w", err)
		}
		stats.addPage(len(extraction.Listings))

		from, err := url.Parse(page.URL)
		if err != nil {
			from = s.base.ResolveReference(ref)
		}
		for _, href := range extraction.Pagination {
			if key, ok := frontierKey(from, s.base.Host, href); ok {
				frontier.Push(key)
			}
		}

		if err := s.collect(ctx, extraction.Listings, store, stats, enricher); err != nil {
			return err
		}
	}
}

// enriched is the outcome of one listing on a page.
type enriched struct {
	name   string
	record model.Restaurant
	err    error
}

// collect normalizes and enriches the listings of one page, then stores
// them in page order so that suffix numbering is deterministic.
func (s *Spider) collect(
	ctx context.Context,
	listings []model.RawListing,
	store *aggregate.Store,
	stats *CrawlStats,
	enricher *Enricher,
) error {
	results := make([]enriched, len(listings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, listing := range listings {
		name := listing.Key()
		record, err := listing.Normalize(s.base)
		if err != nil {
			results[i] = enriched{name: name, err: err}
			continue
		}
		g.Go(func() error {
			r, err := enricher.EnrichRecord(gctx, name, record)
			switch {
			case err == nil:
				results[i] = enriched{name: name, record: r}
			case model.IsRecordError(err):
				results[i] = enriched{name: name, err: err}
			case s.skipUnreachable && model.IsTransportError(err) && gctx.Err() == nil:
				stats.addUnreachable(record.Website, err)
				s.logger.Warn("detail page unreachable, keeping record without address",
					"restaurant", name, "url", record.Website, "error", err)
				results[i] = enriched{name: name, record: r}
			default:
				return fmt.Errorf("failed to enrich %q: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return ctxErr
		}
		return err
	}

	for _, res := range results {
		if res.err != nil {
			s.logger.Warn("rejecting record", "restaurant", res.name, "error", res.err)
			stats.addRejected(res.err)
			continue
		}
		if res.record.Enriched() {
			stats.addEnriched()
		}
		key, outcome := store.Put(res.name, res.record)
		switch outcome {
		case aggregate.OutcomeSuffixed, aggregate.OutcomeOverwritten, aggregate.OutcomeRejected:
			s.logger.Warn("restaurant name collision",
				"restaurant", res.name, "key", key, "outcome", outcome.String())
			stats.addCollision(res.name, key, res.record, outcome)
		}
	}
	return nil
}
