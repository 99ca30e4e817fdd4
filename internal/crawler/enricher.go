package crawler

import (
	"context"
	"errors"

	"github.com/nao1215/guidecrawl/internal/model"
)

// Enricher fetches a restaurant's detail page and reads its address.
type Enricher struct {
	fetcher   Fetcher
	extractor *Extractor
}

// NewEnricher returns an Enricher.
func NewEnricher(fetcher Fetcher, extractor *Extractor) *Enricher {
	return &Enricher{fetcher: fetcher, extractor: extractor}
}

// Enrich returns the address found at detailURL. Fetch failures are
// returned as they come from the fetcher; a page without an address yields
// a *model.ParseShapeError.
func (e *Enricher) Enrich(ctx context.Context, detailURL string) (string, error) {
	page, err := e.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		return "", err
	}
	return e.extractor.ExtractAddress(page)
}

// EnrichRecord fills r.Address from its detail page. Shape errors are
// scoped to the record named name.
func (e *Enricher) EnrichRecord(ctx context.Context, name string, r model.Restaurant) (model.Restaurant, error) {
	addr, err := e.Enrich(ctx, r.Website)
	if err != nil {
		var shapeErr *model.ParseShapeError
		if errors.As(err, &shapeErr) && shapeErr.Record == "" {
			scoped := *shapeErr
			scoped.Record = name
			return r, &scoped
		}
		return r, err
	}
	r.Address = addr
	return r, nil
}
