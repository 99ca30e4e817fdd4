package crawler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/nao1215/guidecrawl/internal/model"
)

const testBase = "https://guide.example.com"

// card is one listing card in a fixture page.
type card struct {
	name     string
	href     string
	location string
	price    string
}

func listingPage(cards []card, pagination ...string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Restaurants</title></head><body>`)
	b.WriteString(`<ul class="pagination">`)
	for _, href := range pagination {
		fmt.Fprintf(&b, `<li><a class="btn" href="%s">page</a></li>`, href)
	}
	b.WriteString(`</ul>`)
	b.WriteString(`<section class="section-main search-results search-listing-result"><div class="row">`)
	for _, c := range cards {
		fmt.Fprintf(&b, `<div class="card__menu">
  <h3 class="card__menu-content--title pl-text pl-big">
    <a href="%s">
      %s
    </a>
  </h3>
  <div class="card__menu-footer--location flex-fill pl-text">
    %s
  </div>
  <div class="card__menu-footer--price pl-text">
    %s
  </div>
</div>`, c.href, c.name, c.location, c.price)
	}
	b.WriteString(`</div></section>`)
	// Cards outside the results section must be ignored.
	b.WriteString(`<aside><h3 class="card__menu-content--title pl-text pl-big"><a href="/r/ad">Sponsored</a></h3></aside>`)
	b.WriteString(`</body></html>`)
	return b.String()
}

func detailPage(address string) string {
	return fmt.Sprintf(`<html><body><ul class="restaurant-details__heading">
<li class="restaurant-details__heading--address">
   %s
</li></ul></body></html>`, address)
}

// stubFetcher serves fixture pages from memory.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		pages: make(map[string]string),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *stubFetcher) add(path, body string) *stubFetcher {
	f.pages[testBase+path] = body
	return f
}

func (f *stubFetcher) fail(path string, err error) *stubFetcher {
	f.errs[testBase+path] = err
	return f
}

func (f *stubFetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	f.mu.Lock()
	f.calls[pageURL]++
	body, ok := f.pages[pageURL]
	err := f.errs[pageURL]
	f.mu.Unlock()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, &model.TransportError{URL: pageURL, Err: ctxErr}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &model.TransportError{URL: pageURL, StatusCode: http.StatusNotFound, Err: fmt.Errorf("not found")}
	}
	return &Page{URL: pageURL, StatusCode: http.StatusOK, ContentType: "text/html; charset=utf-8", Body: []byte(body)}, nil
}

func (f *stubFetcher) callCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[testBase+path]
}
