package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gocolly/colly/v2"

	"github.com/nao1215/guidecrawl/internal/model"
)

// Page is a fetched HTML page.
type Page struct {
	// URL is the absolute URL that was requested.
	URL string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// ContentType describes Body. When it names a charset, Body is in
	// that charset.
	ContentType string

	// Body is the response body.
	Body []byte
}

// Fetcher retrieves a single page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// CollyFetcher implements Fetcher with a gocolly collector.
// Every call clones the base collector so concurrent fetches do not share
// callbacks. Clones share the base's HTTP client, so client settings are
// applied once in NewCollyFetcher and never per fetch.
type CollyFetcher struct {
	userAgent string
	timeout   time.Duration
	headers   http.Header
	transport http.RoundTripper
	logger    *slog.Logger
	base      *colly.Collector
}

// FetcherOption configures a CollyFetcher.
type FetcherOption func(*CollyFetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *CollyFetcher) {
		f.userAgent = ua
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *CollyFetcher) {
		f.timeout = d
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(h http.Header) FetcherOption {
	return func(f *CollyFetcher) {
		f.headers = h.Clone()
	}
}

// WithCookie sends the given cookie string with every request.
func WithCookie(cookie string) FetcherOption {
	return func(f *CollyFetcher) {
		if cookie == "" {
			return
		}
		if f.headers == nil {
			f.headers = http.Header{}
		}
		f.headers.Set("Cookie", cookie)
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) FetcherOption {
	return func(f *CollyFetcher) {
		f.transport = rt
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *CollyFetcher) {
		f.logger = logger
	}
}

// NewCollyFetcher builds a CollyFetcher.
func NewCollyFetcher(opts ...FetcherOption) *CollyFetcher {
	f := &CollyFetcher{
		userAgent: "guidecrawl/1.0",
		timeout:   30 * time.Second,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.transport == nil {
		f.transport = newHTTPTransport()
	}

	c := colly.NewCollector(colly.Async(false))
	c.AllowURLRevisit = true
	c.IgnoreRobotsTxt = true
	c.UserAgent = f.userAgent
	c.SetRequestTimeout(f.timeout)
	c.WithTransport(f.transport)
	f.base = c

	return f
}

// Fetch performs a GET for pageURL. Failed requests and non-2xx responses
// are returned as *model.TransportError.
func (f *CollyFetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	var (
		page      *Page
		status    int
		hookErr   error
		collector = f.collector(ctx)
	)

	collector.OnRequest(func(r *colly.Request) {
		for key, values := range f.headers {
			for _, v := range values {
				r.Headers.Add(key, v)
			}
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		body := append([]byte(nil), r.Body...)
		contentType := r.Headers.Get("Content-Type")
		if contentType == "" {
			contentType = mimetype.Detect(body).String()
		}
		page = &Page{
			URL:         r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: decodedContentType(contentType),
			Body:        body,
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		hookErr = err
	})

	f.logger.Debug("fetching page", "url", pageURL)

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(pageURL)
	}()

	select {
	case <-ctx.Done():
		// The request carries ctx, so the pending Visit returns promptly.
		return nil, &model.TransportError{URL: pageURL, Err: ctx.Err()}
	case err := <-done:
		if err == nil {
			err = hookErr
		}
		if err != nil {
			return nil, &model.TransportError{URL: pageURL, StatusCode: status, Err: err}
		}
	}

	if page == nil {
		return nil, &model.TransportError{URL: pageURL, Err: errors.New("no response received")}
	}
	if page.StatusCode < 200 || page.StatusCode > 299 {
		return nil, &model.TransportError{
			URL:        pageURL,
			StatusCode: page.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", page.StatusCode),
		}
	}
	return page, nil
}

// collector returns a clone of the base collector whose requests are bound
// to ctx. Only fields owned by the clone may be set here.
func (f *CollyFetcher) collector(ctx context.Context) *colly.Collector {
	c := f.base.Clone()
	c.Context = ctx
	return c
}

// decodedContentType reports the charset colly has already decoded the
// body into. colly converts bodies with a declared non-UTF-8 charset to
// UTF-8, so the declared charset no longer describes the bytes.
func decodedContentType(ct string) string {
	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil || params["charset"] == "" {
		return ct
	}
	params["charset"] = "utf-8"
	return mime.FormatMediaType(mediaType, params)
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
