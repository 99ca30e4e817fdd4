// Package crawler walks a paginated restaurant directory and turns its pages
// into normalized restaurant records.
//
// # Components
//
//   - Frontier: LIFO work stack of listing-page paths with a visited set
//   - CollyFetcher: fetches one page with a cloned colly collector
//   - RetryingFetcher: retries transient fetch failures with backoff
//   - Extractor: reads listing cards, pagination links and detail addresses
//   - Enricher: fetches a detail page and returns the street address
//   - Spider: drives the crawl and feeds the aggregate store
//
// # Failure handling
//
// Transport failures are retried. When retries run out the crawl aborts,
// unless the spider was built with WithSkipUnreachable, in which case the
// page is recorded in CrawlStats.Unreachable. A listing page whose card
// lists disagree in length aborts the crawl. A single malformed card or a
// detail page without an address drops only that record.
//
// # Usage
//
//	fetcher := crawler.NewRetryingFetcher(crawler.NewCollyFetcher(), crawler.DefaultRetryPolicy())
//	spider, err := crawler.NewSpider(fetcher, baseURL, crawler.WithConcurrency(4))
//	records, stats, err := spider.Crawl(ctx, "/us/en/california/cupertino/restaurants")
package crawler
