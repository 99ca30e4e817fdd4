package crawler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/nao1215/guidecrawl/internal/model"
)

// Selectors are the CSS selectors used to read directory pages.
type Selectors struct {
	// Results matches the section that holds the listing cards.
	Results string

	// Title matches the title link of each card, inside Results.
	Title string

	// Location matches the location text of each card, inside Results.
	Location string

	// PriceCuisine matches the "price · cuisine" text, inside Results.
	PriceCuisine string

	// Pagination matches pagination links anywhere on the page.
	Pagination string

	// Address matches the address element of a detail page.
	Address string
}

// DefaultSelectors returns the selectors for the MICHELIN Guide markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Results:      "section.section-main.search-results.search-listing-result",
		Title:        "h3.card__menu-content--title.pl-text.pl-big a",
		Location:     ".card__menu-footer--location.flex-fill.pl-text",
		PriceCuisine: ".card__menu-footer--price.pl-text",
		Pagination:   "ul.pagination a",
		Address:      "li.restaurant-details__heading--address",
	}
}

// Merge returns s with the non-empty selectors of o applied on top.
func (s Selectors) Merge(o Selectors) Selectors {
	override(&s.Results, o.Results)
	override(&s.Title, o.Title)
	override(&s.Location, o.Location)
	override(&s.PriceCuisine, o.PriceCuisine)
	override(&s.Pagination, o.Pagination)
	override(&s.Address, o.Address)
	return s
}

func override(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// Extraction is the content of one listing page.
type Extraction struct {
	// Listings are the cards in page order.
	Listings []model.RawListing

	// Pagination holds the raw href of every pagination link.
	Pagination []string
}

// Extractor reads listing and detail pages.
type Extractor struct {
	sel Selectors
}

// NewExtractor returns an Extractor using sel.
func NewExtractor(sel Selectors) *Extractor {
	return &Extractor{sel: sel}
}

// Extract reads the listing cards and pagination links of a listing page.
//
// The title, location and price/cuisine lists are paired by position. When
// their lengths differ the page is rejected with a *model.ParseShapeError
// rather than pairing the wrong elements.
func (e *Extractor) Extract(page *Page) (*Extraction, error) {
	doc, err := parseDocument(page)
	if err != nil {
		return nil, err
	}

	out := &Extraction{}
	doc.Find(e.sel.Pagination).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && strings.TrimSpace(href) != "" {
			out.Pagination = append(out.Pagination, strings.TrimSpace(href))
		}
	})

	results := doc.Find(e.sel.Results)
	titles := results.Find(e.sel.Title)
	locations := results.Find(e.sel.Location)
	prices := results.Find(e.sel.PriceCuisine)

	if titles.Length() != locations.Length() || titles.Length() != prices.Length() {
		return nil, &model.ParseShapeError{
			Page:  page.URL,
			Field: "listing",
			Detail: fmt.Sprintf("%d titles, %d locations, %d price/cuisine entries",
				titles.Length(), locations.Length(), prices.Length()),
		}
	}

	out.Listings = make([]model.RawListing, 0, titles.Length())
	titles.Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		out.Listings = append(out.Listings, model.RawListing{
			Name:         s.Text(),
			DetailURL:    href,
			Location:     locations.Eq(i).Text(),
			PriceCuisine: prices.Eq(i).Text(),
			Page:         page.URL,
			Index:        i,
		})
	})

	return out, nil
}

// ExtractAddress returns the whitespace-trimmed text of the first address
// element of a detail page. A page without one yields a
// *model.ParseShapeError.
func (e *Extractor) ExtractAddress(page *Page) (string, error) {
	doc, err := parseDocument(page)
	if err != nil {
		return "", err
	}
	addr := model.NormalizeText(doc.Find(e.sel.Address).First().Text())
	if addr == "" {
		return "", &model.ParseShapeError{
			Page:   page.URL,
			Field:  "address",
			Detail: fmt.Sprintf("no element matches %q", e.sel.Address),
		}
	}
	return addr, nil
}

// parseDocument decodes the body to UTF-8 and builds a goquery document.
func parseDocument(page *Page) (*goquery.Document, error) {
	r, err := charset.NewReader(bytes.NewReader(page.Body), page.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset of %s: %w", page.URL, err)
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", page.URL, err)
	}
	return goquery.NewDocumentFromNode(root), nil
}
