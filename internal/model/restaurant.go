package model

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Restaurant is the normalized record for one restaurant.
// The JSON field names are part of the interchange file format and must
// not change.
type Restaurant struct {
	// Website is the absolute URL of the restaurant's detail page.
	Website string `json:"Website"`

	// City is the city name with the trailing country segment removed.
	City string `json:"City"`

	// Price is the price tier, e.g. "$$".
	Price PriceTier `json:"Price"`

	// Cuisine is the cuisine label, e.g. "French".
	Cuisine string `json:"Cuisine"`

	// Address is the street address taken from the detail page.
	// Empty until enrichment completes.
	Address string `json:"Address"`
}

// Enriched reports whether the detail-page address has been filled in.
func (r Restaurant) Enriched() bool {
	return r.Address != ""
}

// Merge returns r with every empty field filled from other.
// Non-empty fields of other win over r, so a later observation of the
// same entity refines the earlier one.
func (r Restaurant) Merge(other Restaurant) Restaurant {
	if other.Website != "" {
		r.Website = other.Website
	}
	if other.City != "" {
		r.City = other.City
	}
	if other.Price != "" {
		r.Price = other.Price
	}
	if other.Cuisine != "" {
		r.Cuisine = other.Cuisine
	}
	if other.Address != "" {
		r.Address = other.Address
	}
	return r
}

// PriceTier is a price level written as repeated currency symbols.
type PriceTier string

// Level returns the number of symbols in the tier ("$$$" is 3).
func (p PriceTier) Level() int {
	return utf8.RuneCountInString(string(p))
}

// String implements fmt.Stringer.
func (p PriceTier) String() string {
	return string(p)
}

// RawListing is one listing card extracted from a listing page.
// It only lives between extraction and normalization.
type RawListing struct {
	// Name is the display name from the card title.
	Name string

	// DetailURL is the href of the card title link, usually site-relative.
	DetailURL string

	// Location is the raw location text, e.g. "Cupertino, USA".
	Location string

	// PriceCuisine is the raw combined text, e.g. "$$ · French".
	PriceCuisine string

	// Page is the listing page URL the card was found on.
	Page string

	// Index is the zero-based position of the card on its page.
	Index int
}

// Key returns the aggregate-store key for the listing.
func (l RawListing) Key() string {
	return NormalizeText(l.Name)
}

// Normalize converts the listing into a Restaurant without an address.
// base is the directory origin used to resolve a relative detail link.
// Malformed fields are reported as a *ParseShapeError scoped to this record.
func (l RawListing) Normalize(base *url.URL) (Restaurant, error) {
	name := l.Key()
	if name == "" {
		return Restaurant{}, l.shapeError("name", "empty display name")
	}

	website, err := resolveLink(base, l.DetailURL)
	if err != nil {
		return Restaurant{}, l.shapeError("website", err.Error())
	}

	city := CityFromLocation(l.Location)
	if city == "" {
		return Restaurant{}, l.shapeError("city", fmt.Sprintf("no city in location %q", l.Location))
	}

	price, cuisine, err := SplitPriceCuisine(l.PriceCuisine)
	if err != nil {
		return Restaurant{}, l.shapeError("price_cuisine", err.Error())
	}

	return Restaurant{
		Website: website,
		City:    city,
		Price:   price,
		Cuisine: cuisine,
	}, nil
}

func (l RawListing) shapeError(field, detail string) *ParseShapeError {
	return &ParseShapeError{
		Page:   l.Page,
		Field:  field,
		Record: recordLabel(l.Name),
		Index:  l.Index,
		Detail: detail,
	}
}

// resolveLink makes href absolute against base.
func resolveLink(base *url.URL, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("empty detail link")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid detail link %q: %w", href, err)
	}
	if base == nil {
		if !ref.IsAbs() {
			return "", fmt.Errorf("relative detail link %q without base URL", href)
		}
		return ref.String(), nil
	}
	return base.ResolveReference(ref).String(), nil
}

func recordLabel(name string) string {
	if n := NormalizeText(name); n != "" {
		return n
	}
	return "<unnamed>"
}
