package model

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// PriceCuisineSeparator is the middle dot between the price tier and the
// cuisine in a listing card footer.
const PriceCuisineSeparator = "·"

// ErrPriceCuisineFormat is returned when the price/cuisine text does not
// split into exactly two non-empty parts.
var ErrPriceCuisineFormat = errors.New("price/cuisine text must be \"<price> · <cuisine>\"")

// NormalizeText returns s in Unicode NFC form with surrounding whitespace
// removed and inner whitespace runs collapsed to a single space.
// Two spellings of "Café" that differ only in composition map to the same
// string, which keeps dedup keys stable.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// CityFromLocation extracts the city from a listing location such as
// "Cupertino, USA" or "Cupertino, United States".
//
// The rule drops the trailing ", <country>" segment at the last comma.
// Text without a comma is returned whole.
func CityFromLocation(location string) string {
	loc := NormalizeText(location)
	i := strings.LastIndex(loc, ",")
	if i < 0 {
		return loc
	}
	return strings.TrimSpace(loc[:i])
}

// SplitPriceCuisine splits "$$ · French" into its price tier and cuisine.
func SplitPriceCuisine(text string) (PriceTier, string, error) {
	parts := strings.Split(NormalizeText(text), PriceCuisineSeparator)
	if len(parts) != 2 {
		return "", "", ErrPriceCuisineFormat
	}
	price := strings.TrimSpace(parts[0])
	cuisine := strings.TrimSpace(parts[1])
	if price == "" || cuisine == "" {
		return "", "", ErrPriceCuisineFormat
	}
	return PriceTier(price), cuisine, nil
}

// StreetAddress returns the street part of a full postal address for
// display. The stored address keeps every segment.
//
// The trailing country segment is dropped, then the segment carrying the
// postal code if one remains after the street:
//
//	"123 Main St, Cupertino, CA 95014, United States" -> "123 Main St, Cupertino"
func StreetAddress(address string) string {
	segments := splitSegments(address)
	if len(segments) > 1 {
		segments = segments[:len(segments)-1]
	}
	if len(segments) > 1 && hasDigit(segments[len(segments)-1]) {
		segments = segments[:len(segments)-1]
	}
	return strings.Join(segments, ", ")
}

func splitSegments(address string) []string {
	raw := strings.Split(NormalizeText(address), ",")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
