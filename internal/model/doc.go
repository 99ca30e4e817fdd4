// Package model defines the data structures shared by the crawler, the
// aggregate store, the interchange serializer and the relational loader.
//
// This package contains the following main types:
//   - RawListing: one listing card as it appears on a listing page
//   - Restaurant: the normalized record held by the aggregate store
//   - PriceTier: a length-coded price symbol such as "$$"
//   - TransportError and ParseShapeError: the crawl error taxonomy
//
// The normalization rules (city, price/cuisine, street address) live here
// as named functions so that every component applies the same rule.
package model
