// Package aggregate holds the restaurants collected during one crawl,
// keyed by display name.
//
// The interchange format keys records by name, yet two different
// restaurants may share a name. A Store resolves such clashes with an
// explicit Policy instead of silently overwriting. A repeated observation
// of the same restaurant (same name, same detail URL) is merged.
package aggregate
