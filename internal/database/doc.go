// Package database provides the SQLite relational store for guidecrawl.
//
// The store holds four tables:
//   - City, Cost and Cuisine, one row per distinct value
//   - Restaurant, referencing the three lookup tables by surrogate key
//
// Load rebuilds every table from a snapshot of restaurants inside a single
// transaction, so a failed load leaves the previous contents untouched.
// The query methods are read-only and back both the CLI and the HTTP API.
//
// We use SQLite through modernc.org/sqlite. The database is a single file
// and the driver needs no CGO.
package database
