package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// tables lists the schema in dependency order.
var tables = []string{"City", "Cost", "Cuisine", "Restaurant"}

// RestaurantDB is the SQLite store for crawled restaurants.
type RestaurantDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	readOnly bool
}

// Options configures RestaurantDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file and its directory if they
	// don't exist. Without it a missing file yields ErrSchemaAbsent.
	CreateIfNotExists bool

	// ReadOnly rejects every write on the connection.
	ReadOnly bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the loader.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// QueryOptions returns the options used by read-only consumers.
func QueryOptions() Options {
	return Options{ReadOnly: true}
}

// Open opens the database at path.
//
// A database opened without CreateIfNotExists must already hold the four
// tables; otherwise ErrSchemaAbsent is returned.
func Open(path string, opts Options) (*RestaurantDB, error) {
	if opts.ReadOnly {
		opts.CreateIfNotExists = false
	}

	if opts.CreateIfNotExists {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSchemaAbsent, path)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	}

	// modernc.org/sqlite applies every _pragma on each new connection.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if opts.ReadOnly {
		dsn += "&_pragma=query_only(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RestaurantDB{
		db:       db,
		dbPath:   path,
		readOnly: opts.ReadOnly,
	}

	if opts.EnableWAL && !opts.ReadOnly {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if !opts.CreateIfNotExists {
		if err := rdb.checkSchema(context.Background()); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RestaurantDB) Close() error {
	return rdb.db.Close()
}

// Path returns the database file path.
func (rdb *RestaurantDB) Path() string {
	return rdb.dbPath
}

// checkSchema verifies that all four tables exist.
func (rdb *RestaurantDB) checkSchema(ctx context.Context) error {
	for _, name := range tables {
		var found int
		err := rdb.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&found)
		if err != nil {
			return fmt.Errorf("failed to inspect schema: %w", err)
		}
		if found == 0 {
			return fmt.Errorf("%w: %s has no %s table", ErrSchemaAbsent, rdb.dbPath, name)
		}
	}
	return nil
}

// dropStatements removes the schema, dependents first.
var dropStatements = []string{
	`DROP TABLE IF EXISTS Restaurant`,
	`DROP TABLE IF EXISTS City`,
	`DROP TABLE IF EXISTS Cost`,
	`DROP TABLE IF EXISTS Cuisine`,
}

var createStatements = []string{
	`CREATE TABLE City (
		id INTEGER PRIMARY KEY,
		city TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE Cost (
		id INTEGER PRIMARY KEY,
		cost TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE Cuisine (
		id INTEGER PRIMARY KEY,
		cuisine TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE Restaurant (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		url TEXT NOT NULL UNIQUE,
		city INTEGER NOT NULL REFERENCES City(id),
		cost INTEGER NOT NULL REFERENCES Cost(id),
		cuisine INTEGER NOT NULL REFERENCES Cuisine(id),
		address TEXT UNIQUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_restaurant_name ON Restaurant(name)`,
	`CREATE INDEX IF NOT EXISTS idx_restaurant_city ON Restaurant(city)`,
	`CREATE INDEX IF NOT EXISTS idx_restaurant_cuisine ON Restaurant(cuisine)`,
}

// rebuildSchema drops and recreates all tables inside tx.
func rebuildSchema(ctx context.Context, tx *sql.Tx) error {
	for _, stmt := range dropStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	for _, stmt := range createStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}
