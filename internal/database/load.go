package database

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/nao1215/guidecrawl/internal/model"
)

// Duplicate describes a restaurant that was not inserted because another
// row already holds the same url or address.
type Duplicate struct {
	Name   string `json:"name"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// LoadStats summarizes a Load.
type LoadStats struct {
	Restaurants int         `json:"restaurants"`
	Cities      int         `json:"cities"`
	Costs       int         `json:"costs"`
	Cuisines    int         `json:"cuisines"`
	Duplicates  []Duplicate `json:"duplicates,omitempty"`
}

const (
	upsertCity    = `INSERT INTO City(city) VALUES (?) ON CONFLICT(city) DO UPDATE SET city = excluded.city RETURNING id`
	upsertCost    = `INSERT INTO Cost(cost) VALUES (?) ON CONFLICT(cost) DO UPDATE SET cost = excluded.cost RETURNING id`
	upsertCuisine = `INSERT INTO Cuisine(cuisine) VALUES (?) ON CONFLICT(cuisine) DO UPDATE SET cuisine = excluded.cuisine RETURNING id`

	insertRestaurant = `INSERT INTO Restaurant(name, url, city, cost, cuisine, address)
		VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`
)

// pruneLookups removes lookup rows that only a rejected duplicate used.
var pruneLookups = []string{
	`DELETE FROM City WHERE id NOT IN (SELECT city FROM Restaurant)`,
	`DELETE FROM Cost WHERE id NOT IN (SELECT cost FROM Restaurant)`,
	`DELETE FROM Cuisine WHERE id NOT IN (SELECT cuisine FROM Restaurant)`,
}

// loadStatements holds the prepared statements of one Load.
type loadStatements struct {
	city, cost, cuisine, restaurant *sql.Stmt
	urlTaken                        *sql.Stmt
}

func prepareLoad(ctx context.Context, tx *sql.Tx) (*loadStatements, error) {
	ls := &loadStatements{}
	targets := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&ls.city, upsertCity},
		{&ls.cost, upsertCost},
		{&ls.cuisine, upsertCuisine},
		{&ls.restaurant, insertRestaurant},
		{&ls.urlTaken, `SELECT EXISTS(SELECT 1 FROM Restaurant WHERE url = ?)`},
	}
	for _, target := range targets {
		stmt, err := tx.PrepareContext(ctx, target.query)
		if err != nil {
			ls.close()
			return nil, fmt.Errorf("failed to prepare statement: %w", err)
		}
		*target.dst = stmt
	}
	return ls, nil
}

func (ls *loadStatements) close() {
	for _, stmt := range []*sql.Stmt{ls.city, ls.cost, ls.cuisine, ls.restaurant, ls.urlTaken} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

// Load replaces the database contents with records.
//
// The tables are dropped and recreated in one transaction and records are
// inserted in sorted name order, so loading the same input twice yields
// identical rows. Records whose url or address already exists are reported
// in LoadStats.Duplicates and leave no City, Cost or Cuisine row behind.
func (rdb *RestaurantDB) Load(ctx context.Context, records map[string]model.Restaurant) (_ *LoadStats, err error) {
	if rdb.readOnly {
		return nil, ErrReadOnly
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = rebuildSchema(ctx, tx); err != nil {
		return nil, err
	}

	stmts, err := prepareLoad(ctx, tx)
	if err != nil {
		return nil, err
	}
	defer stmts.close()

	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	slices.Sort(names)

	stats := &LoadStats{}
	cities := make(map[int64]struct{})
	costs := make(map[int64]struct{})
	cuisines := make(map[int64]struct{})

	for _, name := range names {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		rec := records[name]

		var cityID, costID, cuisineID int64
		if cityID, err = lookupID(ctx, stmts.city, rec.City); err != nil {
			return nil, fmt.Errorf("failed to insert city %q: %w", rec.City, err)
		}
		if costID, err = lookupID(ctx, stmts.cost, rec.Price.String()); err != nil {
			return nil, fmt.Errorf("failed to insert cost %q: %w", rec.Price, err)
		}
		if cuisineID, err = lookupID(ctx, stmts.cuisine, rec.Cuisine); err != nil {
			return nil, fmt.Errorf("failed to insert cuisine %q: %w", rec.Cuisine, err)
		}
		var res sql.Result
		res, err = stmts.restaurant.ExecContext(ctx,
			name, rec.Website, cityID, costID, cuisineID, nullString(rec.Address))
		if err != nil {
			return nil, fmt.Errorf("failed to insert restaurant %q: %w", name, err)
		}

		var n int64
		if n, err = res.RowsAffected(); err != nil {
			return nil, fmt.Errorf("failed to inspect insert of %q: %w", name, err)
		}
		if n == 1 {
			stats.Restaurants++
			cities[cityID] = struct{}{}
			costs[costID] = struct{}{}
			cuisines[cuisineID] = struct{}{}
			continue
		}

		var dup Duplicate
		if dup, err = rdb.conflict(ctx, stmts, name, rec); err != nil {
			return nil, err
		}
		stats.Duplicates = append(stats.Duplicates, dup)
	}

	if len(stats.Duplicates) > 0 {
		for _, stmt := range pruneLookups {
			if _, err = tx.ExecContext(ctx, stmt); err != nil {
				return nil, fmt.Errorf("failed to prune unused lookups: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit load: %w", err)
	}

	stats.Cities = len(cities)
	stats.Costs = len(costs)
	stats.Cuisines = len(cuisines)
	return stats, nil
}

// conflict names the UNIQUE column that rejected rec.
func (rdb *RestaurantDB) conflict(ctx context.Context, stmts *loadStatements, name string, rec model.Restaurant) (Duplicate, error) {
	var taken bool
	if err := stmts.urlTaken.QueryRowContext(ctx, rec.Website).Scan(&taken); err != nil {
		return Duplicate{}, fmt.Errorf("failed to resolve conflict for %q: %w", name, err)
	}
	if taken {
		return Duplicate{Name: name, Column: "url", Value: rec.Website}, nil
	}
	return Duplicate{Name: name, Column: "address", Value: rec.Address}, nil
}

// lookupID inserts value if needed and returns its surrogate key.
func lookupID(ctx context.Context, stmt *sql.Stmt, value string) (int64, error) {
	var id int64
	if err := stmt.QueryRowContext(ctx, value).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// nullString stores empty text as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
