package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Details is a restaurant joined with its city, cost and cuisine.
type Details struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	City    string `json:"city"`
	Cost    string `json:"cost"`
	Cuisine string `json:"cuisine"`
	Address string `json:"address"`
}

// TableCounts holds the row count of each table.
type TableCounts struct {
	Cities      int `json:"cities"`
	Costs       int `json:"costs"`
	Cuisines    int `json:"cuisines"`
	Restaurants int `json:"restaurants"`
}

// GroupCount is the number of restaurants sharing one value.
type GroupCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

const detailsSelect = `
	SELECT r.name, r.url, c.city, co.cost, cu.cuisine, COALESCE(r.address, '')
	FROM Restaurant r
	JOIN City c ON c.id = r.city
	JOIN Cost co ON co.id = r.cost
	JOIN Cuisine cu ON cu.id = r.cuisine`

// Cities returns every city, sorted.
func (rdb *RestaurantDB) Cities(ctx context.Context) ([]string, error) {
	return rdb.queryStrings(ctx, `SELECT city FROM City ORDER BY city`)
}

// Cuisines returns every cuisine, sorted.
func (rdb *RestaurantDB) Cuisines(ctx context.Context) ([]string, error) {
	return rdb.queryStrings(ctx, `SELECT cuisine FROM Cuisine ORDER BY cuisine`)
}

// RestaurantsByCity returns the sorted names of restaurants in city.
func (rdb *RestaurantDB) RestaurantsByCity(ctx context.Context, city string) ([]string, error) {
	return rdb.queryStrings(ctx, `
		SELECT r.name FROM Restaurant r
		JOIN City c ON c.id = r.city
		WHERE c.city = ?
		ORDER BY r.name`, city)
}

// RestaurantsByCuisine returns the sorted names of restaurants serving cuisine.
func (rdb *RestaurantDB) RestaurantsByCuisine(ctx context.Context, cuisine string) ([]string, error) {
	return rdb.queryStrings(ctx, `
		SELECT r.name FROM Restaurant r
		JOIN Cuisine cu ON cu.id = r.cuisine
		WHERE cu.cuisine = ?
		ORDER BY r.name`, cuisine)
}

// Details returns the restaurant called name.
// If several rows share the name, the first loaded one wins.
func (rdb *RestaurantDB) Details(ctx context.Context, name string) (*Details, error) {
	row := rdb.db.QueryRowContext(ctx, detailsSelect+` WHERE r.name = ? ORDER BY r.id LIMIT 1`, name)

	var d Details
	err := row.Scan(&d.Name, &d.URL, &d.City, &d.Cost, &d.Cuisine, &d.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query restaurant: %w", err)
	}
	return &d, nil
}

// Restaurants returns every restaurant ordered by name.
func (rdb *RestaurantDB) Restaurants(ctx context.Context) ([]Details, error) {
	rows, err := rdb.db.QueryContext(ctx, detailsSelect+` ORDER BY r.name, r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	defer rows.Close()

	var results []Details
	for rows.Next() {
		var d Details
		if err := rows.Scan(&d.Name, &d.URL, &d.City, &d.Cost, &d.Cuisine, &d.Address); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

// Counts returns the row count of each table.
func (rdb *RestaurantDB) Counts(ctx context.Context) (TableCounts, error) {
	var tc TableCounts
	err := rdb.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM City),
			(SELECT COUNT(*) FROM Cost),
			(SELECT COUNT(*) FROM Cuisine),
			(SELECT COUNT(*) FROM Restaurant)`).Scan(&tc.Cities, &tc.Costs, &tc.Cuisines, &tc.Restaurants)
	if err != nil {
		return TableCounts{}, fmt.Errorf("failed to count rows: %w", err)
	}
	return tc, nil
}

// CityCounts returns the number of restaurants per city, ordered by city.
func (rdb *RestaurantDB) CityCounts(ctx context.Context) ([]GroupCount, error) {
	return rdb.groupCounts(ctx, `
		SELECT c.city, COUNT(r.id) FROM City c
		LEFT JOIN Restaurant r ON r.city = c.id
		GROUP BY c.id ORDER BY c.city`)
}

// CuisineCounts returns the number of restaurants per cuisine, ordered by cuisine.
func (rdb *RestaurantDB) CuisineCounts(ctx context.Context) ([]GroupCount, error) {
	return rdb.groupCounts(ctx, `
		SELECT cu.cuisine, COUNT(r.id) FROM Cuisine cu
		LEFT JOIN Restaurant r ON r.cuisine = cu.id
		GROUP BY cu.id ORDER BY cu.cuisine`)
}

func (rdb *RestaurantDB) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	results := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

func (rdb *RestaurantDB) groupCounts(ctx context.Context, query string) ([]GroupCount, error) {
	rows, err := rdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var results []GroupCount
	for rows.Next() {
		var gc GroupCount
		if err := rows.Scan(&gc.Value, &gc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, gc)
	}
	return results, rows.Err()
}
