// Package interchange reads and writes the restaurant interchange file: a
// JSON object mapping each restaurant name to its Website, City, Price,
// Cuisine and Address, indented with four spaces.
package interchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/guidecrawl/internal/model"
)

// Indent is the indentation of the interchange file.
const Indent = "    "

// ErrInvalidRecord is returned when a decoded record lacks its Website.
var ErrInvalidRecord = errors.New("invalid interchange record")

// Encode writes records to w. Keys are written in sorted order.
func Encode(w io.Writer, records map[string]model.Restaurant) error {
	if records == nil {
		records = map[string]model.Restaurant{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", Indent)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode restaurants: %w", err)
	}
	return nil
}

// Decode reads records from r.
func Decode(r io.Reader) (map[string]model.Restaurant, error) {
	var records map[string]model.Restaurant
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode restaurants: %w", err)
	}
	if records == nil {
		records = map[string]model.Restaurant{}
	}
	for name, rec := range records {
		if name == "" {
			return nil, fmt.Errorf("%w: empty restaurant name", ErrInvalidRecord)
		}
		if rec.Website == "" {
			return nil, fmt.Errorf("%w: %q has no Website", ErrInvalidRecord, name)
		}
	}
	return records, nil
}

// Write replaces the file at path with records. The data goes to a
// temporary file in the same directory first and is renamed into place, so
// a failed write leaves the previous file intact. Missing parent
// directories are created.
func Write(path string, records map[string]model.Restaurant) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := Encode(tmp, records); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // the interchange file is meant to be shared
		return fmt.Errorf("failed to set permissions on %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move interchange file into place: %w", err)
	}
	return nil
}

// Read loads the interchange file at path.
func Read(path string) (map[string]model.Restaurant, error) {
	f, err := os.Open(path) //nolint:gosec // user-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open interchange file: %w", err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
