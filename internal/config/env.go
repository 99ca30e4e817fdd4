package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GUIDECRAWL_"

// envBindings maps environment variable suffixes to the string fields they
// override.
func (c *Config) envBindings() map[string]*string {
	return map[string]*string{
		"BASE_URL":         &c.BaseURL,
		"SEED_PATH":        &c.SeedPath,
		"DATA_DIR":         &c.DataDir,
		"JSON_PATH":        &c.JSONPath,
		"DB_PATH":          &c.DBPath,
		"USER_AGENT":       &c.UserAgent,
		"COLLISION_POLICY": &c.CollisionPolicy,
	}
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables that are already set are left alone. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv copies GUIDECRAWL_* variables found by lookup onto c.
// A nil lookup uses os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for suffix, field := range c.envBindings() {
		if v, ok := lookup(EnvPrefix + suffix); ok && v != "" {
			*field = v
		}
	}
}
