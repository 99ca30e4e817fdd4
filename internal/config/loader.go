package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".guidecrawl"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile reads a YAML configuration file.
// A missing file yields ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in this order:
// 1. configPath, if specified
// 2. .guidecrawl in the current directory
// 3. .guidecrawl in the user's home directory
//
// It returns an empty string when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// Apply copies the file settings onto c. Unset settings are ignored.
// The file is kept as c.SiteConfigs.
func (c *Config) Apply(cf *File) error {
	if cf == nil {
		return nil
	}
	s := cf.Settings

	setString(&c.BaseURL, s.BaseURL)
	setString(&c.SeedPath, s.SeedPath)
	setString(&c.DataDir, s.DataDir)
	setString(&c.JSONPath, s.JSONPath)
	setString(&c.DBPath, s.DBPath)
	setString(&c.UserAgent, s.UserAgent)
	setString(&c.CollisionPolicy, s.CollisionPolicy)

	if err := setDuration(&c.Timeout, "timeout", s.Timeout); err != nil {
		return err
	}
	if err := setDuration(&c.RetryBaseDelay, "retryBaseDelay", s.RetryBaseDelay); err != nil {
		return err
	}
	if err := setDuration(&c.RetryMaxDelay, "retryMaxDelay", s.RetryMaxDelay); err != nil {
		return err
	}

	if s.MaxRetries != nil {
		c.MaxRetries = *s.MaxRetries
	}
	if s.Concurrency != 0 {
		c.Concurrency = s.Concurrency
	}
	if s.MaxPages != 0 {
		c.MaxPages = s.MaxPages
	}
	if s.SkipUnreachable {
		c.SkipUnreachable = true
	}

	c.SiteConfigs = cf
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	*dst = d
	return nil
}
