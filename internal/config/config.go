package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "guidecrawl"

	// DefaultBaseURL is the origin every seed path and relative link is
	// resolved against.
	DefaultBaseURL = "https://guide.michelin.com"

	// DefaultSeedPath is the first listing page of the crawl.
	DefaultSeedPath = "/us/en/california/cupertino/restaurants"

	// DefaultJSONFile is the interchange file name inside the data directory.
	DefaultJSONFile = "rest_data.json"

	// DefaultDBFile is the database file name inside the data directory.
	DefaultDBFile = "restaurants.db"

	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3

	// DefaultRetryBaseDelay is the first backoff delay; later delays double.
	DefaultRetryBaseDelay = 500 * time.Millisecond

	// DefaultRetryMaxDelay caps a single backoff delay.
	DefaultRetryMaxDelay = 10 * time.Second

	// DefaultConcurrency is the number of detail pages fetched in parallel
	// for one listing page.
	DefaultConcurrency = 4

	// DefaultCollisionPolicy keeps both restaurants when two different
	// restaurants share a display name.
	DefaultCollisionPolicy = "suffix"

	// DefaultUserAgent identifies guidecrawl in HTTP requests.
	DefaultUserAgent = "guidecrawl/1.0 (+https://github.com/nao1215/guidecrawl)"
)

// CollisionPolicies lists the accepted CollisionPolicy values.
var CollisionPolicies = []string{"overwrite", "reject", "suffix"}

// Config holds every option of a guidecrawl run. It is built from defaults,
// then the configuration file, then explicitly set command line flags.
type Config struct {
	// BaseURL is the directory origin, e.g. "https://guide.michelin.com".
	BaseURL string

	// SeedPath is the relative path of the first listing page.
	SeedPath string

	// DataDir holds the interchange file and the database by default.
	DataDir string

	// JSONPath is the interchange file. Empty means DataDir/rest_data.json.
	JSONPath string

	// DBPath is the SQLite database file. Empty means DataDir/restaurants.db.
	DBPath string

	// Timeout bounds a single page request.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MaxRetries is the number of retries for a failed fetch. 0 disables retry.
	MaxRetries int

	// RetryBaseDelay and RetryMaxDelay shape the exponential backoff.
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// Concurrency bounds parallel detail-page fetches. 1 is fully serial.
	Concurrency int

	// MaxPages stops the crawl after this many listing pages. 0 is unbounded.
	MaxPages int

	// SkipUnreachable records pages that still fail after retries and keeps
	// crawling instead of aborting.
	SkipUnreachable bool

	// CollisionPolicy decides what happens when two different restaurants
	// share a display name: "overwrite", "reject" or "suffix".
	CollisionPolicy string

	// Verbose enables debug logging.
	Verbose bool

	// MarkdownReport selects Markdown report output.
	MarkdownReport bool

	// JSONReport selects JSON report output.
	JSONReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// ConfigFilePath is the explicit configuration file, if any.
	ConfigFilePath string

	// SiteConfigs holds per-site settings loaded from the configuration file.
	SiteConfigs *File
}

// NewConfig returns a Config populated with the defaults.
func NewConfig() *Config {
	return &Config{
		BaseURL:         DefaultBaseURL,
		SeedPath:        DefaultSeedPath,
		DataDir:         XDGDataDir(),
		Timeout:         DefaultTimeout,
		UserAgent:       DefaultUserAgent,
		MaxRetries:      DefaultMaxRetries,
		RetryBaseDelay:  DefaultRetryBaseDelay,
		RetryMaxDelay:   DefaultRetryMaxDelay,
		Concurrency:     DefaultConcurrency,
		CollisionPolicy: DefaultCollisionPolicy,
	}
}

// XDGDataDir returns the XDG data directory for guidecrawl.
// On Linux: ~/.local/share/guidecrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for guidecrawl.
// On Linux: ~/.config/guidecrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// InterchangePath returns the interchange file location.
func (c *Config) InterchangePath() string {
	if c.JSONPath != "" {
		return c.JSONPath
	}
	return filepath.Join(c.DataDir, DefaultJSONFile)
}

// DatabasePath returns the database file location.
func (c *Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, DefaultDBFile)
}

// Site returns the per-site settings for the configured base URL host.
func (c *Config) Site() SiteConfig {
	if c.SiteConfigs == nil {
		return SiteConfig{}
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return c.SiteConfigs.Defaults
	}
	return c.SiteConfigs.GetSiteConfig(u.Host)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidBaseURL
	}
	if c.SeedPath == "" {
		return ErrNoSeedPath
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if c.RetryBaseDelay < 0 || c.RetryMaxDelay < c.RetryBaseDelay {
		return ErrInvalidRetryDelay
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if !validCollisionPolicy(c.CollisionPolicy) {
		return ErrInvalidCollisionPolicy
	}
	if c.JSONPath == "" && c.DBPath == "" && c.DataDir == "" {
		return ErrNoDataDir
	}
	if c.MarkdownReport && c.JSONReport {
		return ErrConflictingReportFormats
	}
	return nil
}

func validCollisionPolicy(p string) bool {
	for _, v := range CollisionPolicies {
		if p == v {
			return true
		}
	}
	return false
}
