package config

// Selectors overrides the CSS selectors used to read listing and detail
// pages. Empty fields keep the built-in defaults.
type Selectors struct {
	Results      string `yaml:"results,omitempty"`
	Title        string `yaml:"title,omitempty"`
	Location     string `yaml:"location,omitempty"`
	PriceCuisine string `yaml:"priceCuisine,omitempty"`
	Pagination   string `yaml:"pagination,omitempty"`
	Address      string `yaml:"address,omitempty"`
}

// merge returns s with non-empty fields of o applied on top.
func (s Selectors) merge(o Selectors) Selectors {
	if o.Results != "" {
		s.Results = o.Results
	}
	if o.Title != "" {
		s.Title = o.Title
	}
	if o.Location != "" {
		s.Location = o.Location
	}
	if o.PriceCuisine != "" {
		s.PriceCuisine = o.PriceCuisine
	}
	if o.Pagination != "" {
		s.Pagination = o.Pagination
	}
	if o.Address != "" {
		s.Address = o.Address
	}
	return s
}

// SiteConfig holds settings for one directory host.
type SiteConfig struct {
	// Cookie is sent with every request to the site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent with every request to the site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Selectors overrides the page selectors for the site.
	Selectors Selectors `yaml:"selectors,omitempty"`
}

// Settings are the run options that may be set in the configuration file.
// Zero values leave the defaults in place.
type Settings struct {
	BaseURL         string `yaml:"baseURL,omitempty"`
	SeedPath        string `yaml:"seedPath,omitempty"`
	DataDir         string `yaml:"dataDir,omitempty"`
	JSONPath        string `yaml:"jsonPath,omitempty"`
	DBPath          string `yaml:"dbPath,omitempty"`
	UserAgent       string `yaml:"userAgent,omitempty"`
	Timeout         string `yaml:"timeout,omitempty"`
	MaxRetries      *int   `yaml:"maxRetries,omitempty"`
	RetryBaseDelay  string `yaml:"retryBaseDelay,omitempty"`
	RetryMaxDelay   string `yaml:"retryMaxDelay,omitempty"`
	Concurrency     int    `yaml:"concurrency,omitempty"`
	MaxPages        int    `yaml:"maxPages,omitempty"`
	SkipUnreachable bool   `yaml:"skipUnreachable,omitempty"`
	CollisionPolicy string `yaml:"collisionPolicy,omitempty"`
}

// File represents the structure of the .guidecrawl configuration file.
type File struct {
	// Settings are global run options.
	Settings Settings `yaml:"settings,omitempty"`

	// Sites maps a host name (e.g. "guide.michelin.com") to its settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for host merged over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	site, ok := cf.Sites[host]
	if !ok {
		return result
	}
	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	result.Selectors = result.Selectors.merge(site.Selectors)
	return result
}
