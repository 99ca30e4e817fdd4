package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidBaseURL is returned when the base URL is not an absolute
	// http or https URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http(s) URL")

	// ErrNoSeedPath is returned when no seed path is configured.
	ErrNoSeedPath = errors.New("no seed path specified")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxRetries is returned when the retry count is negative.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidRetryDelay is returned when the base delay is negative or
	// larger than the maximum delay.
	ErrInvalidRetryDelay = errors.New("invalid retry delay: base must be non-negative and not above max")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxPages is returned when the page bound is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative (0 means unbounded)")

	// ErrInvalidCollisionPolicy is returned for an unknown collision policy.
	ErrInvalidCollisionPolicy = errors.New("invalid collision policy: must be overwrite, reject or suffix")

	// ErrNoDataDir is returned when neither a data directory nor explicit
	// file paths are configured.
	ErrNoDataDir = errors.New("no data directory specified")

	// ErrConflictingReportFormats is returned when both Markdown and JSON
	// report output are requested.
	ErrConflictingReportFormats = errors.New("markdown and json report formats are mutually exclusive")
)
