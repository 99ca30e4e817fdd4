// Package config provides the configuration for guidecrawl: crawl target,
// fetch and retry tuning, collision policy, output file locations and the
// optional YAML configuration file with per-site selectors and headers.
package config
