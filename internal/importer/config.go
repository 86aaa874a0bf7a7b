package importer

import (
	"errors"
	"os"
	"strings"
)

// DefaultUserAgent identifies this importer to Overpass and Wikidata, whose
// policies require a descriptive agent with a contact URL.
const DefaultUserAgent = "CommonsAtlas-Importer/1.0 (+https://github.com/CommonsAtlas/CA-Backend)"

// Default admin-level range: 4 (state/region) through 11 (neighbourhood).
const (
	DefaultMinLevel = 4
	DefaultMaxLevel = 11
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

// Config holds importer configuration.
type Config struct {
	DatabaseURL    string
	OverpassURL    string
	WikidataAPIURL string
	UserAgent      string
	RedisURL       string
}

// LoadFromEnv loads importer configuration from environment variables.
//
// Environment variables:
//   - DATABASE_URL: Postgres DSN (required)
//   - OVERPASS_URL: Overpass interpreter endpoint (default public instance)
//   - WIKIDATA_API_URL: Wikidata action API endpoint (default wikidata.org)
//   - IMPORTER_USER_AGENT: User-Agent for both services
//   - REDIS_URL: optional, enables the reverse-geocode response cache
func LoadFromEnv() Config {
	ua := strings.TrimSpace(os.Getenv("IMPORTER_USER_AGENT"))
	if ua == "" {
		ua = DefaultUserAgent
	}
	return Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		OverpassURL:    strings.TrimSpace(os.Getenv("OVERPASS_URL")),
		WikidataAPIURL: strings.TrimSpace(os.Getenv("WIKIDATA_API_URL")),
		UserAgent:      ua,
		RedisURL:       strings.TrimSpace(os.Getenv("REDIS_URL")),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}
