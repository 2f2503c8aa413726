// Package config loads typed runtime configuration for the catalog
// search service from environment variables, with an optional .env
// file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// RelevanceWeights holds the empirical scoring weights from spec §4.D.
// Exposed as configuration since they are expected to be tuned.
type RelevanceWeights struct {
	ExactCode          int `env:"RELEVANCE_EXACT_CODE" envDefault:"100"`
	PrefixCode         int `env:"RELEVANCE_PREFIX_CODE" envDefault:"80"`
	NameRegex          int `env:"RELEVANCE_NAME_REGEX" envDefault:"70"`
	FullText           int `env:"RELEVANCE_FULL_TEXT" envDefault:"60"`
	ColourOverlap      int `env:"RELEVANCE_COLOUR_OVERLAP" envDefault:"30"`
	FabricOverlap      int `env:"RELEVANCE_FABRIC_OVERLAP" envDefault:"30"`
	NecklineOverlap    int `env:"RELEVANCE_NECKLINE_OVERLAP" envDefault:"20"`
	SleeveOverlap      int `env:"RELEVANCE_SLEEVE_OVERLAP" envDefault:"20"`
	StyleKeywordOverlap int `env:"RELEVANCE_STYLE_KEYWORD_OVERLAP" envDefault:"15"`
	ShortCodeExact     int `env:"RELEVANCE_SHORT_CODE_EXACT" envDefault:"100"`
	ShortCodePrefix    int `env:"RELEVANCE_SHORT_CODE_PREFIX" envDefault:"50"`
}

// Config is the full set of runtime knobs for the catalog search core.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	DatabaseURL   string `env:"DATABASE_URL,required"`
	DatabaseMaxConns int `env:"DATABASE_MAX_CONNS" envDefault:"10"`

	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	CachePrefix string `env:"CACHE_PREFIX" envDefault:"catalog"`

	// ElasticsearchURL, when set, enables the optional accelerated
	// full-text path (internal/catalog/esaccel). Empty disables it and
	// the Postgres tsvector path is used exclusively.
	ElasticsearchURL string `env:"ELASTICSEARCH_URL"`

	LookupRefreshInterval  time.Duration `env:"LOOKUP_REFRESH_INTERVAL" envDefault:"10m"`
	SynonymRefreshInterval time.Duration `env:"SYNONYM_REFRESH_INTERVAL" envDefault:"10m"`

	ListingCacheTTL     time.Duration `env:"CACHE_TTL_LISTING" envDefault:"60s"`
	AggregationCacheTTL time.Duration `env:"CACHE_TTL_AGGREGATIONS" envDefault:"30m"`
	CountCacheTTL       time.Duration `env:"CACHE_TTL_COUNT" envDefault:"2h"`
	PriceRangeCacheTTL  time.Duration `env:"CACHE_TTL_PRICE_RANGE" envDefault:"2h"`
	DetailCacheTTL      time.Duration `env:"CACHE_TTL_DETAIL" envDefault:"12h"`

	ListingDeadline time.Duration `env:"DEADLINE_LISTING" envDefault:"20s"`
	DetailDeadline  time.Duration `env:"DEADLINE_DETAIL" envDefault:"10s"`
	FacetDeadline   time.Duration `env:"DEADLINE_FACET_SUBQUERY" envDefault:"15s"`
	LookupDeadline  time.Duration `env:"DEADLINE_LOOKUP_REFRESH" envDefault:"5s"`

	FacetFanOutLimit int  `env:"FACET_FANOUT_LIMIT" envDefault:"12"`
	FacetCrossFilter bool `env:"FACET_CROSS_FILTER" envDefault:"true"`

	DefaultPageLimit int `env:"DEFAULT_PAGE_LIMIT" envDefault:"24"`
	MaxPageLimit     int `env:"MAX_PAGE_LIMIT" envDefault:"200"`
	StrictOverfetchMultiplier int `env:"STRICT_OVERFETCH_MULTIPLIER" envDefault:"3"`
	StrictOverfetchCap        int `env:"STRICT_OVERFETCH_CAP" envDefault:"200"`

	Weights RelevanceWeights
}

// Load reads an optional .env file (ignored if absent) then parses
// environment variables into a Config using struct tags.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
