// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the layover-engine pipeline:
// offers and segments as normalized by provider adapters, raw and enriched
// layover candidates, scores, discovery results, and per-stage configuration.
package types

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "layover-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ProviderConfig holds settings for the flight provider adapters and the
// aggregation stage.
type ProviderConfig struct {
	HTTPConfig `yaml:",inline"`

	// EnableAmadeus, EnableDuffel and EnableKiwi toggle individual adapters.
	EnableAmadeus bool `json:"enable_amadeus" yaml:"enable_amadeus"`
	EnableDuffel  bool `json:"enable_duffel" yaml:"enable_duffel"`
	EnableKiwi    bool `json:"enable_kiwi" yaml:"enable_kiwi"`

	// AmadeusAPIKey, DuffelAPIKey and KiwiAPIKey authenticate the adapters.
	// Usually loaded from .secrets/ rather than the config file.
	AmadeusAPIKey string `json:"amadeus_api_key,omitempty" yaml:"amadeus_api_key,omitempty"`
	DuffelAPIKey  string `json:"duffel_api_key,omitempty" yaml:"duffel_api_key,omitempty"`
	KiwiAPIKey    string `json:"kiwi_api_key,omitempty" yaml:"kiwi_api_key,omitempty"`

	// MaxRetries is the number of retry attempts per provider search beyond the
	// first call (default 1, i.e. two attempts total).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryBaseDelay is the starting backoff for provider retries (default 200ms).
	RetryBaseDelay time.Duration `json:"retry_base_delay" yaml:"retry_base_delay"`

	// RateLimitInterval is the minimum spacing between calls to one provider.
	// Zero disables rate limiting.
	RateLimitInterval time.Duration `json:"rate_limit_interval" yaml:"rate_limit_interval"`

	// BreakerEnabled wraps each adapter in a circuit breaker.
	BreakerEnabled bool `json:"breaker_enabled" yaml:"breaker_enabled"`

	// MaxOffers caps the aggregated offer list. Zero means no cap.
	MaxOffers int `json:"max_offers" yaml:"max_offers"`
}

// LayoverConfig holds the viability window for the extraction stage.
type LayoverConfig struct {
	// MinDurationMinutes is the shortest operationally viable layover (default 120).
	MinDurationMinutes int `json:"min_duration_minutes" yaml:"min_duration_minutes"`

	// MaxDurationMinutes is the longest layover worth presenting (default 1440).
	MaxDurationMinutes int `json:"max_duration_minutes" yaml:"max_duration_minutes"`
}

// Window returns the configured viability bounds with defaults applied and
// per-request overrides taking precedence.
func (c LayoverConfig) Window(minOverride, maxOverride int) (int, int) {
	min, max := c.MinDurationMinutes, c.MaxDurationMinutes
	if min <= 0 {
		min = 120
	}
	if max <= 0 {
		max = 1440
	}
	if minOverride > 0 {
		min = minOverride
	}
	if maxOverride > 0 {
		max = maxOverride
	}
	return min, max
}

// EnrichmentConfig holds settings for the enrichment stage.
type EnrichmentConfig struct {
	HTTPConfig `yaml:",inline"`

	// WeatherEnabled toggles the live weather lookup. When false every
	// candidate receives the neutral fallback snapshot.
	WeatherEnabled bool `json:"weather_enabled" yaml:"weather_enabled"`

	// MaxActivities caps the activities attached per candidate (default 5).
	MaxActivities int `json:"max_activities" yaml:"max_activities"`
}

// ScoringConfig holds the weight table and feasibility thresholds for the
// scoring engine. Weights are deployment policy, not compiled-in constants.
type ScoringConfig struct {
	// Weights maps sub-score names to their share of the total. Must sum to 1.0.
	Weights map[string]float64 `json:"weights" yaml:"weights"`

	// SweetSpotMinMinutes and SweetSpotMaxMinutes bound the duration window
	// that scores full feasibility (defaults 180 and 480).
	SweetSpotMinMinutes int `json:"sweet_spot_min_minutes" yaml:"sweet_spot_min_minutes"`
	SweetSpotMaxMinutes int `json:"sweet_spot_max_minutes" yaml:"sweet_spot_max_minutes"`
}

// ScoreWeightNames lists the sub-scores every weight table must cover.
var ScoreWeightNames = []string{
	"feasibility", "experience", "weather", "amenities", "safety", "cost", "visa",
}

// DefaultWeights returns the shipped weight table. The split is an empirical
// product choice; deployments tune it via configuration.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"feasibility": 0.25,
		"experience":  0.20,
		"weather":     0.15,
		"amenities":   0.10,
		"safety":      0.10,
		"cost":        0.10,
		"visa":        0.10,
	}
}

// Validate checks that the weight table covers every sub-score, names no
// others, and sums to 1.0 within epsilon. An empty table is valid and means
// "use defaults".
func (c ScoringConfig) Validate() error {
	if len(c.Weights) == 0 {
		return nil
	}
	sum := 0.0
	for _, name := range ScoreWeightNames {
		w, ok := c.Weights[name]
		if !ok {
			return fmt.Errorf("scoring weights missing %q", name)
		}
		if w < 0 {
			return fmt.Errorf("scoring weight %q is negative", name)
		}
		sum += w
	}
	// A key outside the known set is almost certainly a typo; failing at load
	// beats silently dropping the weight it was meant to carry.
	for name := range c.Weights {
		if !slices.Contains(ScoreWeightNames, name) {
			return fmt.Errorf("unknown scoring weight %q", name)
		}
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("scoring weights sum to %.6f, want 1.0", sum)
	}
	return nil
}

// CacheConfig holds settings for the result cache.
type CacheConfig struct {
	// RedisAddr is the Redis backend address (e.g. "localhost:6379").
	// Empty selects the in-process cache.
	RedisAddr string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`

	// RedisPassword authenticates the Redis connection, when required.
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`

	// ResultTTL bounds cached full search responses (default 15m). Flight
	// availability and prices change quickly.
	ResultTTL time.Duration `json:"result_ttl" yaml:"result_ttl"`

	// InsightsTTL bounds cached market insights (default 2h). Trend data
	// changes slowly.
	InsightsTTL time.Duration `json:"insights_ttl" yaml:"insights_ttl"`
}

// ResultTTLOrDefault returns ResultTTL with the default applied.
func (c CacheConfig) ResultTTLOrDefault() time.Duration {
	if c.ResultTTL > 0 {
		return c.ResultTTL
	}
	return 15 * time.Minute
}

// InsightsTTLOrDefault returns InsightsTTL with the default applied.
func (c CacheConfig) InsightsTTLOrDefault() time.Duration {
	if c.InsightsTTL > 0 {
		return c.InsightsTTL
	}
	return 2 * time.Hour
}

// CatalogConfig holds settings for the airport/activity catalog store.
type CatalogConfig struct {
	// Path is the SQLite database path (e.g. "catalog/catalog.db").
	// Empty selects an in-memory database seeded with the built-in data.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// SeedFile is an optional YAML seed loaded by `layover-engine catalog seed`.
	SeedFile string `json:"seed_file,omitempty" yaml:"seed_file,omitempty"`
}

// PipelineConfig groups all stage configurations for the discovery pipeline.
type PipelineConfig struct {
	Providers  ProviderConfig   `json:"providers" yaml:"providers"`
	Layover    LayoverConfig    `json:"layover" yaml:"layover"`
	Enrichment EnrichmentConfig `json:"enrichment" yaml:"enrichment"`
	Scoring    ScoringConfig    `json:"scoring" yaml:"scoring"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
	Catalog    CatalogConfig    `json:"catalog" yaml:"catalog"`
}
