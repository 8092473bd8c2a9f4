package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/layover-engine/internal/cache"
	"github.com/pdiddy/layover-engine/internal/catalog"
	"github.com/pdiddy/layover-engine/internal/engine"
	"github.com/pdiddy/layover-engine/internal/httputil"
	"github.com/pdiddy/layover-engine/internal/provider"
	"github.com/pdiddy/layover-engine/pkg/types"
)

// loadPipelineConfig builds the pipeline configuration from viper with
// defaults applied. API keys come from .secrets/ unless overridden in the
// config file.
func loadPipelineConfig() (types.PipelineConfig, error) {
	viper.SetDefault("providers.timeout", "15s")
	viper.SetDefault("providers.user_agent", "layover-engine/"+version)
	viper.SetDefault("providers.enable_amadeus", true)
	viper.SetDefault("providers.enable_duffel", true)
	viper.SetDefault("providers.enable_kiwi", true)
	viper.SetDefault("providers.max_retries", 1)
	viper.SetDefault("enrichment.timeout", "10s")
	viper.SetDefault("enrichment.user_agent", "layover-engine/"+version)
	viper.SetDefault("enrichment.weather_enabled", true)
	viper.SetDefault("enrichment.max_activities", 5)

	cfg := types.PipelineConfig{
		Providers: types.ProviderConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("providers.timeout"),
				UserAgent: viper.GetString("providers.user_agent"),
			},
			EnableAmadeus:     viper.GetBool("providers.enable_amadeus"),
			EnableDuffel:      viper.GetBool("providers.enable_duffel"),
			EnableKiwi:        viper.GetBool("providers.enable_kiwi"),
			AmadeusAPIKey:     viper.GetString("providers.amadeus_api_key"),
			DuffelAPIKey:      viper.GetString("providers.duffel_api_key"),
			KiwiAPIKey:        viper.GetString("providers.kiwi_api_key"),
			MaxRetries:        viper.GetInt("providers.max_retries"),
			RetryBaseDelay:    viper.GetDuration("providers.retry_base_delay"),
			RateLimitInterval: viper.GetDuration("providers.rate_limit_interval"),
			BreakerEnabled:    viper.GetBool("providers.breaker_enabled"),
			MaxOffers:         viper.GetInt("providers.max_offers"),
		},
		Layover: types.LayoverConfig{
			MinDurationMinutes: viper.GetInt("layover.min_duration_minutes"),
			MaxDurationMinutes: viper.GetInt("layover.max_duration_minutes"),
		},
		Enrichment: types.EnrichmentConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("enrichment.timeout"),
				UserAgent: viper.GetString("enrichment.user_agent"),
			},
			WeatherEnabled: viper.GetBool("enrichment.weather_enabled"),
			MaxActivities:  viper.GetInt("enrichment.max_activities"),
		},
		Scoring: types.ScoringConfig{
			SweetSpotMinMinutes: viper.GetInt("scoring.sweet_spot_min_minutes"),
			SweetSpotMaxMinutes: viper.GetInt("scoring.sweet_spot_max_minutes"),
		},
		Cache: types.CacheConfig{
			RedisAddr:     viper.GetString("cache.redis_addr"),
			RedisPassword: viper.GetString("cache.redis_password"),
			ResultTTL:     viper.GetDuration("cache.result_ttl"),
			InsightsTTL:   viper.GetDuration("cache.insights_ttl"),
		},
		Catalog: types.CatalogConfig{
			Path:     viper.GetString("catalog.path"),
			SeedFile: viper.GetString("catalog.seed_file"),
		},
	}

	if raw := viper.GetStringMap("scoring.weights"); len(raw) > 0 {
		weights := make(map[string]float64, len(raw))
		for name := range raw {
			weights[name] = viper.GetFloat64("scoring.weights." + name)
		}
		cfg.Scoring.Weights = weights
	}

	cfg.Providers.AmadeusAPIKey = secretDefault("amadeus-api-key", cfg.Providers.AmadeusAPIKey)
	cfg.Providers.DuffelAPIKey = secretDefault("duffel-api-key", cfg.Providers.DuffelAPIKey)
	cfg.Providers.KiwiAPIKey = secretDefault("kiwi-api-key", cfg.Providers.KiwiAPIKey)
	cfg.Cache.RedisPassword = secretDefault("redis-password", cfg.Cache.RedisPassword)

	if err := cfg.Scoring.Validate(); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("invalid scoring configuration: %w", err)
	}
	return cfg, nil
}

// buildProviders assembles the enabled adapters, each behind the configured
// decorators. An adapter without an API key is skipped with a warning rather
// than failing every search at runtime.
func buildProviders(cfg types.ProviderConfig, warnings io.Writer) []provider.FlightProvider {
	client := httputil.NewClient(cfg.Timeout)

	var out []provider.FlightProvider
	add := func(p provider.FlightProvider, key, name string) {
		if key == "" {
			fmt.Fprintf(warnings, "warning: %s enabled but no API key configured; skipping\n", name)
			return
		}
		if cfg.RateLimitInterval > 0 {
			p = provider.NewRateLimited(p, cfg.RateLimitInterval)
		}
		if cfg.BreakerEnabled {
			p = provider.NewBreaker(p)
		}
		out = append(out, p)
	}

	if cfg.EnableAmadeus {
		add(&provider.AmadeusProvider{Client: client, APIKey: cfg.AmadeusAPIKey, Config: cfg}, cfg.AmadeusAPIKey, "amadeus")
	}
	if cfg.EnableDuffel {
		add(&provider.DuffelProvider{Client: client, APIKey: cfg.DuffelAPIKey, Config: cfg}, cfg.DuffelAPIKey, "duffel")
	}
	if cfg.EnableKiwi {
		add(&provider.KiwiProvider{Client: client, APIKey: cfg.KiwiAPIKey, Config: cfg}, cfg.KiwiAPIKey, "kiwi")
	}
	return out
}

// buildEngine wires a ready-to-run engine from the configuration.
func buildEngine(cfg types.PipelineConfig, warnings io.Writer) (*engine.Engine, func(), error) {
	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return nil, nil, err
	}

	var c cache.Store
	closer := func() { store.Close() }
	if cfg.Cache.RedisAddr != "" {
		r := cache.NewRedis(cfg.Cache)
		c = r
		closer = func() {
			r.Close()
			store.Close()
		}
	} else {
		c = cache.NewMemory()
	}

	providers := buildProviders(cfg.Providers, warnings)
	return engine.New(providers, store, c, cfg, warnings), closer, nil
}

// parseDate parses a YYYY-MM-DD flag value.
func parseDate(value, flag string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", flag, value)
	}
	return t, nil
}
