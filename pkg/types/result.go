// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"
)

// SearchParams describes one layover discovery request.
type SearchParams struct {
	// Origin and Destination are IATA airport codes.
	Origin      string `json:"origin" yaml:"origin"`
	Destination string `json:"destination" yaml:"destination"`

	// DepartureDate is the outbound travel date.
	DepartureDate time.Time `json:"departure_date" yaml:"departure_date"`

	// ReturnDate is the optional inbound travel date. Zero for one-way.
	ReturnDate time.Time `json:"return_date,omitempty" yaml:"return_date,omitempty"`

	// Passengers is the traveling party size (default 1).
	Passengers int `json:"passengers" yaml:"passengers"`

	// CabinClass is the requested cabin (e.g. "economy"). Empty means any.
	CabinClass string `json:"cabin_class,omitempty" yaml:"cabin_class,omitempty"`

	// MaxConnections caps the number of stops per direction. Zero means provider default.
	MaxConnections int `json:"max_connections,omitempty" yaml:"max_connections,omitempty"`

	// PreferLayovers requests itineraries with usable connection windows.
	PreferLayovers bool `json:"prefer_layovers" yaml:"prefer_layovers"`

	// MinLayoverMinutes and MaxLayoverMinutes override the viability window.
	// Zero values fall back to the configured defaults.
	MinLayoverMinutes int `json:"min_layover_minutes,omitempty" yaml:"min_layover_minutes,omitempty"`
	MaxLayoverMinutes int `json:"max_layover_minutes,omitempty" yaml:"max_layover_minutes,omitempty"`

	// Interests lists traveler interests matched against activity categories.
	Interests []string `json:"interests,omitempty" yaml:"interests,omitempty"`

	// HasCheckedBaggage affects the transit feasibility buffer.
	HasCheckedBaggage bool `json:"has_checked_baggage" yaml:"has_checked_baggage"`
}

// RoundTrip reports whether the request includes a return leg.
func (p SearchParams) RoundTrip() bool { return !p.ReturnDate.IsZero() }

// Normalize upper-cases airport codes and lower-cases the cabin class so that
// equivalent requests produce identical cache keys.
func (p SearchParams) Normalize() SearchParams {
	p.Origin = strings.ToUpper(strings.TrimSpace(p.Origin))
	p.Destination = strings.ToUpper(strings.TrimSpace(p.Destination))
	p.CabinClass = strings.ToLower(strings.TrimSpace(p.CabinClass))
	if p.Passengers <= 0 {
		p.Passengers = 1
	}
	sorted := make([]string, 0, len(p.Interests))
	for _, in := range p.Interests {
		in = strings.ToLower(strings.TrimSpace(in))
		if in != "" {
			sorted = append(sorted, in)
		}
	}
	p.Interests = sorted
	return p
}

// CityCount pairs a city with how often it appears in a result set.
type CityCount struct {
	City  string `json:"city" yaml:"city"`
	Count int    `json:"count" yaml:"count"`
}

// MarketInsights holds aggregate market statistics for a result set. It is
// descriptive, computed purely in memory, and cached with a longer TTL than
// full search results because trend data changes slowly.
type MarketInsights struct {
	// AveragePrice is the mean total offer price.
	AveragePrice float64 `json:"average_price" yaml:"average_price"`

	// PriceConfidence is a 0-1 indicator of how tight the price spread is.
	PriceConfidence float64 `json:"price_confidence" yaml:"price_confidence"`

	// MinPrice and MaxPrice are the observed total price bounds.
	MinPrice float64 `json:"min_price" yaml:"min_price"`
	MaxPrice float64 `json:"max_price" yaml:"max_price"`

	// Currency is the currency of the price fields.
	Currency string `json:"currency,omitempty" yaml:"currency,omitempty"`

	// AverageLayoverMinutes is the mean viable layover duration.
	AverageLayoverMinutes int `json:"average_layover_minutes" yaml:"average_layover_minutes"`

	// PopularCities lists layover cities by descending frequency.
	PopularCities []CityCount `json:"popular_cities,omitempty" yaml:"popular_cities,omitempty"`

	// SeasonalMultiplier scales the average price for the travel month.
	SeasonalMultiplier float64 `json:"seasonal_multiplier" yaml:"seasonal_multiplier"`

	// Notes carries availability caveats (e.g. all providers degraded).
	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// LayoverBuckets partitions scored opportunities into named display groups.
type LayoverBuckets struct {
	// WeatherFriendly lists cities whose conditions favor going outside.
	WeatherFriendly []string `json:"weather_friendly,omitempty" yaml:"weather_friendly,omitempty"`

	// QuickExplore lists cities with a 2-5 hour window.
	QuickExplore []string `json:"quick_explore,omitempty" yaml:"quick_explore,omitempty"`

	// ExtendedStay lists cities with more than 5 hours on the ground.
	ExtendedStay []string `json:"extended_stay,omitempty" yaml:"extended_stay,omitempty"`
}

// DiscoveryResult is the top-level response of one discovery call. It is
// created fresh per search, never mutated, and safe to serialize directly.
type DiscoveryResult struct {
	// SearchID uniquely identifies this discovery run.
	SearchID string `json:"search_id" yaml:"search_id"`

	// Offers is the deduplicated offer list, ascending by total price.
	Offers []Offer `json:"offers" yaml:"offers"`

	// Opportunities is the enriched, scored layover list, descending by score.
	Opportunities []EnrichedLayover `json:"opportunities" yaml:"opportunities"`

	// TotalCandidates counts raw layover candidates before viability filtering.
	TotalCandidates int `json:"total_candidates" yaml:"total_candidates"`

	// ElapsedMS is the wall-clock search time in milliseconds.
	ElapsedMS int64 `json:"elapsed_ms" yaml:"elapsed_ms"`

	// ProviderCounts maps provider name to offers contributed after dedup input.
	ProviderCounts map[string]int `json:"provider_counts" yaml:"provider_counts"`

	// ProviderErrors lists per-provider failures as "name: message" strings.
	ProviderErrors []string `json:"provider_errors,omitempty" yaml:"provider_errors,omitempty"`

	// DuplicatesRemoved counts offers discarded by deduplication.
	DuplicatesRemoved int `json:"duplicates_removed" yaml:"duplicates_removed"`

	Buckets LayoverBuckets `json:"buckets" yaml:"buckets"`

	Market MarketInsights `json:"market" yaml:"market"`

	// FromCache is true when the response was served from the result cache.
	FromCache bool `json:"from_cache" yaml:"from_cache"`
}
