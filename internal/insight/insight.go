// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package insight computes the descriptive analytics attached to a discovery
// result: display buckets for scored opportunities and aggregate market
// statistics. Everything here is derived in memory from the result set.
package insight

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pdiddy/layover-engine/pkg/types"
)

// Bucket boundaries in minutes. Quick explore is the 2-5 hour window;
// anything longer is an extended stay.
const (
	quickExploreMin = 120
	quickExploreMax = 300
)

// Buckets partitions scored opportunities into display groups. A city appears
// at most once per bucket, in the order the opportunities are ranked.
func Buckets(opportunities []types.EnrichedLayover) types.LayoverBuckets {
	var b types.LayoverBuckets
	seenWeather := map[string]bool{}
	seenQuick := map[string]bool{}
	seenExtended := map[string]bool{}

	for _, o := range opportunities {
		city := o.Layover.City
		if city == "" {
			continue
		}

		if o.Transit.CanLeaveAirport && !o.Weather.Fallback && !o.Weather.Severe() && !seenWeather[city] {
			b.WeatherFriendly = append(b.WeatherFriendly, city)
			seenWeather[city] = true
		}

		d := o.Layover.DurationMinutes
		switch {
		case d >= quickExploreMin && d <= quickExploreMax:
			if !seenQuick[city] {
				b.QuickExplore = append(b.QuickExplore, city)
				seenQuick[city] = true
			}
		case d > quickExploreMax:
			if !seenExtended[city] {
				b.ExtendedStay = append(b.ExtendedStay, city)
				seenExtended[city] = true
			}
		}
	}
	return b
}

// Market computes aggregate statistics over the deduplicated offers and
// scored opportunities. providerErrors feeds the availability notes.
func Market(offers []types.Offer, opportunities []types.EnrichedLayover, departure time.Time, providerErrors []string) types.MarketInsights {
	m := types.MarketInsights{
		SeasonalMultiplier: seasonalMultiplier(departure.Month()),
	}

	if len(offers) > 0 {
		m.Currency = offers[0].Price.Currency
		m.MinPrice = offers[0].Price.Total
		m.MaxPrice = offers[0].Price.Total
		sum := 0.0
		for _, o := range offers {
			p := o.Price.Total
			sum += p
			if p < m.MinPrice {
				m.MinPrice = p
			}
			if p > m.MaxPrice {
				m.MaxPrice = p
			}
		}
		m.AveragePrice = sum / float64(len(offers))
		m.PriceConfidence = priceConfidence(offers, m.AveragePrice)
	}

	if len(opportunities) > 0 {
		total := 0
		counts := map[string]int{}
		for _, o := range opportunities {
			total += o.Layover.DurationMinutes
			if o.Layover.City != "" {
				counts[o.Layover.City]++
			}
		}
		m.AverageLayoverMinutes = total / len(opportunities)
		m.PopularCities = rankCities(counts)
	}

	switch {
	case len(providerErrors) > 0 && len(offers) == 0:
		m.Notes = append(m.Notes, "all flight providers unavailable; no market data for this search")
	case len(providerErrors) > 0:
		m.Notes = append(m.Notes,
			fmt.Sprintf("%d provider(s) unavailable; statistics cover partial inventory", len(providerErrors)))
	}

	return m
}

// priceConfidence maps the price spread to a 0-1 indicator: tight spreads on
// decent sample sizes score high. Uses the coefficient of variation, damped
// when fewer than five offers were seen.
func priceConfidence(offers []types.Offer, mean float64) float64 {
	if mean <= 0 || len(offers) == 0 {
		return 0
	}
	variance := 0.0
	for _, o := range offers {
		d := o.Price.Total - mean
		variance += d * d
	}
	variance /= float64(len(offers))
	cv := math.Sqrt(variance) / mean

	confidence := 1 - cv
	if confidence < 0 {
		confidence = 0
	}
	sample := math.Min(1, float64(len(offers))/5)
	return math.Round(confidence*sample*100) / 100
}

// rankCities orders cities by descending frequency, alphabetical on ties.
func rankCities(counts map[string]int) []types.CityCount {
	out := make([]types.CityCount, 0, len(counts))
	for city, n := range counts {
		out = append(out, types.CityCount{City: city, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].City < out[j].City
	})
	return out
}

// seasonalMultiplier scales expected prices by travel month. Peak summer and
// the December holidays run hot; deep winter shoulder months run cold.
func seasonalMultiplier(month time.Month) float64 {
	switch month {
	case time.July, time.December:
		return 1.3
	case time.June, time.August:
		return 1.2
	case time.January, time.February, time.November:
		return 0.85
	default:
		return 1.0
	}
}
