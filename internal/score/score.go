// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score rates enriched layovers. Scoring is a pure function of its
// inputs: the same enriched candidate, market context, and weight table
// always produce the same score.
package score

import (
	"fmt"
	"math"

	"github.com/pdiddy/layover-engine/pkg/types"
)

// MarketContext supplies route-level price context for the cost sub-score.
type MarketContext struct {
	// AveragePrice is the mean offer price on the route, zero when unknown.
	AveragePrice float64

	Currency string
}

// Thresholds for the feasibility curve and recommendation verdicts.
const (
	feasibilityFloorMinutes = 120
	feasibilityTaperEnd     = 1440
	longLayoverMinutes      = 600

	transitBoost = 0.15
)

// Score rates one enriched layover against the weight table. An empty or nil
// weight table uses the defaults. The total is rounded to one decimal so
// presentation-layer equality is stable across platforms.
func Score(e types.EnrichedLayover, market MarketContext, cfg types.ScoringConfig) types.Score {
	weights := cfg.Weights
	if len(weights) == 0 {
		weights = types.DefaultWeights()
	}

	breakdown := map[string]float64{
		"feasibility": feasibility(e, cfg),
		"experience":  experience(e),
		"weather":     weather(e.Weather),
		"amenities":   amenities(e.Amenities),
		"safety":      clamp(e.SafetyRating / 5),
		"cost":        cost(e.Layover.OfferPrice, market),
		"visa":        visa(e.VisaRequired),
	}

	total := 0.0
	for _, name := range types.ScoreWeightNames {
		total += weights[name] * breakdown[name]
	}

	return types.Score{
		Total:          math.Round(total*10) / 10,
		Breakdown:      breakdown,
		Recommendation: recommendation(total),
		Insights:       insights(e),
	}
}

// feasibility rates how much usable time the window offers. Full marks inside
// the sweet spot; a ramp up from the operational floor; a taper beyond the
// sweet spot, because a 20-hour stop is a stay, not a layover. Being able to
// actually leave the airport earns a boost.
func feasibility(e types.EnrichedLayover, cfg types.ScoringConfig) float64 {
	sweetMin, sweetMax := cfg.SweetSpotMinMinutes, cfg.SweetSpotMaxMinutes
	if sweetMin <= 0 {
		sweetMin = 180
	}
	if sweetMax <= sweetMin {
		sweetMax = 480
	}

	d := float64(e.Layover.DurationMinutes)
	var base float64
	switch {
	case d < feasibilityFloorMinutes:
		base = 0
	case d < float64(sweetMin):
		base = 0.4 + 0.6*(d-feasibilityFloorMinutes)/float64(sweetMin-feasibilityFloorMinutes)
	case d <= float64(sweetMax):
		base = 1.0
	default:
		base = 1.0 - 0.6*(d-float64(sweetMax))/float64(feasibilityTaperEnd-sweetMax)
		if base < 0.4 {
			base = 0.4
		}
	}

	if e.Transit.CanLeaveAirport {
		base += transitBoost
	}
	return clamp(base)
}

// experience rates what there is to do. Quality times coverage, discounted
// heavily when the traveler cannot leave the airport to do any of it.
func experience(e types.EnrichedLayover) float64 {
	if len(e.Activities) == 0 {
		return 0.2
	}
	sum := 0.0
	for _, a := range e.Activities {
		sum += a.Rating
	}
	quality := sum / float64(len(e.Activities)) / 5
	coverage := math.Min(1, float64(len(e.Activities))/3)

	s := quality * coverage
	if !e.Transit.CanLeaveAirport {
		s *= 0.4
	}
	return clamp(s)
}

// weather rates current conditions. A fallback snapshot scores a flat neutral
// value rather than pretending the substituted numbers are observations.
func weather(w types.WeatherSnapshot) float64 {
	if w.Fallback {
		return 0.6
	}

	s := 1.0
	switch {
	case w.PrecipitationMM >= 5:
		s -= 0.4
	default:
		s -= w.PrecipitationMM * 0.04
	}
	switch {
	case w.WindKMH >= 50:
		s -= 0.3
	default:
		s -= w.WindKMH * 0.004
	}
	comfort := math.Abs(w.TemperatureC - 20)
	switch {
	case comfort > 15:
		s -= 0.3
	case comfort > 8:
		s -= 0.1
	}
	if w.VisibilityKM > 0 && w.VisibilityKM < 2 {
		s -= 0.2
	}
	return clamp(s)
}

func amenities(a types.AmenitySummary) float64 {
	present := 0
	for _, b := range []bool{
		a.WiFi, a.Lounges, a.Showers, a.SleepingAreas, a.Restaurants,
		a.Shopping, a.Spa, a.CurrencyExchange, a.MedicalCenter, a.ChildrenArea,
	} {
		if b {
			present++
		}
	}
	return float64(present) / 10
}

// cost rates the linked offer's price against the route average: full marks
// at 80% of average or below, zero at 150% or above, linear between. No
// market data scores neutral.
func cost(price float64, market MarketContext) float64 {
	if market.AveragePrice <= 0 || price <= 0 {
		return 0.5
	}
	ratio := price / market.AveragePrice
	switch {
	case ratio <= 0.8:
		return 1.0
	case ratio >= 1.5:
		return 0.0
	default:
		return clamp((1.5 - ratio) / 0.7)
	}
}

func visa(required bool) float64 {
	if required {
		return 0.3
	}
	return 1.0
}

func recommendation(total float64) string {
	switch {
	case total >= 0.8:
		return "excellent layover opportunity"
	case total >= 0.6:
		return "good layover opportunity"
	case total >= 0.4:
		return "workable, with caveats"
	default:
		return "better to minimize this connection"
	}
}

// insights derives the advisory strings surfaced alongside the score.
func insights(e types.EnrichedLayover) []string {
	var out []string

	if e.Transit.CanLeaveAirport {
		out = append(out, fmt.Sprintf("around %d minutes free in %s — enough to explore the city",
			e.Transit.MinutesInCity, e.Layover.City))
	} else {
		out = append(out, "not enough time to leave the airport; plan around airside amenities")
	}

	if e.Weather.Severe() {
		out = append(out, fmt.Sprintf("severe weather in %s (%s); favor indoor activities",
			e.Layover.City, e.Weather.Condition))
	}

	if e.Layover.DurationMinutes > longLayoverMinutes {
		out = append(out, "overnight-length window; consider an airport hotel")
	}

	if e.VisaRequired {
		out = append(out, fmt.Sprintf("transit visa required for %s", e.Layover.Country))
	}

	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
