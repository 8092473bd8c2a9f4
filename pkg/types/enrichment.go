// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// WeatherSnapshot is the current-conditions view attached to a layover.
// A snapshot with Fallback set was substituted after a lookup failure and
// carries neutral, outdoor-friendly values.
type WeatherSnapshot struct {
	// TemperatureC is the air temperature in degrees Celsius.
	TemperatureC float64 `json:"temperature_c" yaml:"temperature_c"`

	// PrecipitationMM is the precipitation over the last hour in millimetres.
	PrecipitationMM float64 `json:"precipitation_mm" yaml:"precipitation_mm"`

	// WindKMH is the sustained wind speed in km/h.
	WindKMH float64 `json:"wind_kmh" yaml:"wind_kmh"`

	// VisibilityKM is the horizontal visibility in kilometres.
	VisibilityKM float64 `json:"visibility_km" yaml:"visibility_km"`

	// Condition is a short descriptor (e.g. "clear", "rain", "fog").
	Condition string `json:"condition" yaml:"condition"`

	// Fallback marks a substituted default snapshot.
	Fallback bool `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// Severe reports whether conditions are bad enough to keep a traveler indoors.
func (w WeatherSnapshot) Severe() bool {
	return w.PrecipitationMM >= 5 || w.WindKMH >= 50 || w.TemperatureC <= -5 || w.TemperatureC >= 40
}

// TransitAnalysis reports whether a traveler can usefully leave the airport
// during the connection window.
type TransitAnalysis struct {
	// CanLeaveAirport is true when the window leaves meaningful time in the city
	// after transit, immigration, and re-boarding buffers.
	CanLeaveAirport bool `json:"can_leave_airport" yaml:"can_leave_airport"`

	// MinutesInCity is the usable time in the city, zero when CanLeaveAirport is false.
	MinutesInCity int `json:"minutes_in_city" yaml:"minutes_in_city"`

	// Mode is the recommended transit mode into the city (e.g. "metro", "taxi").
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`

	// RoundTripMinutes is the airport-city-airport travel time.
	RoundTripMinutes int `json:"round_trip_minutes" yaml:"round_trip_minutes"`

	// Note is an optional human-readable caveat.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`

	// Fallback marks a substituted default analysis.
	Fallback bool `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// AmenitySummary lists airport comfort facilities used by the amenity sub-score.
type AmenitySummary struct {
	WiFi             bool `json:"wifi" yaml:"wifi"`
	Lounges          bool `json:"lounges" yaml:"lounges"`
	Showers          bool `json:"showers" yaml:"showers"`
	SleepingAreas    bool `json:"sleeping_areas" yaml:"sleeping_areas"`
	Restaurants      bool `json:"restaurants" yaml:"restaurants"`
	Shopping         bool `json:"shopping" yaml:"shopping"`
	Spa              bool `json:"spa" yaml:"spa"`
	CurrencyExchange bool `json:"currency_exchange" yaml:"currency_exchange"`
	MedicalCenter    bool `json:"medical_center" yaml:"medical_center"`
	ChildrenArea     bool `json:"children_area" yaml:"children_area"`
}

// Activity is one curated thing to do near the layover city.
type Activity struct {
	// Name is the display name (e.g. "Souq Waqif walking tour").
	Name string `json:"name" yaml:"name"`

	// Category groups the activity (e.g. "culture", "food", "nature").
	Category string `json:"category" yaml:"category"`

	// Indoor marks activities that work in bad weather.
	Indoor bool `json:"indoor" yaml:"indoor"`

	// Rating is the curator rating on a 0-5 scale.
	Rating float64 `json:"rating" yaml:"rating"`

	// DurationMinutes is the typical time the activity takes.
	DurationMinutes int `json:"duration_minutes" yaml:"duration_minutes"`
}

// Score is the deterministic desirability rating of an enriched layover.
type Score struct {
	// Total is the weighted sum of Breakdown, in [0,1], rounded to one decimal.
	Total float64 `json:"total" yaml:"total"`

	// Breakdown maps sub-score names (feasibility, experience, weather,
	// amenities, safety, cost, visa) to values in [0,1].
	Breakdown map[string]float64 `json:"breakdown" yaml:"breakdown"`

	// Recommendation is a short human-readable verdict.
	Recommendation string `json:"recommendation" yaml:"recommendation"`

	// Insights lists advisory and warning strings derived from the sub-scores.
	Insights []string `json:"insights,omitempty" yaml:"insights,omitempty"`
}

// EnrichedLayover is a raw candidate plus external context and its score.
// Read-only once the enrichment pipeline produces it.
type EnrichedLayover struct {
	Layover Layover `json:"layover" yaml:"layover"`

	Weather WeatherSnapshot `json:"weather" yaml:"weather"`

	Transit TransitAnalysis `json:"transit" yaml:"transit"`

	Amenities AmenitySummary `json:"amenities" yaml:"amenities"`

	// Activities lists weather-matched curated activities for the city.
	Activities []Activity `json:"activities,omitempty" yaml:"activities,omitempty"`

	// SafetyRating is the external safety rating on a 0-5 scale.
	SafetyRating float64 `json:"safety_rating" yaml:"safety_rating"`

	// VisaRequired is true when the layover country requires a transit visa.
	VisaRequired bool `json:"visa_required" yaml:"visa_required"`

	Score Score `json:"score" yaml:"score"`
}
