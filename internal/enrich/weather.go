// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/layover-engine/pkg/types"
)

// weatherAPIBase is the Open-Meteo forecast endpoint. Declared as a var so
// tests can substitute an httptest server.
var weatherAPIBase = "https://api.open-meteo.com/v1/forecast"

// WeatherProvider supplies current conditions for a coordinate pair.
type WeatherProvider interface {
	Forecast(ctx context.Context, lat, lng float64) (types.WeatherSnapshot, error)
}

// OpenMeteoWeather fetches current conditions from the Open-Meteo API, which
// needs no API key.
type OpenMeteoWeather struct {
	Client *http.Client
	Config types.EnrichmentConfig
}

type openMeteoResponse struct {
	Current struct {
		Temperature2M float64 `json:"temperature_2m"`
		Precipitation float64 `json:"precipitation"`
		WindSpeed10M  float64 `json:"wind_speed_10m"`
		Visibility    float64 `json:"visibility"` // metres
		WeatherCode   int     `json:"weather_code"`
	} `json:"current"`
}

// Forecast returns a snapshot of current conditions at the coordinates.
func (w *OpenMeteoWeather) Forecast(ctx context.Context, lat, lng float64) (types.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', 4, 64))
	q.Set("current", "temperature_2m,precipitation,wind_speed_10m,visibility,weather_code")
	q.Set("wind_speed_unit", "kmh")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, weatherAPIBase+"?"+q.Encode(), nil)
	if err != nil {
		return types.WeatherSnapshot{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", w.Config.UserAgent)

	resp, err := w.Client.Do(req)
	if err != nil {
		return types.WeatherSnapshot{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.WeatherSnapshot{}, fmt.Errorf("weather API returned HTTP %d", resp.StatusCode)
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return types.WeatherSnapshot{}, fmt.Errorf("parsing weather response: %w", err)
	}

	return types.WeatherSnapshot{
		TemperatureC:    payload.Current.Temperature2M,
		PrecipitationMM: payload.Current.Precipitation,
		WindKMH:         payload.Current.WindSpeed10M,
		VisibilityKM:    payload.Current.Visibility / 1000,
		Condition:       conditionFromCode(payload.Current.WeatherCode),
	}, nil
}

// conditionFromCode maps WMO weather interpretation codes to short labels.
func conditionFromCode(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code <= 3:
		return "partly cloudy"
	case code <= 48:
		return "fog"
	case code <= 57:
		return "drizzle"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "rain showers"
	case code <= 86:
		return "snow showers"
	default:
		return "thunderstorm"
	}
}

// FallbackWeather is the neutral snapshot substituted when the live lookup
// fails. Mild values that neither reward nor punish the candidate.
func FallbackWeather() types.WeatherSnapshot {
	return types.WeatherSnapshot{
		TemperatureC: 20,
		VisibilityKM: 10,
		Condition:    "unknown",
		Fallback:     true,
	}
}
