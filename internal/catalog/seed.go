// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/layover-engine/pkg/types"
)

// Seed is the YAML-loadable shape of the catalog reference data.
type Seed struct {
	Airports   []Airport      `yaml:"airports"`
	Activities []CityActivity `yaml:"activities"`
}

// LoadSeedFile parses a YAML seed file.
func LoadSeedFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("reading seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return seed, nil
}

// BuiltinSeed returns the reference data shipped with the engine. It covers
// the hub airports the scoring and enrichment tests exercise; deployments
// extend it via a seed file.
func BuiltinSeed() Seed {
	full := types.AmenitySummary{
		WiFi: true, Lounges: true, Showers: true, SleepingAreas: true,
		Restaurants: true, Shopping: true, Spa: true,
		CurrencyExchange: true, MedicalCenter: true, ChildrenArea: true,
	}
	basic := types.AmenitySummary{
		WiFi: true, Restaurants: true, Shopping: true, CurrencyExchange: true,
	}

	return Seed{
		Airports: []Airport{
			{Code: "DOH", City: "Doha", Country: "Qatar", Latitude: 25.2731, Longitude: 51.6081,
				TransitMode: "metro", TransitMinutes: 25, SafetyRating: 4.6, Amenities: full},
			{Code: "DXB", City: "Dubai", Country: "United Arab Emirates", Latitude: 25.2532, Longitude: 55.3657,
				TransitMode: "metro", TransitMinutes: 20, SafetyRating: 4.5, Amenities: full},
			{Code: "IST", City: "Istanbul", Country: "Turkey", Latitude: 41.2753, Longitude: 28.7519,
				TransitMode: "metro", TransitMinutes: 45, SafetyRating: 3.8, VisaRequired: true, Amenities: full},
			{Code: "SIN", City: "Singapore", Country: "Singapore", Latitude: 1.3644, Longitude: 103.9915,
				TransitMode: "train", TransitMinutes: 30, SafetyRating: 4.9, Amenities: full},
			{Code: "AMS", City: "Amsterdam", Country: "Netherlands", Latitude: 52.3105, Longitude: 4.7683,
				TransitMode: "train", TransitMinutes: 15, SafetyRating: 4.4, Amenities: full},
			{Code: "FRA", City: "Frankfurt", Country: "Germany", Latitude: 50.0379, Longitude: 8.5622,
				TransitMode: "train", TransitMinutes: 12, SafetyRating: 4.3, Amenities: full},
			{Code: "ORD", City: "Chicago", Country: "United States", Latitude: 41.9742, Longitude: -87.9073,
				TransitMode: "train", TransitMinutes: 40, SafetyRating: 3.9, Amenities: basic},
			{Code: "KEF", City: "Reykjavik", Country: "Iceland", Latitude: 63.985, Longitude: -22.6056,
				TransitMode: "bus", TransitMinutes: 50, SafetyRating: 4.8, Amenities: basic},
			{Code: "HND", City: "Tokyo", Country: "Japan", Latitude: 35.5494, Longitude: 139.7798,
				TransitMode: "train", TransitMinutes: 25, SafetyRating: 4.8, VisaRequired: true, Amenities: full},
		},
		Activities: []CityActivity{
			{City: "Doha", Activity: types.Activity{Name: "Souq Waqif walking tour", Category: "culture", Rating: 4.6, DurationMinutes: 120}},
			{City: "Doha", Activity: types.Activity{Name: "Museum of Islamic Art", Category: "culture", Indoor: true, Rating: 4.8, DurationMinutes: 150}},
			{City: "Doha", Activity: types.Activity{Name: "Corniche waterfront stroll", Category: "nature", Rating: 4.3, DurationMinutes: 90}},
			{City: "Dubai", Activity: types.Activity{Name: "Dubai Mall & fountain show", Category: "shopping", Indoor: true, Rating: 4.5, DurationMinutes: 180}},
			{City: "Dubai", Activity: types.Activity{Name: "Old Dubai abra crossing", Category: "culture", Rating: 4.4, DurationMinutes: 120}},
			{City: "Istanbul", Activity: types.Activity{Name: "Hagia Sophia visit", Category: "culture", Indoor: true, Rating: 4.9, DurationMinutes: 120}},
			{City: "Istanbul", Activity: types.Activity{Name: "Grand Bazaar", Category: "shopping", Indoor: true, Rating: 4.5, DurationMinutes: 150}},
			{City: "Istanbul", Activity: types.Activity{Name: "Bosphorus ferry ride", Category: "nature", Rating: 4.7, DurationMinutes: 180}},
			{City: "Singapore", Activity: types.Activity{Name: "Gardens by the Bay", Category: "nature", Rating: 4.8, DurationMinutes: 180}},
			{City: "Singapore", Activity: types.Activity{Name: "Jewel Changi waterfall", Category: "nature", Indoor: true, Rating: 4.7, DurationMinutes: 90}},
			{City: "Singapore", Activity: types.Activity{Name: "Hawker centre food crawl", Category: "food", Indoor: true, Rating: 4.6, DurationMinutes: 120}},
			{City: "Amsterdam", Activity: types.Activity{Name: "Canal boat cruise", Category: "nature", Rating: 4.5, DurationMinutes: 90}},
			{City: "Amsterdam", Activity: types.Activity{Name: "Rijksmuseum", Category: "culture", Indoor: true, Rating: 4.8, DurationMinutes: 180}},
			{City: "Frankfurt", Activity: types.Activity{Name: "Römerberg old town walk", Category: "culture", Rating: 4.2, DurationMinutes: 90}},
			{City: "Chicago", Activity: types.Activity{Name: "Art Institute of Chicago", Category: "culture", Indoor: true, Rating: 4.8, DurationMinutes: 180}},
			{City: "Reykjavik", Activity: types.Activity{Name: "Blue Lagoon soak", Category: "nature", Rating: 4.7, DurationMinutes: 240}},
			{City: "Tokyo", Activity: types.Activity{Name: "Tsukiji outer market", Category: "food", Rating: 4.6, DurationMinutes: 120}},
			{City: "Tokyo", Activity: types.Activity{Name: "teamLab Planets", Category: "culture", Indoor: true, Rating: 4.7, DurationMinutes: 150}},
		},
	}
}
