// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/layover-engine/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.CatalogConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBuiltinSeedAirportLookup(t *testing.T) {
	s := openTestStore(t)

	a, err := s.Airport(context.Background(), "doh")
	require.NoError(t, err)

	assert.Equal(t, "DOH", a.Code)
	assert.Equal(t, "Doha", a.City)
	assert.Equal(t, "Qatar", a.Country)
	assert.InDelta(t, 25.2731, a.Latitude, 0.001)
	assert.True(t, a.Amenities.Lounges)
	assert.False(t, a.VisaRequired)
	assert.Greater(t, a.SafetyRating, 4.0)
}

func TestAirportNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Airport(context.Background(), "XXX")
	assert.Error(t, err)
}

func TestActivitiesOrderedByRating(t *testing.T) {
	s := openTestStore(t)

	acts, err := s.Activities(context.Background(), "Doha")
	require.NoError(t, err)
	require.NotEmpty(t, acts)

	for i := 1; i < len(acts); i++ {
		assert.GreaterOrEqual(t, acts[i-1].Rating, acts[i].Rating)
	}
}

func TestActivitiesUnknownCityIsEmpty(t *testing.T) {
	s := openTestStore(t)

	acts, err := s.Activities(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Empty(t, acts)
}

func TestApplyUpsertsExistingRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seed := Seed{
		Airports: []Airport{{
			Code: "DOH", City: "Doha", Country: "Qatar",
			TransitMode: "taxi", TransitMinutes: 35, SafetyRating: 4.0,
		}},
		Activities: []CityActivity{
			{City: "Doha", Activity: types.Activity{Name: "Souq Waqif walking tour", Category: "culture", Rating: 4.9, DurationMinutes: 100}},
		},
	}
	require.NoError(t, s.Apply(ctx, seed))

	a, err := s.Airport(ctx, "DOH")
	require.NoError(t, err)
	assert.Equal(t, "taxi", a.TransitMode)
	assert.Equal(t, 35, a.TransitMinutes)

	acts, err := s.Activities(ctx, "Doha")
	require.NoError(t, err)
	found := false
	for _, act := range acts {
		if act.Name == "Souq Waqif walking tour" {
			found = true
			assert.InDelta(t, 4.9, act.Rating, 0.001)
		}
	}
	assert.True(t, found)
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	data := `airports:
  - code: txl
    city: Berlin
    country: Germany
    latitude: 52.55
    longitude: 13.28
    transit_mode: bus
    transit_minutes: 30
    safety_rating: 4.1
    amenities:
      wifi: true
      restaurants: true
activities:
  - city: Berlin
    name: Museum Island
    category: culture
    indoor: true
    rating: 4.7
    duration_minutes: 180
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	seed, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, seed.Airports, 1)
	require.Len(t, seed.Activities, 1)
	assert.Equal(t, "Berlin", seed.Airports[0].City)
	assert.True(t, seed.Airports[0].Amenities.WiFi)
	assert.Equal(t, "Museum Island", seed.Activities[0].Name)
	assert.True(t, seed.Activities[0].Indoor)

	s := openTestStore(t)
	require.NoError(t, s.Apply(context.Background(), seed))
	a, err := s.Airport(context.Background(), "TXL")
	require.NoError(t, err)
	assert.Equal(t, "Berlin", a.City)
}

func TestLoadSeedFileMissing(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFileBackedStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	s, err := NewStore(types.CatalogConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, s.Apply(context.Background(), BuiltinSeed()))
	require.NoError(t, s.Close())

	reopened, err := NewStore(types.CatalogConfig{Path: path})
	require.NoError(t, err)
	defer reopened.Close()

	a, err := reopened.Airport(context.Background(), "SIN")
	require.NoError(t, err)
	assert.Equal(t, "Singapore", a.City)
}
