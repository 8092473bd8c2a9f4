// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/layover-engine/pkg/types"
)

// ExperienceProvider suggests activities for a layover city, matched to the
// weather and the traveler's interests.
type ExperienceProvider interface {
	Suggest(ctx context.Context, city string, weather types.WeatherSnapshot, interests []string, max int) ([]types.Activity, error)
}

// CatalogExperience suggests activities from the curated catalog.
type CatalogExperience struct {
	Catalog interface {
		Activities(ctx context.Context, city string) ([]types.Activity, error)
	}
}

// Suggest returns up to max activities for the city, best rated first. In
// severe weather only indoor activities are suggested, unless the city has
// none indoor at all. Interests, when given, filter by category.
func (e *CatalogExperience) Suggest(ctx context.Context, city string, weather types.WeatherSnapshot, interests []string, max int) ([]types.Activity, error) {
	all, err := e.Catalog.Activities(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("activities for %s: %w", city, err)
	}

	picked := filterByInterests(all, interests)
	if len(picked) == 0 {
		// Interests too narrow for this city: better to suggest something than nothing.
		picked = all
	}

	if weather.Severe() {
		indoor := make([]types.Activity, 0, len(picked))
		for _, a := range picked {
			if a.Indoor {
				indoor = append(indoor, a)
			}
		}
		if len(indoor) > 0 {
			picked = indoor
		}
	}

	if max <= 0 {
		max = 5
	}
	if len(picked) > max {
		picked = picked[:max]
	}
	return picked, nil
}

func filterByInterests(activities []types.Activity, interests []string) []types.Activity {
	if len(interests) == 0 {
		return activities
	}
	want := make(map[string]struct{}, len(interests))
	for _, i := range interests {
		want[strings.ToLower(strings.TrimSpace(i))] = struct{}{}
	}
	var out []types.Activity
	for _, a := range activities {
		if _, ok := want[strings.ToLower(a.Category)]; ok {
			out = append(out, a)
		}
	}
	return out
}
