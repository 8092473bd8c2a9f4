// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich decorates raw layover candidates with external context:
// current weather, transit feasibility, airport amenities, safety and visa
// reference data, and curated activities. Every lookup degrades to a neutral
// fallback on failure; enrichment never discards a candidate.
package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/pdiddy/layover-engine/internal/catalog"
	"github.com/pdiddy/layover-engine/pkg/types"
)

// maxConcurrentCandidates bounds the per-search enrichment fan-out so a
// broad search cannot open hundreds of simultaneous upstream requests.
const maxConcurrentCandidates = 8

// neutralSafetyRating is assumed when no reference data exists for an airport.
const neutralSafetyRating = 3.0

// CatalogSource is the slice of the catalog store the pipeline reads.
type CatalogSource interface {
	Airport(ctx context.Context, code string) (catalog.Airport, error)
	Activities(ctx context.Context, city string) ([]types.Activity, error)
}

// Pipeline enriches candidates using pluggable collaborators. Collaborators
// are interfaces so tests and offline deployments can substitute stubs.
type Pipeline struct {
	Weather    WeatherProvider
	Transit    TransitProvider
	Experience ExperienceProvider
	Catalog    CatalogSource
	Config     types.EnrichmentConfig

	// Warnings receives one line per degraded lookup. Never nil after
	// NewPipeline; callers constructing a Pipeline literal must set it.
	Warnings io.Writer
}

// NewPipeline wires the default collaborators: live weather, catalog-backed
// transit and experiences.
func NewPipeline(client *http.Client, store CatalogSource, cfg types.EnrichmentConfig, warnings io.Writer) *Pipeline {
	return &Pipeline{
		Weather:    &OpenMeteoWeather{Client: client, Config: cfg},
		Transit:    &CatalogTransit{Catalog: store},
		Experience: &CatalogExperience{Catalog: store},
		Catalog:    store,
		Config:     cfg,
		Warnings:   warnings,
	}
}

// Enrich decorates every candidate concurrently, bounded to a fixed number of
// in-flight candidates. Output order matches input order regardless of which
// lookups finish first.
func (p *Pipeline) Enrich(ctx context.Context, candidates []types.Layover, params types.SearchParams) []types.EnrichedLayover {
	out := make([]types.EnrichedLayover, len(candidates))

	sem := make(chan struct{}, maxConcurrentCandidates)
	var wg sync.WaitGroup
	for i, cand := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, cand types.Layover) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					fmt.Fprintf(p.Warnings, "warning: enrichment for %s panicked: %v\n", cand.Airport, r)
					out[i] = types.EnrichedLayover{
						Layover:      cand,
						Weather:      FallbackWeather(),
						Transit:      FallbackTransit(cand.Airport),
						SafetyRating: neutralSafetyRating,
					}
				}
			}()
			out[i] = p.enrichOne(ctx, cand, params)
		}(i, cand)
	}
	wg.Wait()

	return out
}

// enrichOne runs the independent lookups for a single candidate in parallel,
// then the weather-dependent activity selection. Each lookup starts from its
// fallback value and is guarded against panics, so a broken collaborator
// degrades that one dimension instead of killing the process.
func (p *Pipeline) enrichOne(ctx context.Context, cand types.Layover, params types.SearchParams) types.EnrichedLayover {
	e := types.EnrichedLayover{
		Layover:      cand,
		Weather:      FallbackWeather(),
		Transit:      FallbackTransit(cand.Airport),
		SafetyRating: neutralSafetyRating,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go p.guard("weather lookup", &wg, func() {
		e.Weather = p.lookupWeather(ctx, cand)
	})

	wg.Add(1)
	go p.guard("transit analysis", &wg, func() {
		analysis, err := p.Transit.Analyze(ctx, cand, params.HasCheckedBaggage)
		if err != nil {
			fmt.Fprintf(p.Warnings, "warning: transit analysis for %s degraded: %v\n", cand.Airport, err)
			return
		}
		e.Transit = analysis
	})

	wg.Add(1)
	go p.guard("reference lookup", &wg, func() {
		ref, err := p.Catalog.Airport(ctx, cand.Airport)
		if err != nil {
			fmt.Fprintf(p.Warnings, "warning: no reference data for %s: %v\n", cand.Airport, err)
			return
		}
		e.Amenities = ref.Amenities
		e.SafetyRating = ref.SafetyRating
		e.VisaRequired = ref.VisaRequired
	})

	wg.Wait()

	activities, err := p.Experience.Suggest(ctx, cand.City, e.Weather, params.Interests, p.Config.MaxActivities)
	if err != nil {
		fmt.Fprintf(p.Warnings, "warning: activity lookup for %s degraded: %v\n", cand.City, err)
		activities = nil
	}
	e.Activities = activities

	return e
}

// guard runs f, converting a panic into a warning. The enriched candidate
// keeps its fallback value for that dimension.
func (p *Pipeline) guard(what string, wg *sync.WaitGroup, f func()) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(p.Warnings, "warning: %s panicked: %v\n", what, r)
		}
	}()
	f()
}

func (p *Pipeline) lookupWeather(ctx context.Context, cand types.Layover) types.WeatherSnapshot {
	if !p.Config.WeatherEnabled || p.Weather == nil {
		return FallbackWeather()
	}
	if cand.Latitude == 0 && cand.Longitude == 0 {
		return FallbackWeather()
	}
	snap, err := p.Weather.Forecast(ctx, cand.Latitude, cand.Longitude)
	if err != nil {
		fmt.Fprintf(p.Warnings, "warning: weather lookup for %s degraded: %v\n", cand.City, err)
		return FallbackWeather()
	}
	return snap
}
