// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine orchestrates the discovery pipeline: cache lookup, provider
// aggregation, layover extraction, enrichment, scoring, analytics, and cache
// write-back. It owns the degradation policy — a discovery call returns a
// well-formed result even when every upstream dependency fails.
package engine

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/layover-engine/internal/aggregate"
	"github.com/pdiddy/layover-engine/internal/cache"
	"github.com/pdiddy/layover-engine/internal/catalog"
	"github.com/pdiddy/layover-engine/internal/enrich"
	"github.com/pdiddy/layover-engine/internal/httputil"
	"github.com/pdiddy/layover-engine/internal/insight"
	"github.com/pdiddy/layover-engine/internal/layover"
	"github.com/pdiddy/layover-engine/internal/provider"
	"github.com/pdiddy/layover-engine/internal/score"
	"github.com/pdiddy/layover-engine/pkg/types"
)

// CatalogSource is the slice of the catalog store the engine and its stages
// read. Satisfied by *catalog.Store.
type CatalogSource interface {
	Airport(ctx context.Context, code string) (catalog.Airport, error)
	Activities(ctx context.Context, city string) ([]types.Activity, error)
}

// Engine runs layover discovery. Construct with New or assemble the fields
// directly in tests.
type Engine struct {
	Providers []provider.FlightProvider
	Catalog   CatalogSource
	Enricher  *enrich.Pipeline
	Cache     cache.Store
	Config    types.PipelineConfig

	// Warnings receives degradation notices from every stage.
	Warnings io.Writer
}

// New assembles an engine with the default collaborators for the given
// configuration. The caller supplies the providers (already decorated with
// rate limiting or breakers as configured) and an open catalog store.
func New(providers []provider.FlightProvider, store CatalogSource, c cache.Store, cfg types.PipelineConfig, warnings io.Writer) *Engine {
	httpClient := httputil.NewClient(cfg.Enrichment.Timeout)
	return &Engine{
		Providers: providers,
		Catalog:   store,
		Enricher:  enrich.NewPipeline(httpClient, store, cfg.Enrichment, warnings),
		Cache:     c,
		Config:    cfg,
		Warnings:  warnings,
	}
}

// Discover runs the full pipeline for one search. It never returns an error:
// provider failures degrade to partial results, enrichment failures degrade
// to fallback context, and a panic anywhere in the pipeline degrades to an
// empty well-formed result.
func (e *Engine) Discover(ctx context.Context, params types.SearchParams) (result types.DiscoveryResult) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(e.Warnings, "warning: discovery pipeline panicked: %v\n", r)
			result = types.DiscoveryResult{
				SearchID:       uuid.NewString(),
				ProviderCounts: map[string]int{},
				Market:         types.MarketInsights{Notes: []string{"internal error; no results for this search"}},
			}
		}
	}()

	params = params.Normalize()
	searchKey := cache.SearchKey(params)

	// Cache errors are treated as misses; a flaky cache must not fail a search.
	if e.Cache != nil {
		var cached types.DiscoveryResult
		if hit, err := e.Cache.Get(ctx, searchKey, &cached); err == nil && hit {
			cached.FromCache = true
			return cached
		}
	}

	start := time.Now()

	agg := aggregate.SearchAll(ctx, e.Providers, params, e.Config.Providers, e.Warnings)

	ext := layover.Extract(ctx, agg.Offers, e.Config.Layover,
		params.MinLayoverMinutes, params.MaxLayoverMinutes, e.Catalog)

	enriched := e.Enricher.Enrich(ctx, ext.Candidates, params)

	market := insight.Market(agg.Offers, enriched, params.DepartureDate, agg.ProviderErrors)
	marketCtx := score.MarketContext{AveragePrice: market.AveragePrice, Currency: market.Currency}
	for i := range enriched {
		enriched[i].Score = score.Score(enriched[i], marketCtx, e.Config.Scoring)
	}
	rank(enriched)

	result = types.DiscoveryResult{
		SearchID:          uuid.NewString(),
		Offers:            agg.Offers,
		Opportunities:     enriched,
		TotalCandidates:   ext.TotalCandidates,
		ElapsedMS:         time.Since(start).Milliseconds(),
		ProviderCounts:    agg.ProviderCounts,
		ProviderErrors:    agg.ProviderErrors,
		DuplicatesRemoved: agg.DuplicatesRemoved,
		Buckets:           insight.Buckets(enriched),
		Market:            market,
	}

	if e.Cache != nil {
		if err := e.Cache.Set(ctx, searchKey, result, e.Config.Cache.ResultTTLOrDefault()); err != nil {
			fmt.Fprintf(e.Warnings, "warning: caching search result: %v\n", err)
		}
		if err := e.Cache.Set(ctx, cache.InsightsKey(params), market, e.Config.Cache.InsightsTTLOrDefault()); err != nil {
			fmt.Fprintf(e.Warnings, "warning: caching market insights: %v\n", err)
		}
	}

	return result
}

// Insights returns market statistics for a route, served from the insights
// cache when fresh and computed via a full discovery run otherwise.
func (e *Engine) Insights(ctx context.Context, params types.SearchParams) types.MarketInsights {
	params = params.Normalize()
	if e.Cache != nil {
		var cached types.MarketInsights
		if hit, err := e.Cache.Get(ctx, cache.InsightsKey(params), &cached); err == nil && hit {
			return cached
		}
	}
	return e.Discover(ctx, params).Market
}

// rank orders opportunities by descending score. Ties break on city then
// offer ID so ranking is stable across runs.
func rank(opportunities []types.EnrichedLayover) {
	sort.Slice(opportunities, func(i, j int) bool {
		if opportunities[i].Score.Total != opportunities[j].Score.Total {
			return opportunities[i].Score.Total > opportunities[j].Score.Total
		}
		if opportunities[i].Layover.City != opportunities[j].Layover.City {
			return opportunities[i].Layover.City < opportunities[j].Layover.City
		}
		return opportunities[i].Layover.OfferID < opportunities[j].Layover.OfferID
	})
}
