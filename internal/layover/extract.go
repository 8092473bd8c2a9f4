// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layover turns aggregated flight offers into viable layover
// candidates: it walks each itinerary's connections, measures ground time,
// resolves airport reference data, and filters by the viability window.
package layover

import (
	"context"
	"sort"
	"strings"

	"github.com/pdiddy/layover-engine/internal/catalog"
	"github.com/pdiddy/layover-engine/pkg/types"
)

// AirportLookup resolves IATA codes to reference data. Satisfied by
// *catalog.Store.
type AirportLookup interface {
	Airport(ctx context.Context, code string) (catalog.Airport, error)
}

// Result holds the surviving candidates plus extraction accounting.
type Result struct {
	// Candidates are the viable, coalesced layovers, ordered by city then
	// descending duration.
	Candidates []types.Layover

	// TotalCandidates counts every connection seen before filtering.
	TotalCandidates int
}

// Extract walks the connections of every offer and returns the layovers that
// fall inside the viability window. minOverride and maxOverride (minutes)
// tighten or widen the configured window per request; zero keeps the default.
// Near-identical candidates in the same city are coalesced, keeping the one
// with the most ground time.
func Extract(ctx context.Context, offers []types.Offer, cfg types.LayoverConfig, minOverride, maxOverride int, lookup AirportLookup) Result {
	min, max := cfg.Window(minOverride, maxOverride)

	var res Result
	var viable []types.Layover
	for _, offer := range offers {
		for _, segments := range [][]types.Segment{offer.Outbound, offer.Inbound} {
			for i := 0; i+1 < len(segments); i++ {
				res.TotalCandidates++
				cand, ok := candidate(ctx, segments[i], segments[i+1], offer, min, max, lookup)
				if ok {
					viable = append(viable, cand)
				}
			}
		}
	}

	res.Candidates = coalesce(viable)
	return res
}

// candidate builds one layover from an adjacent segment pair, or reports it
// non-viable. Too short to clear transfer, too long to be a layover rather
// than a destination, or unidentifiable city all disqualify.
func candidate(ctx context.Context, in, out types.Segment, offer types.Offer, min, max int, lookup AirportLookup) (types.Layover, bool) {
	duration := int(out.Departure.Time.Sub(in.Arrival.Time).Minutes())
	if duration < min || duration > max {
		return types.Layover{}, false
	}

	l := types.Layover{
		Airport:         in.Arrival.Airport,
		City:            in.Arrival.City,
		Country:         in.Arrival.Country,
		DurationMinutes: duration,
		Arrival:         in.Arrival.Time,
		Departure:       out.Departure.Time,
		OfferID:         offer.ID,
		OfferPrice:      offer.Price.Total,
	}

	// Provider payloads do not reliably carry city names; the catalog is the
	// authority when it knows the airport.
	if ref, err := lookup.Airport(ctx, l.Airport); err == nil {
		l.City = ref.City
		l.Country = ref.Country
		l.Latitude = ref.Latitude
		l.Longitude = ref.Longitude
	}
	if l.Airport == "" || l.City == "" {
		return types.Layover{}, false
	}
	return l, true
}

// coalesce collapses candidates in the same city whose durations land in the
// same hour bucket. A 250 and a 280 minute stop in Doha are the same
// opportunity to a traveler; the longer one survives. Ties prefer the cheaper
// offer, then the lexically smaller offer ID, so output never depends on
// input order.
func coalesce(candidates []types.Layover) []types.Layover {
	type bucketKey struct {
		city string
		hour int
	}
	best := make(map[bucketKey]types.Layover, len(candidates))
	for _, c := range candidates {
		key := bucketKey{city: strings.ToLower(c.City), hour: c.DurationMinutes / 60}
		cur, ok := best[key]
		if !ok || betterCandidate(c, cur) {
			best[key] = c
		}
	}

	out := make([]types.Layover, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		if out[i].DurationMinutes != out[j].DurationMinutes {
			return out[i].DurationMinutes > out[j].DurationMinutes
		}
		return out[i].OfferID < out[j].OfferID
	})
	return out
}

func betterCandidate(a, b types.Layover) bool {
	if a.DurationMinutes != b.DurationMinutes {
		return a.DurationMinutes > b.DurationMinutes
	}
	if a.OfferPrice != b.OfferPrice {
		return a.OfferPrice < b.OfferPrice
	}
	return a.OfferID < b.OfferID
}
