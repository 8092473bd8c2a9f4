// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate fans a search request out to every configured flight
// provider concurrently, isolates per-provider failures, merges and
// deduplicates the results, and returns them sorted by ascending price.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/layover-engine/internal/provider"
	"github.com/pdiddy/layover-engine/pkg/types"
)

// Output holds the merged offers and per-provider accounting.
type Output struct {
	// Offers is the deduplicated list, ascending by total price.
	Offers []types.Offer

	// ProviderCounts maps provider name to offers contributed before dedup.
	// Failed providers appear with a zero count.
	ProviderCounts map[string]int

	// ProviderErrors lists failures as "name: message". A populated list with
	// an empty offer slice means every source was down; that is not an error
	// at this layer — the caller decides how to surface it.
	ProviderErrors []string

	// DuplicatesRemoved counts offers discarded as same-itinerary duplicates.
	DuplicatesRemoved int
}

// SearchAll issues one concurrent search per provider and waits for all of
// them to settle. One provider's failure or timeout never cancels, delays, or
// fails the others. The final ordering is independent of completion order.
func SearchAll(ctx context.Context, providers []provider.FlightProvider, params types.SearchParams, cfg types.ProviderConfig, w io.Writer) Output {
	out := Output{ProviderCounts: make(map[string]int, len(providers))}
	if len(providers) == 0 {
		return out
	}

	type providerResult struct {
		name   string
		offers []types.Offer
		err    error
	}

	ch := make(chan providerResult, len(providers))
	var wg sync.WaitGroup

	for _, p := range providers {
		wg.Add(1)
		go func(p provider.FlightProvider) {
			defer wg.Done()
			var offers []types.Offer
			var err error
			// A panicking adapter counts as a failed provider, nothing more.
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("provider panicked: %v", r)
				}
				ch <- providerResult{name: p.Name(), offers: offers, err: err}
			}()
			callCtx := ctx
			if cfg.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
				defer cancel()
			}
			offers, err = searchWithRetry(callCtx, p, params, cfg)
		}(p)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.Offer
	for pr := range ch {
		if pr.err != nil {
			out.ProviderCounts[pr.name] = 0
			out.ProviderErrors = append(out.ProviderErrors, fmt.Sprintf("%s: %v", pr.name, pr.err))
			fmt.Fprintf(w, "warning: provider %s failed: %v\n", pr.name, pr.err)
			continue
		}
		out.ProviderCounts[pr.name] = len(pr.offers)
		all = append(all, pr.offers...)
	}
	sort.Strings(out.ProviderErrors)

	out.Offers, out.DuplicatesRemoved = deduplicate(all)

	if cfg.MaxOffers > 0 && len(out.Offers) > cfg.MaxOffers {
		out.Offers = out.Offers[:cfg.MaxOffers]
	}
	return out
}

// searchWithRetry retries temporary failures a bounded number of times with
// exponential backoff plus jitter. Non-temporary failures return immediately.
func searchWithRetry(ctx context.Context, p provider.FlightProvider, params types.SearchParams, cfg types.ProviderConfig) ([]types.Offer, error) {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	backoff := cfg.RetryBaseDelay
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		offers, err := p.Search(ctx, params)
		if err == nil {
			return offers, nil
		}
		lastErr = err
		if !errors.Is(err, provider.ErrTemporary) || attempt == maxRetries {
			return nil, err
		}

		delay := backoff + time.Duration(rand.Int63n(int64(backoff)/2+1))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			backoff *= 2
		}
	}
	return nil, lastErr
}

// deduplicate collapses offers that describe the same itinerary as seen by
// different providers, keeping the cheapest. The composite key (endpoints,
// minute-truncated departure, primary airline) is an approximation: providers
// reporting times with different rounding produce accepted false negatives.
// The key is tunable policy, not a correctness invariant.
func deduplicate(offers []types.Offer) ([]types.Offer, int) {
	// Sorting before keying makes the surviving offer per key — and therefore
	// the whole output — independent of provider completion order.
	sorted := append([]types.Offer(nil), offers...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Price.Total != sorted[j].Price.Total {
			return sorted[i].Price.Total < sorted[j].Price.Total
		}
		if sorted[i].Provider != sorted[j].Provider {
			return sorted[i].Provider < sorted[j].Provider
		}
		return sorted[i].ID < sorted[j].ID
	})

	seen := make(map[string]struct{}, len(sorted))
	deduped := make([]types.Offer, 0, len(sorted))
	removed := 0
	for _, o := range sorted {
		key := dedupKey(o)
		if _, ok := seen[key]; ok {
			removed++
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, o)
	}
	return deduped, removed
}

// dedupKey builds the same-itinerary key for an offer.
func dedupKey(o types.Offer) string {
	if len(o.Outbound) == 0 {
		return "empty:" + o.ID
	}
	first := o.Outbound[0]
	last := o.Outbound[len(o.Outbound)-1]
	return strings.ToUpper(strings.Join([]string{
		first.Departure.Airport,
		last.Arrival.Airport,
		first.Departure.Time.Truncate(time.Minute).Format("2006-01-02T15:04"),
		o.Airline,
	}, "|"))
}
