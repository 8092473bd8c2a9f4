// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/layover-engine/internal/provider"
	"github.com/pdiddy/layover-engine/pkg/types"
)

// fakeProvider is a scriptable FlightProvider for exercising the fan-out.
type fakeProvider struct {
	name   string
	offers []types.Offer
	err    error
	delay  time.Duration
	calls  atomic.Int32

	// failFirst makes the first call return ErrTemporary, then succeed.
	failFirst bool
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(ctx context.Context, _ types.SearchParams) ([]types.Offer, error) {
	n := f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.failFirst && n == 1 {
		return nil, fmt.Errorf("transient: %w", provider.ErrTemporary)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.offers, nil
}

func makeOffer(id, prov, airline string, price float64, origin, dest string, dep time.Time) types.Offer {
	return types.Offer{
		ID:       id,
		Provider: prov,
		Price:    types.Price{Total: price, Currency: "USD"},
		Airline:  airline,
		Outbound: []types.Segment{{
			Departure: types.Stop{Airport: origin, Time: dep},
			Arrival:   types.Stop{Airport: dest, Time: dep.Add(7 * time.Hour)},
		}},
	}
}

var testDep = time.Date(2026, 9, 10, 8, 30, 0, 0, time.UTC)

func fastConfig() types.ProviderConfig {
	return types.ProviderConfig{MaxRetries: 1, RetryBaseDelay: time.Millisecond}
}

func TestSearchAll_MergesAndSortsByPrice(t *testing.T) {
	providers := []provider.FlightProvider{
		&fakeProvider{name: "amadeus", offers: []types.Offer{
			makeOffer("a1", "amadeus", "QR", 900, "JFK", "BKK", testDep),
		}},
		&fakeProvider{name: "duffel", offers: []types.Offer{
			makeOffer("d1", "duffel", "EK", 750, "JFK", "BKK", testDep.Add(2*time.Hour)),
			makeOffer("d2", "duffel", "TK", 1100, "JFK", "BKK", testDep.Add(4*time.Hour)),
		}},
	}

	out := SearchAll(context.Background(), providers, types.SearchParams{}, fastConfig(), io.Discard)

	if len(out.Offers) != 3 {
		t.Fatalf("expected 3 offers, got %d", len(out.Offers))
	}
	for i := 1; i < len(out.Offers); i++ {
		if out.Offers[i].Price.Total < out.Offers[i-1].Price.Total {
			t.Errorf("offers not sorted by price: %.0f before %.0f",
				out.Offers[i-1].Price.Total, out.Offers[i].Price.Total)
		}
	}
	if out.ProviderCounts["amadeus"] != 1 || out.ProviderCounts["duffel"] != 2 {
		t.Errorf("unexpected provider counts: %v", out.ProviderCounts)
	}
	if len(out.ProviderErrors) != 0 {
		t.Errorf("unexpected provider errors: %v", out.ProviderErrors)
	}
}

func TestSearchAll_DeduplicatesKeepingCheapest(t *testing.T) {
	// Same itinerary (endpoints, departure minute, airline) from two sources.
	cheap := makeOffer("d1", "duffel", "QR", 810, "JFK", "BKK", testDep)
	pricey := makeOffer("a1", "amadeus", "QR", 845, "JFK", "BKK", testDep)

	providers := []provider.FlightProvider{
		&fakeProvider{name: "amadeus", offers: []types.Offer{pricey}},
		&fakeProvider{name: "duffel", offers: []types.Offer{cheap}},
	}

	out := SearchAll(context.Background(), providers, types.SearchParams{}, fastConfig(), io.Discard)

	if len(out.Offers) != 1 {
		t.Fatalf("expected 1 offer after dedup, got %d", len(out.Offers))
	}
	if out.Offers[0].ID != "d1" {
		t.Errorf("expected cheapest offer d1 to survive, got %s", out.Offers[0].ID)
	}
	if out.DuplicatesRemoved != 1 {
		t.Errorf("DuplicatesRemoved = %d, want 1", out.DuplicatesRemoved)
	}
}

func TestSearchAll_OrderIndependent(t *testing.T) {
	// Delays force different completion orders; the output must not change.
	build := func(delayA, delayB time.Duration) []provider.FlightProvider {
		return []provider.FlightProvider{
			&fakeProvider{name: "amadeus", delay: delayA, offers: []types.Offer{
				makeOffer("a1", "amadeus", "QR", 845, "JFK", "BKK", testDep),
				makeOffer("a2", "amadeus", "EK", 700, "JFK", "BKK", testDep.Add(time.Hour)),
			}},
			&fakeProvider{name: "duffel", delay: delayB, offers: []types.Offer{
				makeOffer("d1", "duffel", "QR", 810, "JFK", "BKK", testDep),
			}},
		}
	}

	first := SearchAll(context.Background(), build(0, 20*time.Millisecond), types.SearchParams{}, fastConfig(), io.Discard)
	second := SearchAll(context.Background(), build(20*time.Millisecond, 0), types.SearchParams{}, fastConfig(), io.Discard)

	if len(first.Offers) != len(second.Offers) {
		t.Fatalf("offer counts differ: %d vs %d", len(first.Offers), len(second.Offers))
	}
	for i := range first.Offers {
		if first.Offers[i].ID != second.Offers[i].ID {
			t.Errorf("offer %d differs across completion orders: %s vs %s",
				i, first.Offers[i].ID, second.Offers[i].ID)
		}
	}
}

func TestSearchAll_IsolatesFailedProvider(t *testing.T) {
	providers := []provider.FlightProvider{
		&fakeProvider{name: "amadeus", err: errors.New("connection refused")},
		&fakeProvider{name: "duffel", offers: []types.Offer{
			makeOffer("d1", "duffel", "EK", 750, "JFK", "BKK", testDep),
		}},
	}

	var warnings strings.Builder
	out := SearchAll(context.Background(), providers, types.SearchParams{}, fastConfig(), &warnings)

	if len(out.Offers) != 1 {
		t.Fatalf("expected healthy provider's offer, got %d offers", len(out.Offers))
	}
	if len(out.ProviderErrors) != 1 || !strings.Contains(out.ProviderErrors[0], "amadeus") {
		t.Errorf("unexpected provider errors: %v", out.ProviderErrors)
	}
	if out.ProviderCounts["amadeus"] != 0 {
		t.Errorf("failed provider should report zero count, got %d", out.ProviderCounts["amadeus"])
	}
	if !strings.Contains(warnings.String(), "amadeus") {
		t.Errorf("expected warning mentioning amadeus, got %q", warnings.String())
	}
}

func TestSearchAll_AllProvidersFail(t *testing.T) {
	providers := []provider.FlightProvider{
		&fakeProvider{name: "amadeus", err: errors.New("down")},
		&fakeProvider{name: "duffel", err: errors.New("down")},
		&fakeProvider{name: "kiwi", err: errors.New("down")},
	}

	out := SearchAll(context.Background(), providers, types.SearchParams{}, fastConfig(), io.Discard)

	if len(out.Offers) != 0 {
		t.Errorf("expected no offers, got %d", len(out.Offers))
	}
	if len(out.ProviderErrors) != 3 {
		t.Errorf("expected 3 provider errors, got %v", out.ProviderErrors)
	}
}

func TestSearchAll_RetriesTemporaryFailures(t *testing.T) {
	flaky := &fakeProvider{name: "amadeus", failFirst: true, offers: []types.Offer{
		makeOffer("a1", "amadeus", "QR", 845, "JFK", "BKK", testDep),
	}}

	out := SearchAll(context.Background(), []provider.FlightProvider{flaky}, types.SearchParams{}, fastConfig(), io.Discard)

	if len(out.Offers) != 1 {
		t.Fatalf("expected retry to recover the offer, got %d offers (errors %v)",
			len(out.Offers), out.ProviderErrors)
	}
	if got := flaky.calls.Load(); got != 2 {
		t.Errorf("expected 2 calls (initial + retry), got %d", got)
	}
}

func TestSearchAll_DoesNotRetryPermanentFailures(t *testing.T) {
	dead := &fakeProvider{name: "amadeus", err: fmt.Errorf("bad key: %w", provider.ErrUnauthorized)}

	out := SearchAll(context.Background(), []provider.FlightProvider{dead}, types.SearchParams{}, fastConfig(), io.Discard)

	if len(out.ProviderErrors) != 1 {
		t.Fatalf("expected 1 provider error, got %v", out.ProviderErrors)
	}
	if got := dead.calls.Load(); got != 1 {
		t.Errorf("permanent failure should not be retried, got %d calls", got)
	}
}

func TestSearchAll_CapsOffers(t *testing.T) {
	var offers []types.Offer
	for i := 0; i < 10; i++ {
		offers = append(offers, makeOffer(
			fmt.Sprintf("a%d", i), "amadeus", "QR", 700+float64(i)*10,
			"JFK", "BKK", testDep.Add(time.Duration(i)*time.Hour)))
	}
	cfg := fastConfig()
	cfg.MaxOffers = 4

	out := SearchAll(context.Background(), []provider.FlightProvider{
		&fakeProvider{name: "amadeus", offers: offers},
	}, types.SearchParams{}, cfg, io.Discard)

	if len(out.Offers) != 4 {
		t.Fatalf("expected 4 offers after cap, got %d", len(out.Offers))
	}
	if out.Offers[0].Price.Total != 700 {
		t.Errorf("cap should keep the cheapest offers, got first price %.0f", out.Offers[0].Price.Total)
	}
}

type panicProvider struct{ name string }

func (p *panicProvider) Name() string { return p.name }

func (p *panicProvider) Search(context.Context, types.SearchParams) ([]types.Offer, error) {
	panic("index out of range in adapter")
}

func TestSearchAll_IsolatesPanickingProvider(t *testing.T) {
	providers := []provider.FlightProvider{
		&panicProvider{name: "amadeus"},
		&fakeProvider{name: "duffel", offers: []types.Offer{
			makeOffer("d1", "duffel", "EK", 750, "JFK", "BKK", testDep),
		}},
	}

	out := SearchAll(context.Background(), providers, types.SearchParams{}, fastConfig(), io.Discard)

	if len(out.Offers) != 1 {
		t.Fatalf("panicking provider took down the search: %d offers", len(out.Offers))
	}
	if len(out.ProviderErrors) != 1 || !strings.Contains(out.ProviderErrors[0], "panicked") {
		t.Errorf("expected a panic provider error, got %v", out.ProviderErrors)
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	offers := []types.Offer{
		makeOffer("a1", "amadeus", "QR", 845, "JFK", "BKK", testDep),
		makeOffer("d1", "duffel", "QR", 810, "JFK", "BKK", testDep),
		makeOffer("a2", "amadeus", "EK", 700, "JFK", "BKK", testDep.Add(time.Hour)),
	}

	once, removed := deduplicate(offers)
	if removed != 1 {
		t.Fatalf("first pass removed %d, want 1", removed)
	}
	twice, removedAgain := deduplicate(once)
	if removedAgain != 0 {
		t.Errorf("second pass removed %d, want 0", removedAgain)
	}
	if len(twice) != len(once) {
		t.Errorf("second pass changed length: %d vs %d", len(twice), len(once))
	}
}
