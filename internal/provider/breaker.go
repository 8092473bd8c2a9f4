// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/pdiddy/layover-engine/pkg/types"
)

// breakerProvider stops calling a repeatedly-failing source for a cool-down
// period so one dead provider does not add its full timeout to every search.
type breakerProvider struct {
	inner   FlightProvider
	breaker *gobreaker.CircuitBreaker[[]types.Offer]
}

// NewBreaker wraps p in a circuit breaker that opens after five consecutive
// failures and probes again after 30 seconds. An open breaker surfaces as
// ErrTemporary so the aggregator records it like any other provider failure.
func NewBreaker(p FlightProvider) FlightProvider {
	settings := gobreaker.Settings{
		Name:    p.Name(),
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &breakerProvider{
		inner:   p,
		breaker: gobreaker.NewCircuitBreaker[[]types.Offer](settings),
	}
}

func (b *breakerProvider) Name() string { return b.inner.Name() }

func (b *breakerProvider) Search(ctx context.Context, params types.SearchParams) ([]types.Offer, error) {
	offers, err := b.breaker.Execute(func() ([]types.Offer, error) {
		return b.inner.Search(ctx, params)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s circuit open: %w", b.inner.Name(), ErrTemporary)
	}
	return offers, err
}
