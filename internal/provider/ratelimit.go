// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/layover-engine/pkg/types"
)

// rateLimitedProvider spaces out calls to one upstream source. Shared by all
// in-flight searches using the same adapter instance.
type rateLimitedProvider struct {
	inner   FlightProvider
	limiter *rate.Limiter
}

// NewRateLimited wraps p so consecutive searches are at least interval apart.
// A non-positive interval returns p unchanged.
func NewRateLimited(p FlightProvider, interval time.Duration) FlightProvider {
	if interval <= 0 {
		return p
	}
	return &rateLimitedProvider{
		inner:   p,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (r *rateLimitedProvider) Name() string { return r.inner.Name() }

func (r *rateLimitedProvider) Search(ctx context.Context, params types.SearchParams) ([]types.Offer, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Search(ctx, params)
}
