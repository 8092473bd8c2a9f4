// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider normalizes external flight-data sources into the common
// offer representation. Each adapter is the only place that understands its
// source's wire shape; callers see fully-formed types.Offer values or a typed
// error, never a partially-constructed offer.
package provider

import (
	"context"
	"errors"

	"github.com/pdiddy/layover-engine/pkg/types"
)

// ErrTemporary marks failures worth retrying: timeouts, rate limiting, and
// transient upstream errors.
var ErrTemporary = errors.New("temporary provider error")

// ErrUnauthorized marks authentication failures. Retrying cannot help.
var ErrUnauthorized = errors.New("provider authentication failed")

// FlightProvider searches a single external flight source. Implementations
// must be safe for concurrent use by multiple in-flight searches; internal
// token refresh or connection pooling stays private to the adapter.
type FlightProvider interface {
	Name() string
	Search(ctx context.Context, params types.SearchParams) ([]types.Offer, error)
}

// primaryAirline returns the carrier code of the first outbound segment.
func primaryAirline(segments []types.Segment) string {
	if len(segments) == 0 {
		return ""
	}
	return segments[0].CarrierCode
}

// elapsedMinutes returns the door-to-door duration of a direction.
func elapsedMinutes(segments []types.Segment) int {
	if len(segments) == 0 {
		return 0
	}
	first := segments[0].Departure.Time
	last := segments[len(segments)-1].Arrival.Time
	if !last.After(first) {
		return 0
	}
	return int(last.Sub(first).Minutes())
}
