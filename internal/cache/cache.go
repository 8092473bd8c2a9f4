// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes full search responses and market insights under
// normalized keys with bounded TTLs. Entries are immutable JSON snapshots, so
// concurrent last-write-wins is safe. Two backends exist: an in-process store
// and Redis; the engine treats backend errors as cache misses.
package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/layover-engine/pkg/types"
)

// Store is the result cache contract. Get unmarshals the cached snapshot into
// v and reports whether the key was present; Set stores v for ttl.
type Store interface {
	Get(ctx context.Context, key string, v any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}

// SearchKey builds the normalized, order-independent key for a full search
// response. Equivalent requests must collide regardless of field casing or
// interest ordering.
func SearchKey(p types.SearchParams) string {
	p = p.Normalize()
	interests := append([]string(nil), p.Interests...)
	sort.Strings(interests)

	ret := "ow"
	if p.RoundTrip() {
		ret = p.ReturnDate.Format("2006-01-02")
	}
	return fmt.Sprintf("search:v1:%s:%s:%s:%s:p%d:%s:c%d:l%v:%d-%d:bag%v:%s",
		p.Origin, p.Destination,
		p.DepartureDate.Format("2006-01-02"), ret,
		p.Passengers, p.CabinClass, p.MaxConnections,
		p.PreferLayovers, p.MinLayoverMinutes, p.MaxLayoverMinutes,
		p.HasCheckedBaggage, strings.Join(interests, ","))
}

// InsightsKey builds the key for route-level market insights. It is coarser
// than SearchKey: insights are shared across passenger counts and cabin
// classes because trend data changes slowly.
func InsightsKey(p types.SearchParams) string {
	p = p.Normalize()
	return fmt.Sprintf("insights:v1:%s:%s:%s",
		p.Origin, p.Destination, p.DepartureDate.Format("2006-01"))
}
