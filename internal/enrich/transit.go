// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"

	"github.com/pdiddy/layover-engine/internal/catalog"
	"github.com/pdiddy/layover-engine/pkg/types"
)

// TransitProvider decides whether a layover leaves usable time in the city.
type TransitProvider interface {
	Analyze(ctx context.Context, l types.Layover, hasCheckedBaggage bool) (types.TransitAnalysis, error)
}

// Fixed buffers subtracted from the window before counting city time.
// reboardBuffer covers security and boarding on the way back; immigrationBuffer
// covers exit and re-entry formalities; baggageBuffer applies when bags are
// not checked through and must be collected and re-dropped.
const (
	reboardBuffer     = 60
	immigrationBuffer = 45
	baggageBuffer     = 45

	// minUsefulCityMinutes is the least city time worth leaving the airport for.
	minUsefulCityMinutes = 60
)

// CatalogTransit analyzes transit feasibility from catalog reference data.
type CatalogTransit struct {
	Catalog interface {
		Airport(ctx context.Context, code string) (catalog.Airport, error)
	}
}

// Analyze computes the usable city window from the catalog's one-way transit
// time plus fixed immigration and re-boarding buffers.
func (t *CatalogTransit) Analyze(ctx context.Context, l types.Layover, hasCheckedBaggage bool) (types.TransitAnalysis, error) {
	ref, err := t.Catalog.Airport(ctx, l.Airport)
	if err != nil {
		return types.TransitAnalysis{}, fmt.Errorf("transit data for %s: %w", l.Airport, err)
	}
	if ref.TransitMinutes <= 0 {
		return types.TransitAnalysis{}, fmt.Errorf("no transit data for %s", l.Airport)
	}

	roundTrip := 2 * ref.TransitMinutes
	overhead := roundTrip + reboardBuffer + immigrationBuffer
	if hasCheckedBaggage {
		overhead += baggageBuffer
	}

	cityMinutes := l.DurationMinutes - overhead
	analysis := types.TransitAnalysis{
		Mode:             ref.TransitMode,
		RoundTripMinutes: roundTrip,
	}
	if cityMinutes < minUsefulCityMinutes {
		analysis.Note = fmt.Sprintf("window too short to leave %s: %d min after transit and buffers", l.Airport, cityMinutes)
		return analysis, nil
	}

	analysis.CanLeaveAirport = true
	analysis.MinutesInCity = cityMinutes
	return analysis, nil
}

// FallbackTransit is the conservative analysis substituted when transit data
// is unavailable: stay airside.
func FallbackTransit(airport string) types.TransitAnalysis {
	return types.TransitAnalysis{
		Note:     fmt.Sprintf("no transit data for %s; assuming airside stay", airport),
		Fallback: true,
	}
}
