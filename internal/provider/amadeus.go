// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/layover-engine/internal/httputil"
	"github.com/pdiddy/layover-engine/pkg/types"
)

// amadeusAPIBase is the flight-offers search endpoint. Declared as a var so
// tests can substitute an httptest server.
var amadeusAPIBase = "https://api.amadeus.com/v2/shopping/flight-offers"

// AmadeusProvider queries the Amadeus flight-offers API.
type AmadeusProvider struct {
	Client *http.Client
	APIKey string
	Config types.ProviderConfig
}

// Name returns the provider identifier.
func (p *AmadeusProvider) Name() string { return "amadeus" }

// Search queries the API and returns normalized offers.
func (p *AmadeusProvider) Search(ctx context.Context, params types.SearchParams) ([]types.Offer, error) {
	q := url.Values{}
	q.Set("originLocationCode", params.Origin)
	q.Set("destinationLocationCode", params.Destination)
	q.Set("departureDate", params.DepartureDate.Format("2006-01-02"))
	if params.RoundTrip() {
		q.Set("returnDate", params.ReturnDate.Format("2006-01-02"))
	}
	q.Set("adults", strconv.Itoa(params.Passengers))
	if params.CabinClass != "" {
		q.Set("travelClass", strings.ToUpper(params.CabinClass))
	}
	if params.MaxConnections > 0 {
		q.Set("maxNumberOfConnections", strconv.Itoa(params.MaxConnections))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, amadeusAPIBase+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("User-Agent", p.Config.UserAgent)

	resp, err := doWithRetry(ctx, p.Client, req, p.Config)
	if err != nil {
		return nil, fmt.Errorf("amadeus request: %w: %w", ErrTemporary, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("amadeus: %w (HTTP %d)", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("amadeus: %w (HTTP %d)", ErrTemporary, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("amadeus returned HTTP %d", resp.StatusCode)
	}

	var payload amadeusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing amadeus response: %w", err)
	}

	offers := make([]types.Offer, 0, len(payload.Data))
	for _, raw := range payload.Data {
		offer, err := normalizeAmadeus(raw)
		if err != nil {
			// Skip offers that cannot be normalized rather than surface a
			// partially-constructed one.
			continue
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

// Amadeus JSON structures (subset the engine consumes).
type amadeusResponse struct {
	Data []amadeusOffer `json:"data"`
}

type amadeusOffer struct {
	ID          string             `json:"id"`
	Itineraries []amadeusItinerary `json:"itineraries"`
	Price       amadeusPrice       `json:"price"`
	Validating  []string           `json:"validatingAirlineCodes"`
}

type amadeusItinerary struct {
	Duration string           `json:"duration"`
	Segments []amadeusSegment `json:"segments"`
}

type amadeusSegment struct {
	Departure   amadeusEndpoint `json:"departure"`
	Arrival     amadeusEndpoint `json:"arrival"`
	CarrierCode string          `json:"carrierCode"`
	Number      string          `json:"number"`
	Aircraft    struct {
		Code string `json:"code"`
	} `json:"aircraft"`
	Duration string `json:"duration"`
}

type amadeusEndpoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"`
}

type amadeusPrice struct {
	Total    string `json:"total"`
	Base     string `json:"base"`
	Currency string `json:"currency"`
}

func normalizeAmadeus(raw amadeusOffer) (types.Offer, error) {
	if len(raw.Itineraries) == 0 {
		return types.Offer{}, fmt.Errorf("offer %s has no itineraries", raw.ID)
	}

	total, err := strconv.ParseFloat(raw.Price.Total, 64)
	if err != nil {
		return types.Offer{}, fmt.Errorf("offer %s price: %w", raw.ID, err)
	}
	base, _ := strconv.ParseFloat(raw.Price.Base, 64)

	outbound, err := normalizeAmadeusSegments(raw.Itineraries[0].Segments)
	if err != nil {
		return types.Offer{}, err
	}
	var inbound []types.Segment
	if len(raw.Itineraries) > 1 {
		inbound, err = normalizeAmadeusSegments(raw.Itineraries[1].Segments)
		if err != nil {
			return types.Offer{}, err
		}
	}

	airline := primaryAirline(outbound)
	if len(raw.Validating) > 0 {
		airline = raw.Validating[0]
	}

	return types.Offer{
		ID:              "amadeus-" + raw.ID,
		Provider:        "amadeus",
		Price:           types.Price{Total: total, Base: base, Tax: total - base, Currency: raw.Price.Currency},
		Outbound:        outbound,
		Inbound:         inbound,
		Airline:         airline,
		OutboundMinutes: elapsedMinutes(outbound),
		InboundMinutes:  elapsedMinutes(inbound),
	}, nil
}

func normalizeAmadeusSegments(raw []amadeusSegment) ([]types.Segment, error) {
	segments := make([]types.Segment, 0, len(raw))
	for _, s := range raw {
		dep, err := parseAmadeusTime(s.Departure.At)
		if err != nil {
			return nil, fmt.Errorf("segment departure time: %w", err)
		}
		arr, err := parseAmadeusTime(s.Arrival.At)
		if err != nil {
			return nil, fmt.Errorf("segment arrival time: %w", err)
		}
		segments = append(segments, types.Segment{
			Departure:       types.Stop{Airport: s.Departure.IATACode, Time: dep},
			Arrival:         types.Stop{Airport: s.Arrival.IATACode, Time: arr},
			CarrierCode:     s.CarrierCode,
			FlightNumber:    s.CarrierCode + s.Number,
			Aircraft:        s.Aircraft.Code,
			DurationMinutes: parseISODurationMinutes(s.Duration),
		})
	}
	return segments, nil
}

// parseAmadeusTime parses "2026-09-14T08:30:00" local timestamps, falling back
// to RFC3339 when an offset is present.
func parseAmadeusTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// parseISODurationMinutes converts an ISO 8601 duration like "PT7H35M" to
// minutes. Unparseable input yields zero; the extractor recomputes durations
// from timestamps anyway.
func parseISODurationMinutes(s string) int {
	s = strings.TrimPrefix(s, "PT")
	minutes := 0
	if idx := strings.Index(s, "H"); idx >= 0 {
		if h, err := strconv.Atoi(s[:idx]); err == nil {
			minutes += h * 60
		}
		s = s[idx+1:]
	}
	if idx := strings.Index(s, "M"); idx >= 0 {
		if m, err := strconv.Atoi(s[:idx]); err == nil {
			minutes += m
		}
	}
	return minutes
}

// doWithRetry is shared by adapters that want HTTP-level backoff before the
// aggregator's call-level retry kicks in.
func doWithRetry(ctx context.Context, client *http.Client, req *http.Request, cfg types.ProviderConfig) (*http.Response, error) {
	return httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
}
