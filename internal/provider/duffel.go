// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pdiddy/layover-engine/pkg/types"
)

// duffelAPIBase is the offer-request endpoint. Declared as a var so tests can
// substitute an httptest server.
var duffelAPIBase = "https://api.duffel.com/air/offer_requests"

// DuffelProvider queries the Duffel offers API.
type DuffelProvider struct {
	Client *http.Client
	APIKey string
	Config types.ProviderConfig
}

// Name returns the provider identifier.
func (p *DuffelProvider) Name() string { return "duffel" }

// Search posts an offer request and returns normalized offers.
func (p *DuffelProvider) Search(ctx context.Context, params types.SearchParams) ([]types.Offer, error) {
	slices := []map[string]string{{
		"origin":         params.Origin,
		"destination":    params.Destination,
		"departure_date": params.DepartureDate.Format("2006-01-02"),
	}}
	if params.RoundTrip() {
		slices = append(slices, map[string]string{
			"origin":         params.Destination,
			"destination":    params.Origin,
			"departure_date": params.ReturnDate.Format("2006-01-02"),
		})
	}
	passengers := make([]map[string]string, 0, params.Passengers)
	for i := 0; i < params.Passengers; i++ {
		passengers = append(passengers, map[string]string{"type": "adult"})
	}
	body, err := json.Marshal(map[string]any{
		"data": map[string]any{
			"slices":      slices,
			"passengers":  passengers,
			"cabin_class": params.CabinClass,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding duffel request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, duffelAPIBase+"?return_offers=true", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Duffel-Version", "v2")
	req.Header.Set("User-Agent", p.Config.UserAgent)

	resp, err := doWithRetry(ctx, p.Client, req, p.Config)
	if err != nil {
		return nil, fmt.Errorf("duffel request: %w: %w", ErrTemporary, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("duffel: %w (HTTP %d)", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("duffel: %w (HTTP %d)", ErrTemporary, resp.StatusCode)
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		return nil, fmt.Errorf("duffel returned HTTP %d", resp.StatusCode)
	}

	var payload duffelResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing duffel response: %w", err)
	}

	offers := make([]types.Offer, 0, len(payload.Data.Offers))
	for _, raw := range payload.Data.Offers {
		offer, err := normalizeDuffel(raw)
		if err != nil {
			continue
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

// Duffel JSON structures (subset the engine consumes).
type duffelResponse struct {
	Data struct {
		Offers []duffelOffer `json:"offers"`
	} `json:"data"`
}

type duffelOffer struct {
	ID            string `json:"id"`
	TotalAmount   string `json:"total_amount"`
	BaseAmount    string `json:"base_amount"`
	TaxAmount     string `json:"tax_amount"`
	TotalCurrency string `json:"total_currency"`
	Owner         struct {
		IATACode string `json:"iata_code"`
		Name     string `json:"name"`
	} `json:"owner"`
	Slices []duffelSlice `json:"slices"`
}

type duffelSlice struct {
	Segments []duffelSegment `json:"segments"`
}

type duffelSegment struct {
	Origin          duffelPlace `json:"origin"`
	Destination     duffelPlace `json:"destination"`
	DepartingAt     string      `json:"departing_at"`
	ArrivingAt      string      `json:"arriving_at"`
	MarketingCarrier struct {
		IATACode string `json:"iata_code"`
		Name     string `json:"name"`
	} `json:"marketing_carrier"`
	FlightNumber string `json:"marketing_carrier_flight_number"`
	Aircraft     struct {
		Name string `json:"name"`
	} `json:"aircraft"`
	Duration string `json:"duration"`
}

type duffelPlace struct {
	IATACode    string `json:"iata_code"`
	CityName    string `json:"city_name"`
	CountryName string `json:"country_name"`
	TimeZone    string `json:"time_zone"`
}

func normalizeDuffel(raw duffelOffer) (types.Offer, error) {
	if len(raw.Slices) == 0 {
		return types.Offer{}, fmt.Errorf("offer %s has no slices", raw.ID)
	}

	total, err := strconv.ParseFloat(raw.TotalAmount, 64)
	if err != nil {
		return types.Offer{}, fmt.Errorf("offer %s total: %w", raw.ID, err)
	}
	base, _ := strconv.ParseFloat(raw.BaseAmount, 64)
	tax, _ := strconv.ParseFloat(raw.TaxAmount, 64)

	outbound, err := normalizeDuffelSegments(raw.Slices[0].Segments)
	if err != nil {
		return types.Offer{}, err
	}
	var inbound []types.Segment
	if len(raw.Slices) > 1 {
		inbound, err = normalizeDuffelSegments(raw.Slices[1].Segments)
		if err != nil {
			return types.Offer{}, err
		}
	}

	airline := raw.Owner.IATACode
	if airline == "" {
		airline = primaryAirline(outbound)
	}

	return types.Offer{
		ID:              "duffel-" + raw.ID,
		Provider:        "duffel",
		Price:           types.Price{Total: total, Base: base, Tax: tax, Currency: raw.TotalCurrency},
		Outbound:        outbound,
		Inbound:         inbound,
		Airline:         airline,
		OutboundMinutes: elapsedMinutes(outbound),
		InboundMinutes:  elapsedMinutes(inbound),
	}, nil
}

func normalizeDuffelSegments(raw []duffelSegment) ([]types.Segment, error) {
	segments := make([]types.Segment, 0, len(raw))
	for _, s := range raw {
		dep, err := parseDuffelTime(s.DepartingAt)
		if err != nil {
			return nil, fmt.Errorf("segment departing_at: %w", err)
		}
		arr, err := parseDuffelTime(s.ArrivingAt)
		if err != nil {
			return nil, fmt.Errorf("segment arriving_at: %w", err)
		}
		segments = append(segments, types.Segment{
			Departure: types.Stop{
				Airport:  s.Origin.IATACode,
				City:     s.Origin.CityName,
				Country:  s.Origin.CountryName,
				Time:     dep,
				Timezone: s.Origin.TimeZone,
			},
			Arrival: types.Stop{
				Airport:  s.Destination.IATACode,
				City:     s.Destination.CityName,
				Country:  s.Destination.CountryName,
				Time:     arr,
				Timezone: s.Destination.TimeZone,
			},
			CarrierCode:     s.MarketingCarrier.IATACode,
			CarrierName:     s.MarketingCarrier.Name,
			FlightNumber:    s.MarketingCarrier.IATACode + s.FlightNumber,
			Aircraft:        s.Aircraft.Name,
			DurationMinutes: parseISODurationMinutes(s.Duration),
		})
	}
	return segments, nil
}

func parseDuffelTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
