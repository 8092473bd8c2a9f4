// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/layover-engine/pkg/types"
)

// kiwiAPIBase is the itinerary search endpoint. Declared as a var so tests
// can substitute an httptest server.
var kiwiAPIBase = "https://api.tequila.kiwi.com/v2/search"

// KiwiProvider queries the Kiwi Tequila search API.
type KiwiProvider struct {
	Client *http.Client
	APIKey string
	Config types.ProviderConfig
}

// Name returns the provider identifier.
func (p *KiwiProvider) Name() string { return "kiwi" }

// Search queries the API and returns normalized offers.
func (p *KiwiProvider) Search(ctx context.Context, params types.SearchParams) ([]types.Offer, error) {
	q := url.Values{}
	q.Set("fly_from", params.Origin)
	q.Set("fly_to", params.Destination)
	q.Set("date_from", params.DepartureDate.Format("02/01/2006"))
	q.Set("date_to", params.DepartureDate.Format("02/01/2006"))
	if params.RoundTrip() {
		q.Set("return_from", params.ReturnDate.Format("02/01/2006"))
		q.Set("return_to", params.ReturnDate.Format("02/01/2006"))
	}
	q.Set("adults", strconv.Itoa(params.Passengers))
	if params.CabinClass != "" {
		q.Set("selected_cabins", kiwiCabinCode(params.CabinClass))
	}
	if params.MaxConnections > 0 {
		q.Set("max_stopovers", strconv.Itoa(params.MaxConnections))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, kiwiAPIBase+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", p.APIKey)
	req.Header.Set("User-Agent", p.Config.UserAgent)

	resp, err := doWithRetry(ctx, p.Client, req, p.Config)
	if err != nil {
		return nil, fmt.Errorf("kiwi request: %w: %w", ErrTemporary, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("kiwi: %w (HTTP %d)", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("kiwi: %w (HTTP %d)", ErrTemporary, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("kiwi returned HTTP %d", resp.StatusCode)
	}

	var payload kiwiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing kiwi response: %w", err)
	}

	offers := make([]types.Offer, 0, len(payload.Data))
	for _, raw := range payload.Data {
		offer, err := normalizeKiwi(raw)
		if err != nil {
			continue
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

func kiwiCabinCode(cabin string) string {
	switch cabin {
	case "economy":
		return "M"
	case "premium_economy":
		return "W"
	case "business":
		return "C"
	case "first":
		return "F"
	}
	return "M"
}

// Kiwi JSON structures (subset the engine consumes).
type kiwiResponse struct {
	Data []kiwiItinerary `json:"data"`
}

type kiwiItinerary struct {
	ID         string    `json:"id"`
	Price      float64   `json:"price"`
	Conversion struct {
		Currency string `json:"currency"`
	} `json:"conversion"`
	Airlines []string  `json:"airlines"`
	Route    []kiwiLeg `json:"route"`
}

type kiwiLeg struct {
	FlyFrom     string `json:"flyFrom"`
	FlyTo       string `json:"flyTo"`
	CityFrom    string `json:"cityFrom"`
	CityTo      string `json:"cityTo"`
	CountryFrom struct {
		Name string `json:"name"`
	} `json:"countryFrom"`
	CountryTo struct {
		Name string `json:"name"`
	} `json:"countryTo"`
	LocalDeparture string `json:"local_departure"`
	LocalArrival   string `json:"local_arrival"`
	Airline        string `json:"airline"`
	FlightNo       int    `json:"flight_no"`
	Return         int    `json:"return"`
}

func normalizeKiwi(raw kiwiItinerary) (types.Offer, error) {
	if len(raw.Route) == 0 {
		return types.Offer{}, fmt.Errorf("itinerary %s has no route", raw.ID)
	}

	var outbound, inbound []types.Segment
	for _, leg := range raw.Route {
		seg, err := normalizeKiwiLeg(leg)
		if err != nil {
			return types.Offer{}, err
		}
		if leg.Return == 1 {
			inbound = append(inbound, seg)
		} else {
			outbound = append(outbound, seg)
		}
	}
	if len(outbound) == 0 {
		return types.Offer{}, fmt.Errorf("itinerary %s has no outbound legs", raw.ID)
	}

	id := raw.ID
	if id == "" {
		id = uuid.NewString()
	}
	airline := primaryAirline(outbound)
	if len(raw.Airlines) > 0 {
		airline = raw.Airlines[0]
	}

	return types.Offer{
		ID:              "kiwi-" + id,
		Provider:        "kiwi",
		Price:           types.Price{Total: raw.Price, Base: raw.Price, Currency: raw.Conversion.Currency},
		Outbound:        outbound,
		Inbound:         inbound,
		Airline:         airline,
		OutboundMinutes: elapsedMinutes(outbound),
		InboundMinutes:  elapsedMinutes(inbound),
	}, nil
}

func normalizeKiwiLeg(leg kiwiLeg) (types.Segment, error) {
	dep, err := time.Parse(time.RFC3339, leg.LocalDeparture)
	if err != nil {
		return types.Segment{}, fmt.Errorf("leg local_departure: %w", err)
	}
	arr, err := time.Parse(time.RFC3339, leg.LocalArrival)
	if err != nil {
		return types.Segment{}, fmt.Errorf("leg local_arrival: %w", err)
	}
	return types.Segment{
		Departure: types.Stop{
			Airport: leg.FlyFrom, City: leg.CityFrom, Country: leg.CountryFrom.Name, Time: dep,
		},
		Arrival: types.Stop{
			Airport: leg.FlyTo, City: leg.CityTo, Country: leg.CountryTo.Name, Time: arr,
		},
		CarrierCode:     leg.Airline,
		FlightNumber:    fmt.Sprintf("%s%d", leg.Airline, leg.FlightNo),
		DurationMinutes: int(arr.Sub(dep).Minutes()),
	}, nil
}
