// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/layover-engine/pkg/types"
)

func testSearchParams() types.SearchParams {
	return types.SearchParams{
		Origin:        "JFK",
		Destination:   "SIN",
		DepartureDate: time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		Passengers:    1,
		CabinClass:    "economy",
	}
}

// --- Amadeus backend ---

const sampleAmadeusJSON = `{
  "data": [
    {
      "id": "1",
      "itineraries": [
        {
          "duration": "PT18H45M",
          "segments": [
            {
              "departure": {"iataCode": "JFK", "at": "2026-09-14T21:30:00"},
              "arrival": {"iataCode": "DOH", "at": "2026-09-15T17:15:00"},
              "carrierCode": "QR",
              "number": "702",
              "aircraft": {"code": "77W"},
              "duration": "PT12H45M"
            },
            {
              "departure": {"iataCode": "DOH", "at": "2026-09-16T02:00:00"},
              "arrival": {"iataCode": "SIN", "at": "2026-09-16T14:55:00"},
              "carrierCode": "QR",
              "number": "944",
              "aircraft": {"code": "359"},
              "duration": "PT7H55M"
            }
          ]
        }
      ],
      "price": {"total": "842.50", "base": "640.00", "currency": "USD"},
      "validatingAirlineCodes": ["QR"]
    }
  ]
}`

func TestAmadeusSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("originLocationCode") != "JFK" {
			t.Errorf("originLocationCode = %q", r.URL.Query().Get("originLocationCode"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleAmadeusJSON)
	}))
	defer ts.Close()

	old := amadeusAPIBase
	amadeusAPIBase = ts.URL
	defer func() { amadeusAPIBase = old }()

	p := &AmadeusProvider{Client: ts.Client(), APIKey: "k"}
	offers, err := p.Search(context.Background(), testSearchParams())
	if err != nil {
		t.Fatalf("AmadeusProvider.Search: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("len(offers) = %d, want 1", len(offers))
	}

	o := offers[0]
	if o.Provider != "amadeus" {
		t.Errorf("Provider = %q", o.Provider)
	}
	if o.ID != "amadeus-1" {
		t.Errorf("ID = %q", o.ID)
	}
	if o.Price.Total != 842.50 || o.Price.Currency != "USD" {
		t.Errorf("Price = %+v", o.Price)
	}
	if o.Airline != "QR" {
		t.Errorf("Airline = %q", o.Airline)
	}
	if len(o.Outbound) != 2 {
		t.Fatalf("len(Outbound) = %d, want 2", len(o.Outbound))
	}
	if o.Outbound[0].FlightNumber != "QR702" {
		t.Errorf("FlightNumber = %q", o.Outbound[0].FlightNumber)
	}
	if o.Outbound[1].Departure.Airport != "DOH" {
		t.Errorf("second segment departs %q, want DOH", o.Outbound[1].Departure.Airport)
	}
}

func TestAmadeusAuthFailureIsTyped(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	old := amadeusAPIBase
	amadeusAPIBase = ts.URL
	defer func() { amadeusAPIBase = old }()

	p := &AmadeusProvider{Client: ts.Client(), APIKey: "bad"}
	_, err := p.Search(context.Background(), testSearchParams())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestParseISODurationMinutes(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"PT7H35M", 455},
		{"PT45M", 45},
		{"PT2H", 120},
		{"", 0},
		{"garbage", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseISODurationMinutes(tt.input); got != tt.want {
				t.Errorf("parseISODurationMinutes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// --- Duffel backend ---

const sampleDuffelJSON = `{
  "data": {
    "offers": [
      {
        "id": "off_123",
        "total_amount": "915.40",
        "base_amount": "700.00",
        "tax_amount": "215.40",
        "total_currency": "USD",
        "owner": {"iata_code": "TK", "name": "Turkish Airlines"},
        "slices": [
          {
            "segments": [
              {
                "origin": {"iata_code": "JFK", "city_name": "New York", "country_name": "United States"},
                "destination": {"iata_code": "IST", "city_name": "Istanbul", "country_name": "Turkey"},
                "departing_at": "2026-09-14T23:45:00",
                "arriving_at": "2026-09-15T16:10:00",
                "marketing_carrier": {"iata_code": "TK", "name": "Turkish Airlines"},
                "marketing_carrier_flight_number": "4",
                "aircraft": {"name": "Airbus A350-900"},
                "duration": "PT9H25M"
              },
              {
                "origin": {"iata_code": "IST", "city_name": "Istanbul", "country_name": "Turkey"},
                "destination": {"iata_code": "SIN", "city_name": "Singapore", "country_name": "Singapore"},
                "departing_at": "2026-09-15T22:05:00",
                "arriving_at": "2026-09-16T13:45:00",
                "marketing_carrier": {"iata_code": "TK", "name": "Turkish Airlines"},
                "marketing_carrier_flight_number": "54",
                "aircraft": {"name": "Boeing 777-300ER"},
                "duration": "PT10H40M"
              }
            ]
          }
        ]
      }
    ]
  }
}`

func TestDuffelSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleDuffelJSON)
	}))
	defer ts.Close()

	old := duffelAPIBase
	duffelAPIBase = ts.URL
	defer func() { duffelAPIBase = old }()

	p := &DuffelProvider{Client: ts.Client(), APIKey: "k"}
	offers, err := p.Search(context.Background(), testSearchParams())
	if err != nil {
		t.Fatalf("DuffelProvider.Search: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("len(offers) = %d, want 1", len(offers))
	}

	o := offers[0]
	if o.Airline != "TK" {
		t.Errorf("Airline = %q", o.Airline)
	}
	if o.Price.Tax != 215.40 {
		t.Errorf("Tax = %f", o.Price.Tax)
	}
	if o.Outbound[0].Arrival.City != "Istanbul" {
		t.Errorf("Arrival.City = %q", o.Outbound[0].Arrival.City)
	}
	if o.Outbound[0].Arrival.Country != "Turkey" {
		t.Errorf("Arrival.Country = %q", o.Outbound[0].Arrival.Country)
	}
}

// --- Kiwi backend ---

const sampleKiwiJSON = `{
  "data": [
    {
      "id": "kw1",
      "price": 788,
      "conversion": {"currency": "USD"},
      "airlines": ["EK"],
      "route": [
        {
          "flyFrom": "JFK", "flyTo": "DXB",
          "cityFrom": "New York", "cityTo": "Dubai",
          "countryFrom": {"name": "United States"}, "countryTo": {"name": "United Arab Emirates"},
          "local_departure": "2026-09-14T22:20:00Z",
          "local_arrival": "2026-09-15T19:10:00Z",
          "airline": "EK", "flight_no": 202, "return": 0
        },
        {
          "flyFrom": "DXB", "flyTo": "SIN",
          "cityFrom": "Dubai", "cityTo": "Singapore",
          "countryFrom": {"name": "United Arab Emirates"}, "countryTo": {"name": "Singapore"},
          "local_departure": "2026-09-16T02:30:00Z",
          "local_arrival": "2026-09-16T14:05:00Z",
          "airline": "EK", "flight_no": 354, "return": 0
        }
      ]
    }
  ]
}`

func TestKiwiSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "k" {
			t.Errorf("apikey header = %q", r.Header.Get("apikey"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleKiwiJSON)
	}))
	defer ts.Close()

	old := kiwiAPIBase
	kiwiAPIBase = ts.URL
	defer func() { kiwiAPIBase = old }()

	p := &KiwiProvider{Client: ts.Client(), APIKey: "k"}
	offers, err := p.Search(context.Background(), testSearchParams())
	if err != nil {
		t.Fatalf("KiwiProvider.Search: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("len(offers) = %d, want 1", len(offers))
	}

	o := offers[0]
	if o.ID != "kiwi-kw1" {
		t.Errorf("ID = %q", o.ID)
	}
	if o.Price.Total != 788 {
		t.Errorf("Total = %f", o.Price.Total)
	}
	if len(o.Outbound) != 2 || len(o.Inbound) != 0 {
		t.Fatalf("segments = %d outbound, %d inbound", len(o.Outbound), len(o.Inbound))
	}
	if o.Outbound[1].FlightNumber != "EK354" {
		t.Errorf("FlightNumber = %q", o.Outbound[1].FlightNumber)
	}
}

func TestKiwiTransientFailureIsTyped(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	old := kiwiAPIBase
	kiwiAPIBase = ts.URL
	defer func() { kiwiAPIBase = old }()

	p := &KiwiProvider{Client: ts.Client(), APIKey: "k", Config: types.ProviderConfig{MaxRetries: 1}}
	_, err := p.Search(context.Background(), testSearchParams())
	if !errors.Is(err, ErrTemporary) {
		t.Errorf("err = %v, want ErrTemporary", err)
	}
	// 1 initial + 1 HTTP-level retry.
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

// --- Decorators ---

type stubProvider struct {
	name   string
	offers []types.Offer
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(context.Context, types.SearchParams) ([]types.Offer, error) {
	s.calls++
	return s.offers, s.err
}

func TestRateLimitedSpacesCalls(t *testing.T) {
	stub := &stubProvider{name: "stub"}
	p := NewRateLimited(stub, 20*time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := p.Search(context.Background(), testSearchParams()); err != nil {
			t.Fatalf("Search: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("three calls took %v, want at least 40ms", elapsed)
	}
}

func TestRateLimitedZeroIntervalIsPassthrough(t *testing.T) {
	stub := &stubProvider{name: "stub"}
	if p := NewRateLimited(stub, 0); p != FlightProvider(stub) {
		t.Error("zero interval should return the provider unchanged")
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	stub := &stubProvider{name: "stub", err: errors.New("boom")}
	p := NewBreaker(stub)

	for i := 0; i < 5; i++ {
		p.Search(context.Background(), testSearchParams())
	}

	before := stub.calls
	_, err := p.Search(context.Background(), testSearchParams())
	if !errors.Is(err, ErrTemporary) {
		t.Errorf("open breaker err = %v, want ErrTemporary", err)
	}
	if stub.calls != before {
		t.Error("open breaker should not reach the inner provider")
	}
}
