// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Price holds the monetary breakdown of an offer.
type Price struct {
	// Total is the full itinerary price including taxes.
	Total float64 `json:"total" yaml:"total"`

	// Base is the fare before taxes.
	Base float64 `json:"base" yaml:"base"`

	// Tax is the tax portion of the total.
	Tax float64 `json:"tax" yaml:"tax"`

	// Currency is the ISO 4217 currency code (e.g. "USD").
	Currency string `json:"currency" yaml:"currency"`
}

// Stop describes one end of a flown segment.
type Stop struct {
	// Airport is the IATA airport code (e.g. "DOH").
	Airport string `json:"airport" yaml:"airport"`

	// City is the city the airport serves.
	City string `json:"city" yaml:"city"`

	// Country is the airport country.
	Country string `json:"country" yaml:"country"`

	// Time is the local departure or arrival time.
	Time time.Time `json:"time" yaml:"time"`

	// Timezone is the IANA timezone name for Time (e.g. "Asia/Qatar").
	Timezone string `json:"timezone,omitempty" yaml:"timezone,omitempty"`
}

// Segment is one flown leg of an itinerary. Segments are ordered within an
// Offer direction; the gap between consecutive segments defines a layover.
type Segment struct {
	Departure Stop `json:"departure" yaml:"departure"`
	Arrival   Stop `json:"arrival" yaml:"arrival"`

	// CarrierCode is the two-letter airline code (e.g. "QR").
	CarrierCode string `json:"carrier_code" yaml:"carrier_code"`

	// CarrierName is the marketing airline name.
	CarrierName string `json:"carrier_name,omitempty" yaml:"carrier_name,omitempty"`

	// FlightNumber is the carrier flight number (e.g. "QR702").
	FlightNumber string `json:"flight_number" yaml:"flight_number"`

	// Aircraft is the equipment type, when the provider reports it.
	Aircraft string `json:"aircraft,omitempty" yaml:"aircraft,omitempty"`

	// DurationMinutes is the in-air duration of the leg.
	DurationMinutes int `json:"duration_minutes" yaml:"duration_minutes"`
}

// Offer is one priced itinerary as normalized by a provider adapter.
// Offers are immutable once an adapter returns them.
type Offer struct {
	// ID is the provider offer identifier, or a synthesized one when the
	// provider does not supply a stable ID.
	ID string `json:"id" yaml:"id"`

	// Provider tags which adapter produced this offer (e.g. "amadeus").
	Provider string `json:"provider" yaml:"provider"`

	Price Price `json:"price" yaml:"price"`

	// Outbound is the ordered segment sequence for the outbound direction.
	Outbound []Segment `json:"outbound" yaml:"outbound"`

	// Inbound is the optional return direction. Empty for one-way offers.
	Inbound []Segment `json:"inbound,omitempty" yaml:"inbound,omitempty"`

	// Airline is the primary carrier code, taken from the first outbound segment.
	Airline string `json:"airline" yaml:"airline"`

	// OutboundMinutes is the total elapsed time of the outbound direction.
	OutboundMinutes int `json:"outbound_minutes" yaml:"outbound_minutes"`

	// InboundMinutes is the total elapsed time of the inbound direction, if any.
	InboundMinutes int `json:"inbound_minutes,omitempty" yaml:"inbound_minutes,omitempty"`
}

// Layover is a raw connection window derived from two consecutive segments.
// It is computed once during extraction and never mutated afterwards;
// enrichment wraps it in an EnrichedLayover.
type Layover struct {
	// Airport is the connection airport code.
	Airport string `json:"airport" yaml:"airport"`

	// City is the connection city.
	City string `json:"city" yaml:"city"`

	// Country is the connection country.
	Country string `json:"country" yaml:"country"`

	// DurationMinutes is the connection window: next departure minus prior arrival.
	DurationMinutes int `json:"duration_minutes" yaml:"duration_minutes"`

	// Arrival is when the inbound leg lands.
	Arrival time.Time `json:"arrival" yaml:"arrival"`

	// Departure is when the onward leg leaves.
	Departure time.Time `json:"departure" yaml:"departure"`

	// Latitude and Longitude are looked up from the airport code during
	// extraction. Zero when the airport is not in the catalog.
	Latitude  float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`

	// OfferID links the candidate back to the itinerary it was extracted from.
	OfferID string `json:"offer_id" yaml:"offer_id"`

	// OfferPrice carries the owning itinerary's total price for cost scoring.
	OfferPrice float64 `json:"offer_price" yaml:"offer_price"`
}
