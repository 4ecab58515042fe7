package models

import (
	"strconv"
	"strings"
)

// Itinerary indexes within an offer.
const (
	OutboundLeg = 0
	ReturnLeg   = 1
)

// FlightOffersResponse is the body returned by the Amadeus flight-offers search.
type FlightOffersResponse struct {
	Warnings []map[string]any `json:"warnings,omitempty"`
	Data     []FlightOffer    `json:"data"`
	Meta     *ResponseMeta    `json:"meta,omitempty"`
}

type ResponseMeta struct {
	Count int `json:"count"`
}

// FlightOffer mirrors the Amadeus flight offer. Every nested field is optional so that
// sparse offers decode instead of failing the whole response.
type FlightOffer struct {
	Type                   string      `json:"type,omitempty"`
	ID                     string      `json:"id,omitempty"`
	Source                 string      `json:"source,omitempty"`
	OneWay                 bool        `json:"oneWay,omitempty"`
	LastTicketingDate      string      `json:"lastTicketingDate,omitempty"`
	Itineraries            []Itinerary `json:"itineraries,omitempty"`
	Price                  *OfferPrice `json:"price,omitempty"`
	ValidatingAirlineCodes []string    `json:"validatingAirlineCodes,omitempty"`
}

type Itinerary struct {
	Duration string    `json:"duration,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
}

type Segment struct {
	Departure     *SegmentEndpoint `json:"departure,omitempty"`
	Arrival       *SegmentEndpoint `json:"arrival,omitempty"`
	CarrierCode   string           `json:"carrierCode,omitempty"`
	Number        string           `json:"number,omitempty"`
	ID            string           `json:"id,omitempty"`
	NumberOfStops int              `json:"numberOfStops,omitempty"`
}

type SegmentEndpoint struct {
	IATACode string `json:"iataCode,omitempty"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at,omitempty"`
}

type OfferPrice struct {
	Currency   string `json:"currency,omitempty"`
	Total      string `json:"total,omitempty"`
	Base       string `json:"base,omitempty"`
	GrandTotal string `json:"grandTotal,omitempty"`
}

// Leg returns the itinerary at index i, or nil if the offer has no such leg.
func (o FlightOffer) Leg(i int) *Itinerary {
	if i < 0 || i >= len(o.Itineraries) {
		return nil
	}
	return &o.Itineraries[i]
}

// DepartureAt is the raw departure.at of the first segment of leg i.
func (o FlightOffer) DepartureAt(i int) (string, bool) {
	leg := o.Leg(i)
	if leg == nil || len(leg.Segments) == 0 {
		return "", false
	}
	dep := leg.Segments[0].Departure
	if dep == nil || dep.At == "" {
		return "", false
	}
	return dep.At, true
}

// ArrivalAt is the raw arrival.at of the last segment of leg i.
func (o FlightOffer) ArrivalAt(i int) (string, bool) {
	leg := o.Leg(i)
	if leg == nil || len(leg.Segments) == 0 {
		return "", false
	}
	arr := leg.Segments[len(leg.Segments)-1].Arrival
	if arr == nil || arr.At == "" {
		return "", false
	}
	return arr.At, true
}

// LegDate is the calendar date part of the leg's first departure.
func (o FlightOffer) LegDate(i int) (FlightDate, bool) {
	at, ok := o.DepartureAt(i)
	if !ok {
		return "", false
	}
	date, _, _ := strings.Cut(at, "T")
	if date == "" {
		return "", false
	}
	return FlightDate(date), true
}

// Carrier is the carrier code of the first outbound segment.
func (o FlightOffer) Carrier() (string, bool) {
	leg := o.Leg(OutboundLeg)
	if leg == nil || len(leg.Segments) == 0 || leg.Segments[0].CarrierCode == "" {
		return "", false
	}
	return leg.Segments[0].CarrierCode, true
}

// TotalPrice parses price.total. Offers without a parseable total report false.
func (o FlightOffer) TotalPrice() (float64, bool) {
	if o.Price == nil || o.Price.Total == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(o.Price.Total, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Connections is the number of connections on leg i (segments minus one).
func (o FlightOffer) Connections(i int) (int, bool) {
	leg := o.Leg(i)
	if leg == nil || len(leg.Segments) == 0 {
		return 0, false
	}
	return len(leg.Segments) - 1, true
}
