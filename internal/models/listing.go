package models

// GuestCounter is the party size read from the listing page.
type GuestCounter struct {
	AdultsCount   int `json:"adultsCount" validate:"min=1"`
	ChildrenCount int `json:"childrenCount" validate:"min=0"`
	InfantsCount  int `json:"infantsCount" validate:"min=0"`
}

// ListingInfo is what the page scraper extracts from a rental listing.
type ListingInfo struct {
	DestinationLocation string       `json:"destinationLocation" validate:"required"`
	OutboundDate        FlightDate   `json:"outboundDate" validate:"required,flightdate"`
	ReturnDate          FlightDate   `json:"returnDate" validate:"required,flightdate"`
	GuestCounter        GuestCounter `json:"guestCounter"`
	CurrencyCode        string       `json:"currencyCode" validate:"required,currency"`
}

func (l ListingInfo) TripIntent() TripIntent {
	return TripIntent{OutboundDate: l.OutboundDate, ReturnDate: l.ReturnDate}
}

const (
	CabinEconomy        = "ECONOMY"
	CabinPremiumEconomy = "PREMIUM_ECONOMY"
	CabinBusiness       = "BUSINESS"
	CabinFirst          = "FIRST"
)

// TimeWindow bounds departure and arrival in hours of the day (0 to 24).
// Nil bounds take the full-day defaults.
type TimeWindow struct {
	EarliestDepartureTime *float64 `json:"earliestDepartureTime,omitempty" validate:"omitempty,min=0,max=24"`
	LatestDepartureTime   *float64 `json:"latestDepartureTime,omitempty" validate:"omitempty,min=0,max=24"`
	EarliestArrivalTime   *float64 `json:"earliestArrivalTime,omitempty" validate:"omitempty,min=0,max=24"`
	LatestArrivalTime     *float64 `json:"latestArrivalTime,omitempty" validate:"omitempty,min=0,max=24"`
}

func (w TimeWindow) Departure() (earliest, latest float64) {
	return valueOr(w.EarliestDepartureTime, 0), valueOr(w.LatestDepartureTime, 24)
}

func (w TimeWindow) Arrival() (earliest, latest float64) {
	return valueOr(w.EarliestArrivalTime, 0), valueOr(w.LatestArrivalTime, 24)
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// UserPreferences are set by the user in the extension popup.
type UserPreferences struct {
	OriginLocation       string     `json:"originLocation" validate:"required"`
	SearchOutboundFlight bool       `json:"searchOutboundFlight"`
	SearchReturnFlight   bool       `json:"searchReturnFlight"`
	TravelClass          string     `json:"travelClass" validate:"required,oneof=ECONOMY PREMIUM_ECONOMY BUSINESS FIRST"`
	MaxStops             int        `json:"maxStops" validate:"min=0,max=2"`
	OutboundTimeWindow   TimeWindow `json:"outboundTimeWindow"`
	ReturnTimeWindow     TimeWindow `json:"returnTimeWindow"`
}

// WindowFor returns the time window that applies to the given leg.
func (p UserPreferences) WindowFor(leg int) TimeWindow {
	if leg == ReturnLeg {
		return p.ReturnTimeWindow
	}
	return p.OutboundTimeWindow
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TopAirportCodes holds up to three airport or city codes ranked by relevance.
type TopAirportCodes []string

// Primary is the highest ranked code.
func (c TopAirportCodes) Primary() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}
