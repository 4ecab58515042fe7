package models

// FlightDate is a calendar date in YYYY-MM-DD form. Because the format is fixed width,
// string ordering matches calendar ordering.
type FlightDate string

// CheapestFlight is the chart-facing projection of a single flight offer.
type CheapestFlight struct {
	OutboundDate FlightDate  `json:"outboundDate"`
	OutboundTime string      `json:"outboundTime"`
	ReturnDate   *FlightDate `json:"returnDate"`
	ReturnTime   *string     `json:"returnTime"`
	FlightPrice  float64     `json:"flightPrice"`
	Carrier      *string     `json:"carrier"`
}

// DateFlights maps a date to the cheapest flight found for it; a nil value means no offer.
type DateFlights map[FlightDate]*CheapestFlight

type FrontendChartData struct {
	CheapestFlightsTripDuration  DateFlights                `json:"cheapestFlightsTripDuration"`
	CheapestFlightsAnyDuration   DateFlights                `json:"cheapestFlightsAnyDuration"`
	CheapestFlightOutboundReturn map[FlightDate]DateFlights `json:"cheapestFlightOutboundReturn"`
}

// NewFrontendChartData returns chart data with all three lookups allocated and empty.
func NewFrontendChartData() FrontendChartData {
	return FrontendChartData{
		CheapestFlightsTripDuration:  make(DateFlights),
		CheapestFlightsAnyDuration:   make(DateFlights),
		CheapestFlightOutboundReturn: make(map[FlightDate]DateFlights),
	}
}

type ChartMeta struct {
	Currency            string `json:"currency"`
	OriginLocation      string `json:"originLocation"`
	DestinationLocation string `json:"destinationLocation"`
	TripDuration        int    `json:"tripDuration"`
}

// TripIntent carries the requested outbound and return dates. Outbound must be strictly
// before return; that is checked at the validation boundary.
type TripIntent struct {
	OutboundDate FlightDate `json:"outboundDate" validate:"required,flightdate"`
	ReturnDate   FlightDate `json:"returnDate" validate:"required,flightdate"`
}

type ChartSummary struct {
	OfferCount     int      `json:"offerCount"`
	CheapestPrice  *float64 `json:"cheapestPrice"`
	CheapestFormat string   `json:"cheapestPriceFormatted,omitempty"`
}

type ChartRequest struct {
	ListingInfo     ListingInfo     `json:"listingInfo"`
	UserPreferences UserPreferences `json:"userPreferences"`
}

type ChartResponse struct {
	ChartData FrontendChartData `json:"chartData"`
	ChartMeta ChartMeta         `json:"chartMeta"`
	Summary   ChartSummary      `json:"summary"`
}

// AggregateRequest is used when the caller already holds the offers.
type AggregateRequest struct {
	Offers []FlightOffer `json:"offers" validate:"required,max=250"`
	TripIntent
}
