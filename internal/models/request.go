package models

// FlightSearchBody is the POST body of the Amadeus flight-offers search.
type FlightSearchBody struct {
	CurrencyCode       string              `json:"currencyCode,omitempty" validate:"omitempty,currency"`
	OriginDestinations []OriginDestination `json:"originDestinations" validate:"min=1,max=6,dive"`
	Travelers          []Traveler          `json:"travelers" validate:"min=1,max=18,dive"`
	Sources            []string            `json:"sources" validate:"len=1,dive,eq=GDS"`
	SearchCriteria     *SearchCriteria     `json:"searchCriteria,omitempty"`
}

type OriginDestination struct {
	ID                      string         `json:"id" validate:"required"`
	OriginLocationCode      string         `json:"originLocationCode,omitempty" validate:"omitempty,iata"`
	OriginRadius            *int           `json:"originRadius,omitempty" validate:"omitempty,min=0,max=300"`
	DestinationLocationCode string         `json:"destinationLocationCode,omitempty" validate:"omitempty,iata"`
	DestinationRadius       *int           `json:"destinationRadius,omitempty" validate:"omitempty,min=0,max=300"`
	DepartureDateTimeRange  *DateTimeRange `json:"departureDateTimeRange,omitempty"`
	ArrivalDateTimeRange    *DateTimeRange `json:"arrivalDateTimeRange,omitempty"`
}

// DateTimeRange uses Amadeus window notation: dateWindow like "I3D" (plus or minus three
// days) and timeWindow like "12H".
type DateTimeRange struct {
	Date       FlightDate `json:"date" validate:"required,flightdate"`
	DateWindow string     `json:"dateWindow,omitempty" validate:"omitempty,datewindow"`
	Time       string     `json:"time,omitempty" validate:"omitempty,clocktime"`
	TimeWindow string     `json:"timeWindow,omitempty" validate:"omitempty,timewindow"`
}

// Anchor is the departure range if present, otherwise the arrival range.
func (o OriginDestination) Anchor() *DateTimeRange {
	if o.DepartureDateTimeRange != nil {
		return o.DepartureDateTimeRange
	}
	return o.ArrivalDateTimeRange
}

const (
	TravelerAdult        = "ADULT"
	TravelerChild        = "CHILD"
	TravelerSenior       = "SENIOR"
	TravelerYoung        = "YOUNG"
	TravelerSeatedInfant = "SEATED_INFANT"
	TravelerHeldInfant   = "HELD_INFANT"
	TravelerStudent      = "STUDENT"
)

type Traveler struct {
	ID                string `json:"id" validate:"required"`
	TravelerType      string `json:"travelerType" validate:"required,oneof=ADULT CHILD SENIOR YOUNG SEATED_INFANT HELD_INFANT STUDENT"`
	AssociatedAdultID string `json:"associatedAdultId,omitempty" validate:"required_if=TravelerType HELD_INFANT"`
}

type SearchCriteria struct {
	MaxFlightOffers      int            `json:"maxFlightOffers,omitempty" validate:"omitempty,min=1,max=250"`
	MaxPrice             int            `json:"maxPrice,omitempty" validate:"omitempty,min=1"`
	OneFlightOfferPerDay bool           `json:"oneFlightOfferPerDay,omitempty"`
	FlightFilters        *FlightFilters `json:"flightFilters,omitempty"`
}

type FlightFilters struct {
	CabinRestrictions      []CabinRestriction      `json:"cabinRestrictions,omitempty" validate:"dive"`
	ConnectionRestrictions *ConnectionRestrictions `json:"connectionRestrictions,omitempty"`
}

type CabinRestriction struct {
	Cabin                string   `json:"cabin,omitempty" validate:"omitempty,oneof=ECONOMY PREMIUM_ECONOMY BUSINESS FIRST"`
	Coverage             string   `json:"coverage,omitempty" validate:"omitempty,oneof=MOST_SEGMENTS AT_LEAST_ONE_SEGMENT ALL_SEGMENTS"`
	OriginDestinationIDs []string `json:"originDestinationIds,omitempty"`
}

type ConnectionRestrictions struct {
	MaxNumberOfConnections *int `json:"maxNumberOfConnections,omitempty" validate:"omitempty,min=0,max=2"`
	NonStopPreferred       bool `json:"nonStopPreferred,omitempty"`
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrDatesOutOfOrder        ValidationError = "outboundDate must be before returnDate"
	ErrNoLegRequested         ValidationError = "at least one of searchOutboundFlight or searchReturnFlight is required"
	ErrInconsistentTimeWindow ValidationError = "earliest departure/arrival time must be before latest departure/arrival time"
	ErrDuplicateID            ValidationError = "ids must be unique"
	ErrNotChronological       ValidationError = "originDestinations are not in chronological order"
	ErrSeatedTravelers        ValidationError = "the total number of seated travelers must be between 1 and 9"
	ErrInfantsWithoutAdults   ValidationError = "at least one adult is needed per infant"
	ErrMissingAddress         ValidationError = "address is required"
)
