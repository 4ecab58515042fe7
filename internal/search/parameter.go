// Package search turns a chart request into an Amadeus flight-offers query.
package search

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/dharmasatrya/flightchart/internal/flightdate"
	"github.com/dharmasatrya/flightchart/internal/models"
)

const (
	OutboundID = "1"
	ReturnID   = "2"

	DefaultMaxFlightOffers = 7
	DefaultRadiusKm        = 50
	DefaultDateWindow      = "I3D"
)

// Validator is satisfied by validation.Validator.
type Validator interface {
	Validate(i any) error
}

type Options struct {
	MaxFlightOffers int
	RadiusKm        int
	DateWindow      string
}

func (o Options) withDefaults() Options {
	if o.MaxFlightOffers <= 0 {
		o.MaxFlightOffers = DefaultMaxFlightOffers
	}
	if o.RadiusKm <= 0 {
		o.RadiusKm = DefaultRadiusKm
	}
	if o.DateWindow == "" {
		o.DateWindow = DefaultDateWindow
	}
	return o
}

// FlightSearchParameter is a validated search body.
type FlightSearchParameter struct {
	body models.FlightSearchBody
}

// NewFlightSearchParameter builds the search body for the listing's trip between the two
// resolved location codes and validates it with v.
func NewFlightSearchParameter(
	v Validator,
	prefs models.UserPreferences,
	listing models.ListingInfo,
	originCode, destinationCode string,
	opts Options,
) (*FlightSearchParameter, error) {
	opts = opts.withDefaults()

	body := models.FlightSearchBody{
		CurrencyCode: listing.CurrencyCode,
		Travelers:    travelers(listing.GuestCounter),
		Sources:      []string{"GDS"},
	}

	var legIDs []string
	if prefs.SearchOutboundFlight {
		body.OriginDestinations = append(body.OriginDestinations,
			leg(OutboundID, originCode, destinationCode, listing.OutboundDate, prefs.OutboundTimeWindow, opts))
		legIDs = append(legIDs, OutboundID)
	}
	if prefs.SearchReturnFlight {
		body.OriginDestinations = append(body.OriginDestinations,
			leg(ReturnID, destinationCode, originCode, listing.ReturnDate, prefs.ReturnTimeWindow, opts))
		legIDs = append(legIDs, ReturnID)
	}

	maxConnections := prefs.MaxStops
	body.SearchCriteria = &models.SearchCriteria{
		MaxFlightOffers:      opts.MaxFlightOffers,
		OneFlightOfferPerDay: true,
		FlightFilters: &models.FlightFilters{
			CabinRestrictions: []models.CabinRestriction{{
				Cabin:                prefs.TravelClass,
				Coverage:             "ALL_SEGMENTS",
				OriginDestinationIDs: legIDs,
			}},
			ConnectionRestrictions: &models.ConnectionRestrictions{
				MaxNumberOfConnections: &maxConnections,
			},
		},
	}

	if err := v.Validate(body); err != nil {
		return nil, err
	}
	return &FlightSearchParameter{body: body}, nil
}

func (p *FlightSearchParameter) Body() models.FlightSearchBody {
	return p.body
}

// Key identifies the search for caching. Equal bodies give equal keys.
func (p *FlightSearchParameter) Key() string {
	data, _ := json.Marshal(p.body)
	hash := sha256.Sum256(data)
	return "offers:" + hex.EncodeToString(hash[:])
}

// travelers numbers guests from "1": adults, then children, then seated infants.
func travelers(g models.GuestCounter) []models.Traveler {
	out := make([]models.Traveler, 0, g.AdultsCount+g.ChildrenCount+g.InfantsCount)
	add := func(n int, kind string) {
		for i := 0; i < n; i++ {
			out = append(out, models.Traveler{ID: strconv.Itoa(len(out) + 1), TravelerType: kind})
		}
	}
	add(g.AdultsCount, models.TravelerAdult)
	add(g.ChildrenCount, models.TravelerChild)
	add(g.InfantsCount, models.TravelerSeatedInfant)
	return out
}

func leg(id, from, to string, date models.FlightDate, window models.TimeWindow, opts Options) models.OriginDestination {
	radius := opts.RadiusKm
	earliest, latest := window.Departure()

	return models.OriginDestination{
		ID:                      id,
		OriginLocationCode:      from,
		OriginRadius:            &radius,
		DestinationLocationCode: to,
		DestinationRadius:       &radius,
		DepartureDateTimeRange: &models.DateTimeRange{
			Date:       date,
			DateWindow: opts.DateWindow,
			Time:       flightdate.ClockString((earliest + latest) / 2),
			TimeWindow: TimeWindow(earliest, latest),
		},
	}
}

// TimeWindow is the Amadeus half-width of [earliest, latest] in whole hours, kept within 1H..12H.
func TimeWindow(earliest, latest float64) string {
	hours := int(math.Ceil((latest - earliest) / 2))
	hours = max(1, min(12, hours))
	return fmt.Sprintf("%dH", hours)
}
