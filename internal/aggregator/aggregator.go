// Package aggregator turns a flat list of flight offers into the cheapest-flight lookups
// that drive the price chart.
package aggregator

import (
	"github.com/dharmasatrya/flightchart/internal/flightdate"
	"github.com/dharmasatrya/flightchart/internal/models"
)

// indexedOffer caches the leg dates of an offer so each pass does not re-split strings.
type indexedOffer struct {
	offer       *models.FlightOffer
	outbound    models.FlightDate
	hasOutbound bool
	ret         models.FlightDate
	hasReturn   bool
}

func index(offers []models.FlightOffer) []indexedOffer {
	idx := make([]indexedOffer, len(offers))
	for i := range offers {
		idx[i].offer = &offers[i]
		idx[i].outbound, idx[i].hasOutbound = offers[i].LegDate(models.OutboundLeg)
		idx[i].ret, idx[i].hasReturn = offers[i].LegDate(models.ReturnLeg)
	}
	return idx
}

// GenerateFrontendChartData computes the three cheapest-flight lookups for offers.
// It does not modify offers and never fails; dates without a matching offer map to nil.
func GenerateFrontendChartData(offers []models.FlightOffer, intent models.TripIntent) models.FrontendChartData {
	chart := models.NewFrontendChartData()
	if len(offers) == 0 {
		return chart
	}

	idx := index(offers)

	earliest, latest, ok := outboundBounds(idx)
	if !ok {
		return chart
	}
	outboundDates := flightdate.Range(earliest, latest)
	tripDays := TripDurationDays(intent)

	for _, d := range outboundDates {
		chart.CheapestFlightsTripDuration[d] = cheapestTripDuration(idx, d, tripDays)
		chart.CheapestFlightsAnyDuration[d] = cheapestOf(idx, func(o indexedOffer) bool {
			return o.hasOutbound && o.outbound == d
		})
	}

	var returnDates []models.FlightDate
	if latestReturn, ok := latestReturnDate(idx); ok {
		returnDates = flightdate.Range(earliest, latestReturn)
	}

	for _, d := range outboundDates {
		row := make(models.DateFlights, len(returnDates))
		for _, r := range returnDates {
			row[r] = cheapestOf(idx, func(o indexedOffer) bool {
				return o.hasOutbound && o.outbound == d && o.hasReturn && o.ret == r
			})
		}
		chart.CheapestFlightOutboundReturn[d] = row
	}

	return chart
}

func cheapestTripDuration(idx []indexedOffer, d models.FlightDate, tripDays int) *models.CheapestFlight {
	target, err := flightdate.AddDays(d, tripDays)
	if err != nil {
		return nil
	}
	return cheapestOf(idx, func(o indexedOffer) bool {
		return o.hasOutbound && o.outbound == d && o.hasReturn && o.ret == target
	})
}

// TripDurationDays is the floor of the whole days between the outbound and return dates.
// Unparseable dates give zero.
func TripDurationDays(intent models.TripIntent) int {
	n, err := flightdate.DaysBetween(intent.OutboundDate, intent.ReturnDate)
	if err != nil {
		return 0
	}
	return n
}

// GenerateChartMeta assembles the chart header from the listing and the user's preferences.
func GenerateChartMeta(listing models.ListingInfo, prefs models.UserPreferences) models.ChartMeta {
	return models.ChartMeta{
		Currency:            listing.CurrencyCode,
		OriginLocation:      prefs.OriginLocation,
		DestinationLocation: listing.DestinationLocation,
		TripDuration:        TripDurationDays(listing.TripIntent()),
	}
}

// DateSpanDays is the number of days between the earliest outbound date and the latest
// outbound or return date across offers. The chart grows with the square of this span.
func DateSpanDays(offers []models.FlightOffer) int {
	idx := index(offers)
	earliest, latest, ok := outboundBounds(idx)
	if !ok {
		return 0
	}
	if r, ok := latestReturnDate(idx); ok && r > latest {
		latest = r
	}
	n, err := flightdate.DaysBetween(earliest, latest)
	if err != nil {
		return 0
	}
	return n
}

func outboundBounds(idx []indexedOffer) (earliest, latest models.FlightDate, ok bool) {
	for _, o := range idx {
		if !o.hasOutbound || !flightdate.Valid(o.outbound) {
			continue
		}
		if !ok {
			earliest, latest, ok = o.outbound, o.outbound, true
			continue
		}
		if o.outbound < earliest {
			earliest = o.outbound
		}
		if o.outbound > latest {
			latest = o.outbound
		}
	}
	return earliest, latest, ok
}

func latestReturnDate(idx []indexedOffer) (models.FlightDate, bool) {
	var latest models.FlightDate
	found := false
	for _, o := range idx {
		if !o.hasReturn || !flightdate.Valid(o.ret) {
			continue
		}
		if !found || o.ret > latest {
			latest, found = o.ret, true
		}
	}
	return latest, found
}

// cheapestOf scans offers in order and converts the lowest priced match. On an exact tie
// the first match wins. Offers without a parseable price are never selected.
func cheapestOf(idx []indexedOffer, match func(indexedOffer) bool) *models.CheapestFlight {
	var best *models.FlightOffer
	var bestPrice float64

	for _, o := range idx {
		if !match(o) {
			continue
		}
		price, ok := o.offer.TotalPrice()
		if !ok {
			continue
		}
		if best == nil || price < bestPrice {
			best, bestPrice = o.offer, price
		}
	}

	if best == nil {
		return nil
	}
	return ToCheapestFlight(*best)
}
