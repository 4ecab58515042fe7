// Package filter narrows upstream offers to the user's time windows and stop limit.
package filter

import (
	"github.com/dharmasatrya/flightchart/internal/flightdate"
	"github.com/dharmasatrya/flightchart/internal/models"
)

// Apply returns the offers that satisfy prefs on every leg they carry, preserving order.
// The input slice is not modified.
func Apply(offers []models.FlightOffer, prefs models.UserPreferences) []models.FlightOffer {
	result := make([]models.FlightOffer, 0, len(offers))

	for _, o := range offers {
		if matchesFilters(o, prefs) {
			result = append(result, o)
		}
	}

	return result
}

func matchesFilters(o models.FlightOffer, prefs models.UserPreferences) bool {
	for _, leg := range []int{models.OutboundLeg, models.ReturnLeg} {
		if o.Leg(leg) == nil {
			continue
		}
		if !matchesLeg(o, leg, prefs) {
			return false
		}
	}
	return true
}

func matchesLeg(o models.FlightOffer, leg int, prefs models.UserPreferences) bool {
	window := prefs.WindowFor(leg)

	if at, ok := o.DepartureAt(leg); ok {
		minHour, maxHour := window.Departure()
		if !within(at, minHour, maxHour) {
			return false
		}
	}

	if at, ok := o.ArrivalAt(leg); ok {
		minHour, maxHour := window.Arrival()
		if !within(at, minHour, maxHour) {
			return false
		}
	}

	if n, ok := o.Connections(leg); ok && n > prefs.MaxStops {
		return false
	}

	return true
}

// within reports whether the time of day of at lies in [minHour, maxHour].
// Timestamps that cannot be parsed are let through.
func within(at string, minHour, maxHour float64) bool {
	hour, ok := flightdate.HourOfDay(at)
	if !ok {
		return true
	}
	return hour >= minHour && hour <= maxHour
}
