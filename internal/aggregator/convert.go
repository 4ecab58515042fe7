package aggregator

import (
	"github.com/dharmasatrya/flightchart/internal/flightdate"
	"github.com/dharmasatrya/flightchart/internal/models"
)

// ToCheapestFlight projects an offer onto the chart record. It returns nil when the offer
// lacks an outbound departure or a parseable total price.
func ToCheapestFlight(offer models.FlightOffer) *models.CheapestFlight {
	outboundAt, ok := offer.DepartureAt(models.OutboundLeg)
	if !ok {
		return nil
	}
	price, ok := offer.TotalPrice()
	if !ok {
		return nil
	}

	outboundDate, outboundTime := flightdate.SplitDateTime(outboundAt)
	flight := &models.CheapestFlight{
		OutboundDate: outboundDate,
		OutboundTime: outboundTime,
		FlightPrice:  price,
	}

	if returnAt, ok := offer.DepartureAt(models.ReturnLeg); ok {
		returnDate, returnTime := flightdate.SplitDateTime(returnAt)
		flight.ReturnDate = &returnDate
		if returnTime != "" {
			flight.ReturnTime = &returnTime
		}
	}

	if carrier, ok := offer.Carrier(); ok {
		flight.Carrier = &carrier
	}

	return flight
}
