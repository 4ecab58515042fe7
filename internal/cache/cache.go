// Package cache stores upstream results that are expensive to recompute: flight-offer
// responses keyed by search parameters and airport lookups keyed by address.
package cache

import (
	"context"
	"strings"

	"github.com/dharmasatrya/flightchart/internal/models"
)

type Cache interface {
	GetOffers(ctx context.Context, key string) ([]models.FlightOffer, bool)
	SetOffers(ctx context.Context, key string, offers []models.FlightOffer) error
	GetAirports(ctx context.Context, address string) (models.TopAirportCodes, bool)
	SetAirports(ctx context.Context, address string, codes models.TopAirportCodes) error
	Close() error
}

const (
	offersPrefix   = "offers:"
	airportsPrefix = "airports:"
)

// offersKey namespaces a search key unless it already carries the prefix.
func offersKey(key string) string {
	if strings.HasPrefix(key, offersPrefix) {
		return key
	}
	return offersPrefix + key
}

// airportsKey folds case and whitespace so "London,  UK" and "london, uk" share an entry.
func airportsKey(address string) string {
	return airportsPrefix + strings.Join(strings.Fields(strings.ToLower(address)), " ")
}
