package cache

import (
	"context"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dharmasatrya/flightchart/internal/models"
)

// MemoryCache is a bounded, expiring in-process cache. Slices are cloned on the way in and out.
type MemoryCache struct {
	offers   *expirable.LRU[string, []models.FlightOffer]
	airports *expirable.LRU[string, models.TopAirportCodes]
}

func NewMemoryCache(size int, offersTTL, airportsTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		offers:   expirable.NewLRU[string, []models.FlightOffer](size, nil, offersTTL),
		airports: expirable.NewLRU[string, models.TopAirportCodes](size, nil, airportsTTL),
	}
}

func (c *MemoryCache) GetOffers(_ context.Context, key string) ([]models.FlightOffer, bool) {
	offers, ok := c.offers.Get(offersKey(key))
	if !ok {
		return nil, false
	}
	return slices.Clone(offers), true
}

func (c *MemoryCache) SetOffers(_ context.Context, key string, offers []models.FlightOffer) error {
	c.offers.Add(offersKey(key), slices.Clone(offers))
	return nil
}

func (c *MemoryCache) GetAirports(_ context.Context, address string) (models.TopAirportCodes, bool) {
	codes, ok := c.airports.Get(airportsKey(address))
	if !ok {
		return nil, false
	}
	return slices.Clone(codes), true
}

func (c *MemoryCache) SetAirports(_ context.Context, address string, codes models.TopAirportCodes) error {
	c.airports.Add(airportsKey(address), slices.Clone(codes))
	return nil
}

func (c *MemoryCache) Close() error {
	c.offers.Purge()
	c.airports.Purge()
	return nil
}
