package cache

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightchart/internal/models"
)

func sampleOffers() []models.FlightOffer {
	return []models.FlightOffer{
		{ID: "1", Price: &models.OfferPrice{Currency: "GBP", Total: "120.50"}},
		{ID: "2", Price: &models.OfferPrice{Currency: "GBP", Total: "99.00"}},
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "offers:abc", offersKey("abc"))
	assert.Equal(t, "offers:abc", offersKey("offers:abc"))
	assert.Equal(t, airportsKey("London,  UK "), airportsKey("london, uk"))
}

// RedisCache stores offers as JSON; sparse offers must come back unchanged.
func TestOffersJSONRoundTrip(t *testing.T) {
	offers := []models.FlightOffer{
		{
			Type:   "flight-offer",
			ID:     "1",
			Source: "GDS",
			Itineraries: []models.Itinerary{
				{
					Duration: "PT7H",
					Segments: []models.Segment{{
						Departure:     &models.SegmentEndpoint{IATACode: "JFK", Terminal: "7", At: "2023-04-13T09:00:00"},
						Arrival:       &models.SegmentEndpoint{IATACode: "LHR", At: "2023-04-13T21:00:00"},
						CarrierCode:   "BA",
						Number:        "178",
						NumberOfStops: 0,
					}},
				},
				{Segments: []models.Segment{{Departure: &models.SegmentEndpoint{At: "2023-04-16T10:00:00"}}}},
			},
			Price:                  &models.OfferPrice{Currency: "GBP", Total: "321.40", GrandTotal: "321.40"},
			ValidatingAirlineCodes: []string{"BA"},
		},
		{ID: "2", OneWay: true},
		{},
	}

	data, err := json.Marshal(offers)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"price":null`)
	assert.NotContains(t, string(data), `"numberOfStops"`)

	var got []models.FlightOffer
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, offers, got)

	empty, err := json.Marshal([]models.FlightOffer{})
	require.NoError(t, err)
	var decoded []models.FlightOffer
	require.NoError(t, json.Unmarshal(empty, &decoded))
	assert.NotNil(t, decoded)
	assert.Empty(t, decoded)
}

func TestMemoryCache_Offers(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(8, time.Minute, time.Minute)

	_, ok := c.GetOffers(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, c.SetOffers(ctx, "k", sampleOffers()))
	got, ok := c.GetOffers(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, sampleOffers(), got)

	got[0] = models.FlightOffer{ID: "mutated"}
	again, _ := c.GetOffers(ctx, "k")
	assert.Equal(t, "1", again[0].ID)
}

func TestMemoryCache_Airports(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(8, time.Minute, time.Minute)

	require.NoError(t, c.SetAirports(ctx, "London, UK", models.TopAirportCodes{"LON", "LTN"}))
	got, ok := c.GetAirports(ctx, "london,   uk")
	require.True(t, ok)
	assert.Equal(t, models.TopAirportCodes{"LON", "LTN"}, got)
}

func TestMemoryCache_Bounded(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, time.Minute, time.Minute)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.SetOffers(ctx, k, sampleOffers()))
	}

	_, ok := c.GetOffers(ctx, "a")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = c.GetOffers(ctx, "c")
	assert.True(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(8, 20*time.Millisecond, time.Minute)

	require.NoError(t, c.SetOffers(ctx, "k", sampleOffers()))
	assert.Eventually(t, func() bool {
		_, ok := c.GetOffers(ctx, "k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryCache_Close(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(8, time.Minute, time.Minute)
	require.NoError(t, c.SetAirports(ctx, "Paris", models.TopAirportCodes{"PAR"}))

	require.NoError(t, c.Close())
	_, ok := c.GetAirports(ctx, "Paris")
	assert.False(t, ok)
}

// Runs against a real server when REDIS_TEST_ADDR (host:port) is set.
func TestRedisCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	cfg := DefaultRedisConfig()
	cfg.Host, cfg.Port = host, port
	cfg.OffersTTL = 5 * time.Second

	c, err := NewRedisCache(cfg)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	key := "test-" + time.Now().Format(time.RFC3339Nano)

	_, ok := c.GetOffers(ctx, key)
	assert.False(t, ok)

	require.NoError(t, c.SetOffers(ctx, key, sampleOffers()))
	got, ok := c.GetOffers(ctx, key)
	require.True(t, ok)
	assert.Equal(t, sampleOffers(), got)

	require.NoError(t, c.SetAirports(ctx, key, models.TopAirportCodes{"NYC"}))
	codes, ok := c.GetAirports(ctx, key)
	require.True(t, ok)
	assert.Equal(t, models.TopAirportCodes{"NYC"}, codes)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(RedisConfig{Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
}
