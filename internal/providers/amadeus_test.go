package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightchart/internal/models"
	"github.com/dharmasatrya/flightchart/internal/ratelimit"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 2, Delays: []time.Duration{time.Millisecond}}
}

type fakeAmadeus struct {
	tokenCalls  atomic.Int32
	offerCalls  atomic.Int32
	offersReply func(w http.ResponseWriter, calls int32)
	airports    string
}

func (f *fakeAmadeus) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+tokenPath, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "id", r.PostForm.Get("client_id"))
		f.tokenCalls.Add(1)
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":1799}`))
	})
	mux.HandleFunc("POST "+flightOffersPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var body models.FlightSearchBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "GBP", body.CurrencyCode)
		f.offersReply(w, f.offerCalls.Add(1))
	})
	mux.HandleFunc("GET "+airportsPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "51.5", r.URL.Query().Get("latitude"))
		assert.Equal(t, "-0.12", r.URL.Query().Get("longitude"))
		assert.Equal(t, "500", r.URL.Query().Get("radius"))
		_, _ = w.Write([]byte(f.airports))
	})
	return mux
}

func newTestAmadeus(t *testing.T, f *fakeAmadeus) *AmadeusClient {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewAmadeusClient(AmadeusConfig{
		BaseURL:      srv.URL,
		ClientID:     "id",
		ClientSecret: "secret",
		HTTPClient:   srv.Client(),
		Limiter:      ratelimit.NewProviderLimiter(ratelimit.Limit{RequestsPerSecond: 1000, BurstSize: 100}),
		Retry:        fastRetry(),
	})
}

const offersJSON = `{"data":[{"id":"1","itineraries":[{"segments":[{"departure":{"iataCode":"JFK","at":"2023-04-13T09:00:00"},"carrierCode":"BA"}]}],"price":{"currency":"GBP","total":"321.40"}}]}`

func TestSearchFlightOffers(t *testing.T) {
	f := &fakeAmadeus{offersReply: func(w http.ResponseWriter, _ int32) {
		_, _ = w.Write([]byte(offersJSON))
	}}
	c := newTestAmadeus(t, f)
	body := models.FlightSearchBody{CurrencyCode: "GBP"}

	offers, err := c.SearchFlightOffers(context.Background(), body)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "1", offers[0].ID)
	price, ok := offers[0].TotalPrice()
	assert.True(t, ok)
	assert.Equal(t, 321.40, price)

	_, err = c.SearchFlightOffers(context.Background(), body)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.tokenCalls.Load(), "token should be reused until expiry")
}

func TestSearchFlightOffers_TokenRefreshedAfterExpiry(t *testing.T) {
	f := &fakeAmadeus{offersReply: func(w http.ResponseWriter, _ int32) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}}
	c := newTestAmadeus(t, f)
	now := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.SearchFlightOffers(context.Background(), models.FlightSearchBody{CurrencyCode: "GBP"})
	require.NoError(t, err)

	now = now.Add(31 * time.Minute)
	_, err = c.SearchFlightOffers(context.Background(), models.FlightSearchBody{CurrencyCode: "GBP"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), f.tokenCalls.Load())
}

func TestSearchFlightOffers_TokenRefreshedBeforeExpiry(t *testing.T) {
	f := &fakeAmadeus{offersReply: func(w http.ResponseWriter, _ int32) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}}
	c := newTestAmadeus(t, f)
	now := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.SearchFlightOffers(context.Background(), models.FlightSearchBody{CurrencyCode: "GBP"})
	require.NoError(t, err)

	// 1799s lifetime less the margin leaves 1769s.
	now = now.Add(1780 * time.Second)
	_, err = c.SearchFlightOffers(context.Background(), models.FlightSearchBody{CurrencyCode: "GBP"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), f.tokenCalls.Load())
}

func TestSearchFlightOffers_UnauthorizedDropsToken(t *testing.T) {
	f := &fakeAmadeus{offersReply: func(w http.ResponseWriter, calls int32) {
		if calls == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(offersJSON))
	}}
	c := newTestAmadeus(t, f)

	_, err := c.SearchFlightOffers(context.Background(), models.FlightSearchBody{CurrencyCode: "GBP"})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, int32(1), f.offerCalls.Load(), "401 is not retried")

	offers, err := c.SearchFlightOffers(context.Background(), models.FlightSearchBody{CurrencyCode: "GBP"})
	require.NoError(t, err)
	assert.Len(t, offers, 1)
	assert.Equal(t, int32(2), f.tokenCalls.Load())
}

func TestSearchFlightOffers_RetriesServerErrors(t *testing.T) {
	f := &fakeAmadeus{offersReply: func(w http.ResponseWriter, calls int32) {
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(offersJSON))
	}}
	c := newTestAmadeus(t, f)

	offers, err := c.SearchFlightOffers(context.Background(), models.FlightSearchBody{CurrencyCode: "GBP"})
	require.NoError(t, err)
	assert.Len(t, offers, 1)
	assert.Equal(t, int32(3), f.offerCalls.Load())
}

func TestSearchFlightOffers_Failures(t *testing.T) {
	cases := []struct {
		name      string
		reply     func(w http.ResponseWriter, calls int32)
		wantCalls int32
		check     func(t *testing.T, err error)
	}{
		{
			name: "client error is not retried",
			reply: func(w http.ResponseWriter, _ int32) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"errors":[{"title":"INVALID FORMAT"}]}`))
			},
			wantCalls: 1,
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, http.StatusBadRequest, se.StatusCode)
				assert.Contains(t, se.Body, "INVALID FORMAT")
			},
		},
		{
			name:      "rate limited until retries run out",
			reply:     func(w http.ResponseWriter, _ int32) { w.WriteHeader(http.StatusTooManyRequests) },
			wantCalls: 3,
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
			},
		},
		{
			name:      "missing data",
			reply:     func(w http.ResponseWriter, _ int32) { _, _ = w.Write([]byte(`{"meta":{"count":0}}`)) },
			wantCalls: 1,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
		{
			name:      "not json",
			reply:     func(w http.ResponseWriter, _ int32) { _, _ = w.Write([]byte(`<html>`)) },
			wantCalls: 1,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeAmadeus{offersReply: tc.reply}
			c := newTestAmadeus(t, f)

			_, err := c.SearchFlightOffers(context.Background(), models.FlightSearchBody{CurrencyCode: "GBP"})
			require.Error(t, err)

			var pe *ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, AmadeusName, pe.Provider)
			assert.Equal(t, tc.wantCalls, f.offerCalls.Load())
			tc.check(t, err)
		})
	}
}

func TestNearestAirports(t *testing.T) {
	f := &fakeAmadeus{airports: `{"data":[
		{"iataCode":"STN","relevance":12.5},
		{"iataCode":"LHR","relevance":98.1},
		{"iataCode":"LCY","relevance":5},
		{"iataCode":"LGW","relevance":40}
	]}`}
	c := newTestAmadeus(t, f)

	codes, err := c.NearestAirports(context.Background(), models.LatLng{Lat: 51.5, Lng: -0.12})
	require.NoError(t, err)
	assert.Equal(t, []string{"LHR", "LGW", "STN"}, codes)
}

func TestNearestAirports_Empty(t *testing.T) {
	f := &fakeAmadeus{airports: `{"data":[]}`}
	c := newTestAmadeus(t, f)

	_, err := c.NearestAirports(context.Background(), models.LatLng{Lat: 51.5, Lng: -0.12})
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestCaller_StopsOnCancelledContext(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newCaller("test", srv.Client(), nil, RetryConfig{MaxRetries: 5, Delays: []time.Duration{time.Hour}})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var dst map[string]any
	err := c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	}, &dst)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryConfig_Delay(t *testing.T) {
	r := RetryConfig{Delays: []time.Duration{time.Millisecond, 2 * time.Millisecond}}
	assert.Equal(t, time.Millisecond, r.delay(1))
	assert.Equal(t, 2*time.Millisecond, r.delay(2))
	assert.Equal(t, 2*time.Millisecond, r.delay(5))
	assert.Equal(t, time.Duration(0), RetryConfig{}.delay(1))
}
