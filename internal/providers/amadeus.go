package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dharmasatrya/flightchart/internal/models"
	"github.com/dharmasatrya/flightchart/internal/ratelimit"
)

const (
	AmadeusName = "amadeus"

	DefaultAmadeusBaseURL = "https://test.api.amadeus.com"
	DefaultAirportRadius  = 500

	tokenPath         = "/v1/security/oauth2/token"
	flightOffersPath  = "/v2/shopping/flight-offers"
	airportsPath      = "/v1/reference-data/locations/airports"
	topAirportsToKeep = 3

	// tokenExpiryMargin is taken off expires_in.
	tokenExpiryMargin = 30 * time.Second
)

type AmadeusConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	// AirportRadiusKm bounds the nearest-airport search.
	AirportRadiusKm int
	HTTPClient      *http.Client
	Limiter         *ratelimit.ProviderLimiter
	Retry           RetryConfig
}

// AmadeusClient holds one client-credentials token and refreshes it once it expires.
type AmadeusClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	radiusKm     int
	caller       *caller
	now          func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewAmadeusClient(cfg AmadeusConfig) *AmadeusClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAmadeusBaseURL
	}
	if cfg.AirportRadiusKm <= 0 {
		cfg.AirportRadiusKm = DefaultAirportRadius
	}
	return &AmadeusClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		radiusKm:     cfg.AirportRadiusKm,
		caller:       newCaller(AmadeusName, cfg.HTTPClient, cfg.Limiter, cfg.Retry),
		now:          time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *AmadeusClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}.Encode()

	var tr tokenResponse
	err := c.caller.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, &tr)
	if err != nil {
		return "", err
	}
	if tr.AccessToken == "" {
		return "", NewProviderError(AmadeusName, fmt.Errorf("%w: empty access_token", ErrMalformedResponse))
	}

	c.token = tr.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenExpiryMargin)
	return c.token, nil
}

// dropTokenOnUnauthorized forgets the cached token after a 401.
func (c *AmadeusClient) dropTokenOnUnauthorized(err error) {
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized {
		return
	}

	c.mu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

func (c *AmadeusClient) authorized(ctx context.Context, method, rawURL string, payload []byte) (*http.Request, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// SearchFlightOffers posts body to the flight-offers search. A response without a data
// array is rejected; an empty array is a valid answer.
func (c *AmadeusClient) SearchFlightOffers(ctx context.Context, body models.FlightSearchBody) ([]models.FlightOffer, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, NewProviderError(AmadeusName, err)
	}

	// Token failures surface here instead of as request build errors.
	if _, err := c.accessToken(ctx); err != nil {
		return nil, err
	}

	var resp models.FlightOffersResponse
	err = c.caller.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return c.authorized(ctx, http.MethodPost, c.baseURL+flightOffersPath, payload)
	}, &resp)
	if err != nil {
		c.dropTokenOnUnauthorized(err)
		return nil, err
	}
	if resp.Data == nil {
		return nil, NewProviderError(AmadeusName, fmt.Errorf("%w: missing data", ErrMalformedResponse))
	}
	return resp.Data, nil
}

type airportsResponse struct {
	Data []airportLocation `json:"data"`
}

type airportLocation struct {
	IATACode  string  `json:"iataCode"`
	Name      string  `json:"name"`
	Relevance float64 `json:"relevance"`
}

// NearestAirports returns up to three IATA codes near at, most relevant first.
func (c *AmadeusClient) NearestAirports(ctx context.Context, at models.LatLng) ([]string, error) {
	q := url.Values{
		"latitude":  {strconv.FormatFloat(at.Lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(at.Lng, 'f', -1, 64)},
		"radius":    {strconv.Itoa(c.radiusKm)},
	}
	rawURL := c.baseURL + airportsPath + "?" + q.Encode()

	if _, err := c.accessToken(ctx); err != nil {
		return nil, err
	}

	var resp airportsResponse
	err := c.caller.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return c.authorized(ctx, http.MethodGet, rawURL, nil)
	}, &resp)
	if err != nil {
		c.dropTokenOnUnauthorized(err)
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, NewProviderError(AmadeusName, ErrNoResults)
	}

	airports := resp.Data
	sort.SliceStable(airports, func(i, j int) bool {
		return airports[i].Relevance > airports[j].Relevance
	})

	n := min(topAirportsToKeep, len(airports))
	codes := make([]string, n)
	for i := 0; i < n; i++ {
		codes[i] = airports[i].IATACode
	}
	return codes, nil
}
