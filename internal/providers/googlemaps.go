package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/dharmasatrya/flightchart/internal/models"
	"github.com/dharmasatrya/flightchart/internal/ratelimit"
)

const (
	GoogleName = "google"

	DefaultGoogleBaseURL = "https://maps.googleapis.com"

	geocodePath = "/maps/api/geocode/json"
)

type GoogleConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Limiter    *ratelimit.ProviderLimiter
	Retry      RetryConfig
}

type GoogleGeocoder struct {
	baseURL string
	apiKey  string
	caller  *caller
}

func NewGoogleGeocoder(cfg GoogleConfig) *GoogleGeocoder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGoogleBaseURL
	}
	return &GoogleGeocoder{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		caller:  newCaller(GoogleName, cfg.HTTPClient, cfg.Limiter, cfg.Retry),
	}
}

type geocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Results      []geocodeResult `json:"results"`
}

type geocodeResult struct {
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location *models.LatLng `json:"location"`
	} `json:"geometry"`
}

// Geocode returns the location of the best match for address.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (models.LatLng, error) {
	rawURL := g.baseURL + geocodePath + "?address=" + formatAddress(address) + "&key=" + url.QueryEscape(g.apiKey)

	var resp geocodeResponse
	err := g.caller.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	}, &resp)
	if err != nil {
		return models.LatLng{}, err
	}

	switch resp.Status {
	case "OK", "":
	case "ZERO_RESULTS":
		return models.LatLng{}, NewProviderError(GoogleName, ErrNoResults)
	default:
		return models.LatLng{}, NewProviderError(GoogleName, fmt.Errorf("geocode status %s: %s", resp.Status, resp.ErrorMessage))
	}

	if len(resp.Results) == 0 {
		return models.LatLng{}, NewProviderError(GoogleName, ErrNoResults)
	}
	loc := resp.Results[0].Geometry.Location
	if loc == nil {
		return models.LatLng{}, NewProviderError(GoogleName, fmt.Errorf("%w: result without location", ErrMalformedResponse))
	}
	return *loc, nil
}

var nonWord = regexp.MustCompile(`[^\w\s]`)

// formatAddress turns punctuation into spaces and joins the remaining words with '+',
// e.g. "10 Downing St., London" becomes "10+Downing+St+London".
func formatAddress(address string) string {
	return strings.Join(strings.Fields(nonWord.ReplaceAllString(address, " ")), "+")
}
