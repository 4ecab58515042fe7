// Package providers talks to the upstream APIs: Google geocoding and the Amadeus
// flight-offers and airport reference endpoints.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dharmasatrya/flightchart/internal/logger"
	"github.com/dharmasatrya/flightchart/internal/models"
	"github.com/dharmasatrya/flightchart/internal/ratelimit"
)

type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.LatLng, error)
}

type OfferSearcher interface {
	SearchFlightOffers(ctx context.Context, body models.FlightSearchBody) ([]models.FlightOffer, error)
}

type AirportLocator interface {
	NearestAirports(ctx context.Context, at models.LatLng) ([]string, error)
}

var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrBuildRequest      = errors.New("cannot build request")
	ErrNoResults         = errors.New("no results")
)

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}

// StatusError is a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the same request may succeed later.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

type RetryConfig struct {
	MaxRetries int
	Delays     []time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		Delays: []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			400 * time.Millisecond,
		},
	}
}

func (r RetryConfig) delay(attempt int) time.Duration {
	if len(r.Delays) == 0 {
		return 0
	}
	idx := attempt - 1
	if idx >= len(r.Delays) {
		idx = len(r.Delays) - 1
	}
	return r.Delays[idx]
}

// maxErrorBody caps how much of an error response is kept in StatusError.
const maxErrorBody = 512

// caller performs rate limited JSON calls with retries on behalf of one provider.
type caller struct {
	provider string
	client   *http.Client
	limiter  *ratelimit.ProviderLimiter
	retry    RetryConfig
}

func newCaller(provider string, client *http.Client, limiter *ratelimit.ProviderLimiter, retry RetryConfig) *caller {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &caller{
		provider: provider,
		client:   client,
		limiter:  limiter,
		retry:    retry,
	}
}

// do sends the request built by newReq and decodes a 2xx JSON body into dst. newReq is called
// once per attempt so request bodies can be replayed. Transport errors, 429 and 5xx are
// retried; other failures are returned at once. Errors are wrapped in ProviderError.
func (c *caller) do(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error), dst any) error {
	var lastErr error

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retry.delay(attempt)):
			case <-ctx.Done():
				return NewProviderError(c.provider, ctx.Err())
			}
		}

		if err := c.limiter.Wait(ctx, c.provider); err != nil {
			return NewProviderError(c.provider, err)
		}

		err := c.attempt(ctx, newReq, dst)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(ctx, err) {
			break
		}
		logger.L().Warn().Err(err).Str("provider", c.provider).Int("attempt", attempt+1).Msg("upstream_attempt_failed")
	}

	return NewProviderError(c.provider, lastErr)
}

func (c *caller) attempt(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error), dst any) error {
	req, err := newReq(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildRequest, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return !errors.Is(err, ErrMalformedResponse) && !errors.Is(err, ErrBuildRequest)
}
