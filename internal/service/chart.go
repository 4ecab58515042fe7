// Package service orchestrates a chart request: airport resolution, the upstream offer
// search, filtering and aggregation.
package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dharmasatrya/flightchart/internal/aggregator"
	"github.com/dharmasatrya/flightchart/internal/filter"
	"github.com/dharmasatrya/flightchart/internal/logger"
	"github.com/dharmasatrya/flightchart/internal/models"
	"github.com/dharmasatrya/flightchart/internal/providers"
	"github.com/dharmasatrya/flightchart/internal/search"
	"github.com/dharmasatrya/flightchart/pkg/currency"
)

type AirportResolver interface {
	Resolve(ctx context.Context, address string) (models.TopAirportCodes, error)
}

type OfferCache interface {
	GetOffers(ctx context.Context, key string) ([]models.FlightOffer, bool)
	SetOffers(ctx context.Context, key string, offers []models.FlightOffer) error
}

type Config struct {
	Search  search.Options
	Timeout time.Duration
}

type ChartService struct {
	airports  AirportResolver
	offers    providers.OfferSearcher
	cache     OfferCache
	validator search.Validator
	config    Config
}

func NewChartService(airports AirportResolver, offers providers.OfferSearcher, c OfferCache, v search.Validator, config Config) *ChartService {
	return &ChartService{
		airports:  airports,
		offers:    offers,
		cache:     c,
		validator: v,
		config:    config,
	}
}

// BuildChart runs the full pipeline for a listing. The request is expected to be validated.
func (s *ChartService) BuildChart(ctx context.Context, req models.ChartRequest) (*models.ChartResponse, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	listing, prefs := req.ListingInfo, req.UserPreferences

	var origin, destination models.TopAirportCodes
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		codes, err := s.airports.Resolve(gctx, prefs.OriginLocation)
		if err != nil {
			return fmt.Errorf("resolve origin %q: %w", prefs.OriginLocation, err)
		}
		origin = codes
		return nil
	})
	g.Go(func() error {
		codes, err := s.airports.Resolve(gctx, listing.DestinationLocation)
		if err != nil {
			return fmt.Errorf("resolve destination %q: %w", listing.DestinationLocation, err)
		}
		destination = codes
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	param, err := search.NewFlightSearchParameter(s.validator, prefs, listing, origin.Primary(), destination.Primary(), s.config.Search)
	if err != nil {
		return nil, fmt.Errorf("build search parameter: %w", err)
	}

	offers, cacheHit, err := s.searchOffers(ctx, param)
	if err != nil {
		return nil, err
	}

	filtered := filter.Apply(offers, prefs)
	chart := aggregator.GenerateFrontendChartData(filtered, listing.TripIntent())

	logger.L().Info().
		Str("origin", origin.Primary()).
		Str("destination", destination.Primary()).
		Int("offers", len(offers)).
		Int("offers_kept", len(filtered)).
		Bool("cache_hit", cacheHit).
		Msg("chart_built")

	return &models.ChartResponse{
		ChartData: chart,
		ChartMeta: aggregator.GenerateChartMeta(listing, prefs),
		Summary:   summarize(filtered, listing.CurrencyCode),
	}, nil
}

func (s *ChartService) searchOffers(ctx context.Context, param *search.FlightSearchParameter) ([]models.FlightOffer, bool, error) {
	key := param.Key()
	if offers, ok := s.cache.GetOffers(ctx, key); ok {
		return offers, true, nil
	}

	offers, err := s.offers.SearchFlightOffers(ctx, param.Body())
	if err != nil {
		return nil, false, fmt.Errorf("search flight offers: %w", err)
	}

	if err := s.cache.SetOffers(ctx, key, offers); err != nil {
		logger.L().Warn().Err(err).Str("key", key).Msg("offers_cache_set_failed")
	}
	return offers, false, nil
}

// AggregateOffers builds chart data from offers the caller already holds.
func (s *ChartService) AggregateOffers(offers []models.FlightOffer, intent models.TripIntent) models.FrontendChartData {
	return aggregator.GenerateFrontendChartData(offers, intent)
}

// Airports resolves a single address.
func (s *ChartService) Airports(ctx context.Context, address string) (models.TopAirportCodes, error) {
	return s.airports.Resolve(ctx, address)
}

func summarize(offers []models.FlightOffer, currencyCode string) models.ChartSummary {
	summary := models.ChartSummary{OfferCount: len(offers)}

	for _, o := range offers {
		price, ok := o.TotalPrice()
		if !ok {
			continue
		}
		if summary.CheapestPrice == nil || price < *summary.CheapestPrice {
			p := price
			summary.CheapestPrice = &p
		}
	}

	if summary.CheapestPrice != nil {
		summary.CheapestFormat = currency.Format(*summary.CheapestPrice, currencyCode)
	}
	return summary
}
