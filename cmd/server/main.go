package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dharmasatrya/flightchart/internal/cache"
	"github.com/dharmasatrya/flightchart/internal/config"
	"github.com/dharmasatrya/flightchart/internal/handler"
	"github.com/dharmasatrya/flightchart/internal/logger"
	"github.com/dharmasatrya/flightchart/internal/providers"
	"github.com/dharmasatrya/flightchart/internal/ratelimit"
	"github.com/dharmasatrya/flightchart/internal/search"
	"github.com/dharmasatrya/flightchart/internal/service"
	"github.com/dharmasatrya/flightchart/internal/validation"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal().Err(err).Msg("Failed to load config")
	}
	logger.InitWith(cfg.Log.Level, cfg.Log.Pretty)

	chartCache, err := newCache(cfg.Cache)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("Failed to initialize cache")
	}
	defer chartCache.Close()

	rateLimiter := ratelimit.NewProviderLimiterWithDefaults()
	rateLimiter.SetProviderLimit(providers.AmadeusName, ratelimit.Limit{RequestsPerSecond: cfg.Amadeus.RPS, BurstSize: cfg.Amadeus.Burst})
	rateLimiter.SetProviderLimit(providers.GoogleName, ratelimit.Limit{RequestsPerSecond: cfg.Google.RPS, BurstSize: cfg.Google.Burst})

	retry := providers.RetryConfig{
		MaxRetries: cfg.Retry.MaxRetries,
		Delays:     cfg.Retry.Delays,
	}
	httpClient := &http.Client{Timeout: cfg.Search.Timeout}

	amadeus := providers.NewAmadeusClient(providers.AmadeusConfig{
		BaseURL:         cfg.Amadeus.BaseURL,
		ClientID:        cfg.Amadeus.ClientID,
		ClientSecret:    cfg.Amadeus.ClientSecret,
		AirportRadiusKm: cfg.Search.AirportRadiusKm,
		HTTPClient:      httpClient,
		Limiter:         rateLimiter,
		Retry:           retry,
	})
	geocoder := providers.NewGoogleGeocoder(providers.GoogleConfig{
		BaseURL:    cfg.Google.BaseURL,
		APIKey:     cfg.Google.APIKey,
		HTTPClient: httpClient,
		Limiter:    rateLimiter,
		Retry:      retry,
	})
	resolver := providers.NewAirportResolver(geocoder, amadeus, chartCache)

	validator := validation.New()
	chartService := service.NewChartService(resolver, amadeus, chartCache, validator, service.Config{
		Search:  search.Options{MaxFlightOffers: cfg.Search.MaxFlightOffers},
		Timeout: cfg.Server.RequestTimeout,
	})
	chartHandler := handler.NewChartHandler(chartService, cfg.Search.MaxDateSpanDays)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator

	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	e.Use(middleware.CORS())

	api := e.Group("/api/v1")
	api.POST("/chart", chartHandler.Chart)
	api.POST("/chart/offers", chartHandler.AggregateOffers)
	api.GET("/airports", chartHandler.Airports)
	e.GET("/health", handler.HealthHandler)

	go func() {
		logger.L().Info().Str("port", cfg.Server.Port).Bool("redis", cfg.Cache.Enabled).Msg("Starting flight chart server")
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.L().Error().Err(err).Msg("Server shutdown failed")
	}
}

func newCache(cfg config.CacheConfig) (cache.Cache, error) {
	if !cfg.Enabled {
		logger.L().Info().Int("size", cfg.MemorySize).Msg("Redis disabled, using in-memory cache")
		return cache.NewMemoryCache(cfg.MemorySize, cfg.OffersTTL, cfg.AirportsTTL), nil
	}

	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Host:        cfg.RedisHost,
		Port:        cfg.RedisPort,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		OffersTTL:   cfg.OffersTTL,
		AirportsTTL: cfg.AirportsTTL,
	})
	if err != nil {
		return nil, err
	}
	logger.L().Info().Str("host", cfg.RedisHost).Str("port", cfg.RedisPort).Dur("offers_ttl", cfg.OffersTTL).Msg("Redis cache enabled")
	return redisCache, nil
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.L().Info()
			if v.Error != nil {
				event = logger.L().Error().Err(v.Error)
			}
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Int64("latency_ms", v.Latency.Milliseconds()).
				Str("client_ip", v.RemoteIP).
				Msg("http_request")
			return nil
		},
	})
}
