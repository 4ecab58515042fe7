package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/flightchart/internal/logger"
	"github.com/dharmasatrya/flightchart/internal/models"
)

type RedisCache struct {
	client      *redis.Client
	offersTTL   time.Duration
	airportsTTL time.Duration
}

type RedisConfig struct {
	Host        string
	Port        string
	Password    string
	DB          int
	OffersTTL   time.Duration
	AirportsTTL time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:        "localhost",
		Port:        "6379",
		OffersTTL:   15 * time.Minute,
		AirportsTTL: 7 * 24 * time.Hour,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	return &RedisCache{
		client:      client,
		offersTTL:   cfg.OffersTTL,
		airportsTTL: cfg.AirportsTTL,
	}, nil
}

func (c *RedisCache) GetOffers(ctx context.Context, key string) ([]models.FlightOffer, bool) {
	var offers []models.FlightOffer
	if !c.get(ctx, offersKey(key), &offers) {
		return nil, false
	}
	return offers, true
}

func (c *RedisCache) SetOffers(ctx context.Context, key string, offers []models.FlightOffer) error {
	return c.set(ctx, offersKey(key), offers, c.offersTTL)
}

func (c *RedisCache) GetAirports(ctx context.Context, address string) (models.TopAirportCodes, bool) {
	var codes models.TopAirportCodes
	if !c.get(ctx, airportsKey(address), &codes) {
		return nil, false
	}
	return codes, true
}

func (c *RedisCache) SetAirports(ctx context.Context, address string, codes models.TopAirportCodes) error {
	return c.set(ctx, airportsKey(address), codes, c.airportsTTL)
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// get treats every failure as a miss; only unexpected errors are logged.
func (c *RedisCache) get(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.L().Warn().Err(err).Str("key", key).Msg("cache_get_failed")
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		logger.L().Warn().Err(err).Str("key", key).Msg("cache_decode_failed")
		return false
	}
	return true
}

func (c *RedisCache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}
