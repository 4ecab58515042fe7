// Package config loads runtime settings from defaults, an optional .env file and the
// environment, in increasing order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration.
//
// Example ENV:
//
//	PORT=8080
//	CACHE_ENABLED=true
//	REDIS_HOST=localhost
//	AMADEUS_CLIENT_ID=...
//	AMADEUS_CLIENT_SECRET=...
//	GOOGLE_MAPS_API_KEY=...
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Cache   CacheConfig
	Amadeus AmadeusConfig
	Google  GoogleConfig
	Retry   RetryConfig
	Search  SearchConfig
}

// BodyLimit uses echo's size notation, e.g. "2M".
type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	BodyLimit      string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// CacheConfig selects Redis when Enabled, otherwise a bounded in-memory cache of MemorySize entries.
type CacheConfig struct {
	Enabled       bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	OffersTTL     time.Duration
	AirportsTTL   time.Duration
	MemorySize    int
}

type AmadeusConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RPS          float64
	Burst        int
}

type GoogleConfig struct {
	BaseURL string
	APIKey  string
	RPS     float64
	Burst   int
}

// RetryConfig is applied to every upstream call. Delays are used in order; the last one
// repeats when MaxRetries exceeds their count.
type RetryConfig struct {
	MaxRetries int
	Delays     []time.Duration
}

// MaxDateSpanDays bounds the dates accepted by the offers endpoint.
type SearchConfig struct {
	MaxFlightOffers int
	AirportRadiusKm int
	Timeout         time.Duration
	MaxDateSpanDays int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("BODY_LIMIT", "2M")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("OFFERS_CACHE_TTL", "15m")
	v.SetDefault("AIRPORTS_CACHE_TTL", "168h")
	v.SetDefault("MEMORY_CACHE_SIZE", 512)

	v.SetDefault("AMADEUS_BASE_URL", "https://test.api.amadeus.com")
	v.SetDefault("AMADEUS_RPS", 10)
	v.SetDefault("AMADEUS_BURST", 10)

	v.SetDefault("GOOGLE_MAPS_BASE_URL", "https://maps.googleapis.com")
	v.SetDefault("GOOGLE_RPS", 20)
	v.SetDefault("GOOGLE_BURST", 20)

	v.SetDefault("MAX_RETRIES", 3)
	v.SetDefault("RETRY_DELAYS", "100ms 200ms 400ms")

	v.SetDefault("MAX_FLIGHT_OFFERS", 7)
	v.SetDefault("AIRPORT_RADIUS_KM", 500)
	v.SetDefault("SEARCH_TIMEOUT", "20s")
	v.SetDefault("MAX_DATE_SPAN_DAYS", 60)
}

// Load reads the configuration and reports every missing required variable at once.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(".env")
	_ = v.ReadInConfig() // optional

	v.AutomaticEnv()

	delays, err := parseDelays(v.GetString("RETRY_DELAYS"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
			BodyLimit:      v.GetString("BODY_LIMIT"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Pretty: v.GetBool("LOG_PRETTY"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			OffersTTL:     v.GetDuration("OFFERS_CACHE_TTL"),
			AirportsTTL:   v.GetDuration("AIRPORTS_CACHE_TTL"),
			MemorySize:    v.GetInt("MEMORY_CACHE_SIZE"),
		},
		Amadeus: AmadeusConfig{
			BaseURL:      strings.TrimRight(v.GetString("AMADEUS_BASE_URL"), "/"),
			ClientID:     v.GetString("AMADEUS_CLIENT_ID"),
			ClientSecret: v.GetString("AMADEUS_CLIENT_SECRET"),
			RPS:          v.GetFloat64("AMADEUS_RPS"),
			Burst:        v.GetInt("AMADEUS_BURST"),
		},
		Google: GoogleConfig{
			BaseURL: strings.TrimRight(v.GetString("GOOGLE_MAPS_BASE_URL"), "/"),
			APIKey:  v.GetString("GOOGLE_MAPS_API_KEY"),
			RPS:     v.GetFloat64("GOOGLE_RPS"),
			Burst:   v.GetInt("GOOGLE_BURST"),
		},
		Retry: RetryConfig{
			MaxRetries: v.GetInt("MAX_RETRIES"),
			Delays:     delays,
		},
		Search: SearchConfig{
			MaxFlightOffers: v.GetInt("MAX_FLIGHT_OFFERS"),
			AirportRadiusKm: v.GetInt("AIRPORT_RADIUS_KM"),
			Timeout:         v.GetDuration("SEARCH_TIMEOUT"),
			MaxDateSpanDays: v.GetInt("MAX_DATE_SPAN_DAYS"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseDelays(s string) ([]time.Duration, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	delays := make([]time.Duration, 0, len(fields))
	for _, f := range fields {
		d, err := time.ParseDuration(f)
		if err != nil {
			return nil, fmt.Errorf("RETRY_DELAYS: %w", err)
		}
		delays = append(delays, d)
	}
	return delays, nil
}

func (c Config) validate() error {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "PORT")
	}
	if c.Amadeus.ClientID == "" {
		missing = append(missing, "AMADEUS_CLIENT_ID")
	}
	if c.Amadeus.ClientSecret == "" {
		missing = append(missing, "AMADEUS_CLIENT_SECRET")
	}
	if c.Google.APIKey == "" {
		missing = append(missing, "GOOGLE_MAPS_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.Retry.MaxRetries > 0 && len(c.Retry.Delays) == 0 {
		return fmt.Errorf("RETRY_DELAYS must not be empty when MAX_RETRIES is %d", c.Retry.MaxRetries)
	}
	if c.Cache.MemorySize <= 0 {
		return fmt.Errorf("MEMORY_CACHE_SIZE must be positive, got %d", c.Cache.MemorySize)
	}
	if c.Search.MaxDateSpanDays <= 0 {
		return fmt.Errorf("MAX_DATE_SPAN_DAYS must be positive, got %d", c.Search.MaxDateSpanDays)
	}
	return nil
}
