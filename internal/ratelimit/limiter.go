// Package ratelimit keeps one token bucket per upstream provider.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

type ProviderLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults Limit
}

type Limit struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultLimit applies to providers without an explicit limit. Amadeus test keys allow
// 10 requests per second.
func DefaultLimit() Limit {
	return Limit{
		RequestsPerSecond: 10,
		BurstSize:         10,
	}
}

func NewProviderLimiter(defaults Limit) *ProviderLimiter {
	return &ProviderLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: defaults,
	}
}

func NewProviderLimiterWithDefaults() *ProviderLimiter {
	return NewProviderLimiter(DefaultLimit())
}

func (p *ProviderLimiter) GetLimiter(provider string) *rate.Limiter {
	p.mu.RLock()
	limiter, exists := p.limiters[provider]
	p.mu.RUnlock()

	if exists {
		return limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, exists = p.limiters[provider]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(p.defaults.RequestsPerSecond), p.defaults.BurstSize)
	p.limiters[provider] = limiter
	return limiter
}

// SetProviderLimit replaces the bucket for provider. Non-positive values fall back to the defaults.
func (p *ProviderLimiter) SetProviderLimit(provider string, l Limit) {
	if l.RequestsPerSecond <= 0 {
		l.RequestsPerSecond = p.defaults.RequestsPerSecond
	}
	if l.BurstSize <= 0 {
		l.BurstSize = p.defaults.BurstSize
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.limiters[provider] = rate.NewLimiter(rate.Limit(l.RequestsPerSecond), l.BurstSize)
}

// Wait blocks until provider may make another call or ctx is done. A nil limiter never blocks.
func (p *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	if p == nil {
		return nil
	}
	return p.GetLimiter(provider).Wait(ctx)
}
