package pricecache

import (
	"context"
	"sync"
	"time"

	"finanzazen-telegram-bot/internal/provider"

	log "github.com/sirupsen/logrus"
)

// DefaultTTL bounds how stale a served price can be.
const DefaultTTL = 60 * time.Second

type entry struct {
	value       float64
	unavailable bool
	fetchedAt   time.Time
}

// Resolver is the upstream the cache memoizes, satisfied by
// provider.Registry.
type Resolver interface {
	FetchPrice(ctx context.Context, symbol string) (float64, error)
}

// Cache memoizes price lookups per symbol for a TTL. Unavailable
// results are cached too, so a provider outage is not hammered with
// retries inside one TTL window.
type Cache struct {
	resolver Resolver
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

func New(resolver Resolver, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		resolver: resolver,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]entry),
	}
}

// Resolve returns the price for a symbol, serving from cache while the
// entry is younger than the TTL. Misses and stale entries go upstream
// and the result, available or not, overwrites the entry.
func (c *Cache) Resolve(ctx context.Context, symbol string) (float64, error) {
	symbol = provider.Normalize(symbol)

	c.mu.Lock()
	if e, ok := c.entries[symbol]; ok && c.now().Sub(e.fetchedAt) < c.ttl {
		c.mu.Unlock()
		if e.unavailable {
			return 0, provider.ErrUnavailable
		}
		return e.value, nil
	}
	c.mu.Unlock()

	value, err := c.resolver.FetchPrice(ctx, symbol)
	if err != nil {
		log.Debugf("caching unavailable result for %s", symbol)
	}

	c.mu.Lock()
	c.entries[symbol] = entry{value: value, unavailable: err != nil, fetchedAt: c.now()}
	c.mu.Unlock()

	if err != nil {
		return 0, provider.ErrUnavailable
	}
	return value, nil
}
