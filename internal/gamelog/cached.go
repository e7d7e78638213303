package gamelog

import (
	"context"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/Gill87/bucket-props/internal/datasource"
)

// CachedProvider layers an in-process TTL cache over another Provider so a
// player appearing on several props in one run is fetched once. Only
// successful results are cached; failures stay retryable.
type CachedProvider struct {
	inner     Provider
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewCachedProvider wraps a provider with a TTL history cache
func NewCachedProvider(inner Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// History implements Provider
func (p *CachedProvider) History(ctx context.Context, player datasource.PlayerInfo) FetchResult {
	key := player.ID
	if key == "" {
		key = player.FullName
	}

	p.mu.Lock()
	if cached, found := p.cache.Get(key); found {
		p.hitCount++
		p.mu.Unlock()
		if result, ok := cached.(FetchResult); ok {
			return result
		}
	} else {
		p.missCount++
		p.mu.Unlock()
	}

	result := p.inner.History(ctx, player)
	if result.Status == StatusOK {
		p.cache.Set(key, result, p.ttl)
	}
	return result
}

// Stats returns cache hit statistics
func (p *CachedProvider) Stats() (hits, misses uint64, ratio float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	hits = p.hitCount
	misses = p.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// Clear flushes the cache
func (p *CachedProvider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cache.Flush()
	p.hitCount = 0
	p.missCount = 0
}
