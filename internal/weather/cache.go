package weather

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/AnshRaj112/catchlog-backend/internal/conditions"
)

const DefaultCacheTTL = 10 * time.Minute

// Cache is a JSON cache such as services.CacheService.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedProvider serves repeated lookups for nearby coordinates from cache.
// Cache failures fall through to the provider.
type CachedProvider struct {
	next  conditions.WeatherFetcher
	cache Cache
	ttl   time.Duration
}

func NewCachedProvider(next conditions.WeatherFetcher, cache Cache, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedProvider{next: next, cache: cache, ttl: ttl}
}

func (p *CachedProvider) Current(ctx context.Context, lat, lng float64) (*conditions.Weather, error) {
	key := cacheKey(lat, lng)

	var cached conditions.Weather
	hit, err := p.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("weather: cache read failed: %v", err)
	}
	if hit {
		return &cached, nil
	}

	w, err := p.next.Current(ctx, lat, lng)
	if err != nil {
		return nil, err
	}
	if err := p.cache.SetWithTTL(ctx, key, w, p.ttl); err != nil {
		log.Printf("weather: cache write failed: %v", err)
	}
	return w, nil
}

// cacheKey rounds to two decimals, roughly one kilometre.
func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("weather:%.2f:%.2f", lat, lng)
}
