package cachepolicy

import (
	"fmt"
	"maps"
	"time"

	"github.com/bluesky/zoom/pkg/cache"
)

// Policy maps cache names to entry time-to-live. Names without an override use the
// default TTL. A Policy is immutable once built.
type Policy struct {
	defaultTTL time.Duration
	overrides  map[string]time.Duration
}

// NewPolicy validates and builds a Policy. The default TTL and every override must be
// positive, and override names must be valid cache names.
func NewPolicy(defaultTTL time.Duration, overrides map[string]time.Duration) (*Policy, error) {
	if defaultTTL <= 0 {
		return nil, fmt.Errorf("cachepolicy: default ttl must be positive, got %v", defaultTTL)
	}
	for name, ttl := range overrides {
		if err := cache.ValidateCacheName(name); err != nil {
			return nil, fmt.Errorf("cachepolicy: %w", err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("cachepolicy: ttl for cache %q must be positive, got %v", name, ttl)
		}
	}
	return &Policy{defaultTTL: defaultTTL, overrides: maps.Clone(overrides)}, nil
}

// TTL returns the override for cacheName if one is configured, else the default.
func (p *Policy) TTL(cacheName string) time.Duration {
	if ttl, ok := p.overrides[cacheName]; ok {
		return ttl
	}
	return p.defaultTTL
}

func (p *Policy) DefaultTTL() time.Duration { return p.defaultTTL }

// Overrides returns a copy of the per-cache TTLs.
func (p *Policy) Overrides() map[string]time.Duration {
	return maps.Clone(p.overrides)
}
