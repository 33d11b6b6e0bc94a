package cachepolicy

import (
	"errors"
	"testing"
	"time"

	"github.com/bluesky/zoom/pkg/cache"
)

func TestPolicyTTL(t *testing.T) {
	p, err := NewPolicy(30*time.Minute, map[string]time.Duration{
		"A": 24 * time.Hour,
		"B": 30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}

	tests := []struct {
		cache string
		want  time.Duration
	}{
		{"A", 24 * time.Hour},
		{"B", 30 * time.Minute},
		{"C", 30 * time.Minute},
		{"", 30 * time.Minute},
	}
	for _, tt := range tests {
		if got := p.TTL(tt.cache); got != tt.want {
			t.Errorf("TTL(%q) = %v, want %v", tt.cache, got, tt.want)
		}
	}
}

func TestNewPolicyValidation(t *testing.T) {
	if _, err := NewPolicy(0, nil); err == nil {
		t.Error("expected error for zero default ttl")
	}
	if _, err := NewPolicy(-time.Second, nil); err == nil {
		t.Error("expected error for negative default ttl")
	}
	if _, err := NewPolicy(time.Minute, map[string]time.Duration{"A": 0}); err == nil {
		t.Error("expected error for zero override ttl")
	}
	if _, err := NewPolicy(time.Minute, map[string]time.Duration{"A::B": time.Hour}); !errors.Is(err, cache.ErrInvalidCacheName) {
		t.Errorf("expected ErrInvalidCacheName for a name containing the separator, got %v", err)
	}
}

func TestPolicyCopiesOverrides(t *testing.T) {
	overrides := map[string]time.Duration{"A": time.Hour}
	p, err := NewPolicy(time.Minute, overrides)
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}
	overrides["A"] = time.Second
	if got := p.TTL("A"); got != time.Hour {
		t.Fatalf("policy changed after caller mutated its map: %v", got)
	}
	p.Overrides()["A"] = time.Second
	if got := p.TTL("A"); got != time.Hour {
		t.Fatalf("policy changed through Overrides(): %v", got)
	}
}
