package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	if err := store.Set(ctx, "A", "k1", []byte("v1"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	_ = store.Set(ctx, "A", "k2", []byte("v2"), 0)
	_ = store.Set(ctx, "B", "k1", []byte("other"), time.Hour)

	got, err := store.Get(ctx, "A", "k1")
	if err != nil || string(got.OrEmpty()) != "v1" {
		t.Fatalf("expected v1, got %q err=%v", got.OrEmpty(), err)
	}

	_ = store.Delete(ctx, "A", "k1")
	if got, _ := store.Get(ctx, "A", "k1"); got.IsPresent() {
		t.Fatal("expected k1 deleted")
	}

	_ = store.Clear(ctx, "A")
	if got, _ := store.Get(ctx, "A", "k2"); got.IsPresent() {
		t.Fatal("expected partition A cleared")
	}
	if got, _ := store.Get(ctx, "B", "k1"); string(got.OrEmpty()) != "other" {
		t.Fatal("partition B should be untouched")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	_ = store.Set(ctx, "A", "short", []byte("v"), 20*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	if got, _ := store.Get(ctx, "A", "short"); got.IsPresent() {
		t.Fatal("expected entry to expire")
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if err := store.Set(context.Background(), "A", "k", nil, 0); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestMemoryStoreKeepsPartitionsApart(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	if err := store.Set(ctx, "A", "B::k", []byte("from-A"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	for _, name := range []string{"A::B", "", "::"} {
		if err := store.Set(ctx, name, "k", []byte("v"), time.Hour); !errors.Is(err, ErrInvalidCacheName) {
			t.Fatalf("Set(%q) = %v, want ErrInvalidCacheName", name, err)
		}
		if got, err := store.Get(ctx, name, "k"); !errors.Is(err, ErrInvalidCacheName) || got.IsPresent() {
			t.Fatalf("Get(%q) = %v, %v; want ErrInvalidCacheName", name, got, err)
		}
		if err := store.Clear(ctx, name); !errors.Is(err, ErrInvalidCacheName) {
			t.Fatalf("Clear(%q) = %v, want ErrInvalidCacheName", name, err)
		}
	}

	_ = store.Set(ctx, "AB", "k", []byte("other"), time.Hour)
	if err := store.Clear(ctx, "A"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got, _ := store.Get(ctx, "A", "B::k"); got.IsPresent() {
		t.Fatal("expected A to be cleared")
	}
	if got, _ := store.Get(ctx, "AB", "k"); string(got.OrEmpty()) != "other" {
		t.Fatal("Clear(A) must not touch cache AB")
	}
}
