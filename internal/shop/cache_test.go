package shop

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
)

func newCache(t *testing.T) (*QuoteCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &QuoteCache{Client: client, TTL: time.Minute}, mr
}

func TestQuoteCacheRoundTrip(t *testing.T) {
	cache, _ := newCache(t)
	ctx := context.Background()
	key := QuoteKey("s1", 3)

	if _, ok := cache.Get(ctx, key); ok {
		t.Fatal("expected a miss on an empty cache")
	}

	session := NewSession("s1", fixedNow)
	if err := session.AddItem("p1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	view, _ := session.Quote(wednesday)
	if err := cache.Set(ctx, key, view); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok := cache.Get(ctx, key)
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.Pricing.Total != view.Pricing.Total {
		t.Fatalf("expected total %d, got %d", view.Pricing.Total, got.Pricing.Total)
	}
}

func TestQuoteCacheCorruptEntryIsAMiss(t *testing.T) {
	cache, mr := newCache(t)
	key := QuoteKey("s1", 1)
	if err := mr.Set(key, "not-json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok := cache.Get(context.Background(), key); ok {
		t.Fatal("expected corrupt payload to read as a miss")
	}
}

func TestQuoteCacheDisabledWithoutClient(t *testing.T) {
	var cache *QuoteCache
	if _, ok := cache.Get(context.Background(), "k"); ok {
		t.Fatal("nil cache must miss")
	}
	if err := cache.Set(context.Background(), "k", QuoteView{}); err != nil {
		t.Fatalf("nil cache set should no-op, got %v", err)
	}
}
