package redis

import (
	"context"
	"testing"

	"github.com/wonny/lighthorse/backend/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on disabled client error = %v", err)
	}
}

func TestCache_Disabled(t *testing.T) {
	client, _ := New(&config.Config{})
	cache := NewCache(client, "test")
	ctx := context.Background()

	if cache.Enabled() {
		t.Error("Expected cache to be disabled")
	}

	if err := cache.Set(ctx, "key", []byte("v"), TTLHourly); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, found, err := cache.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found || data != nil {
		t.Error("Expected cache miss when Redis disabled")
	}
}

func TestCacheKeys(t *testing.T) {
	cache := NewCache(&Client{}, "lighthorse")

	if got := cache.fullKey(UpstreamKey("/rs-etf/mansfield")); got != "lighthorse:cache:upstream:/rs-etf/mansfield" {
		t.Errorf("unexpected full key %q", got)
	}
}

func TestCache_RoundTrip(t *testing.T) {
	client, mr := newMiniClient(t)
	cache := NewCache(client, "lighthorse")
	ctx := context.Background()

	if err := cache.Set(ctx, UpstreamKey("/rs-etf/mansfield"), []byte("payload"), TTLHourly); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, found, err := cache.Get(ctx, UpstreamKey("/rs-etf/mansfield"))
	if err != nil || !found || string(data) != "payload" {
		t.Fatalf("Get() = %q, %v, %v", data, found, err)
	}

	if ttl := mr.TTL("lighthorse:cache:upstream:/rs-etf/mansfield"); ttl != TTLHourly {
		t.Errorf("Expected TTL %v, got %v", TTLHourly, ttl)
	}

	mr.FastForward(TTLHourly)
	if _, found, _ := cache.Get(ctx, UpstreamKey("/rs-etf/mansfield")); found {
		t.Error("Expected miss after TTL")
	}
}
