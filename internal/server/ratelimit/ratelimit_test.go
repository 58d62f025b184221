package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/drafts", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/drafts", "GET")
	assert.False(t, allowed, "11th request is denied")
	assert.Equal(t, 0, info.Remaining)
	assert.Positive(t, info.RetryAfter)
	assert.True(t, info.ResetTime.After(time.Now()))
}

func TestLimiter_Refill(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    10,
		DefaultWindow:   time.Minute,
		EndpointConfigs: []EndpointConfig{{Path: "/estimate", Method: "POST", Limit: 10, Window: time.Second, Burst: 1}},
	})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("127.0.0.1", "/estimate", "POST")
	require.True(t, allowed)
	allowed, _ = limiter.Allow("127.0.0.1", "/estimate", "POST")
	require.False(t, allowed)

	time.Sleep(150 * time.Millisecond)
	allowed, _ = limiter.Allow("127.0.0.1", "/estimate", "POST")
	assert.True(t, allowed, "one token refills every 100ms")
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
		Blacklist:     map[string]bool{"192.168.1.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/export", "POST")
		assert.True(t, allowed)
	}
	allowed, _ := limiter.Allow("192.168.1.1", "/health", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false, DefaultLimit: 1})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/export", "POST")
		assert.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/export", "POST")
		require.True(t, allowed)
		assert.Equal(t, 30, info.Limit)
	}
	allowed, _ := limiter.Allow("127.0.0.1", "/export", "POST")
	assert.False(t, allowed, "burst of 5 is exhausted")

	allowed, info := limiter.Allow("127.0.0.1", "/drafts", "GET")
	assert.True(t, allowed, "other endpoints keep their own allowance")
	assert.Equal(t, 100, info.Limit)

	allowed, _ = limiter.Allow("127.0.0.1", "/health", "GET")
	assert.True(t, allowed)
}

func TestLimiter_WildcardRuleSharesBucket(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: []EndpointConfig{{Path: "/drafts/*/export", Method: "POST", Limit: 2, Window: time.Hour}},
	})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("127.0.0.1", "/drafts/a/export", "POST")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("127.0.0.1", "/drafts/b/export", "POST")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("127.0.0.1", "/drafts/c/export", "POST")
	assert.False(t, allowed, "every draft id draws from the same allowance")

	allowed, _ = limiter.Allow("10.0.0.1", "/drafts/c/export", "POST")
	assert.True(t, allowed, "buckets are per client")
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})
	defer limiter.Stop()

	var allowedCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/drafts", "GET"); allowed {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(100), allowedCount.Load())
}

func TestLimiter_EvictIdle(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/drafts", "GET")
	}

	assert.Zero(t, limiter.evictIdle(time.Now().Add(-time.Minute)), "recently used buckets stay")
	assert.Equal(t, 10, limiter.evictIdle(time.Now().Add(time.Minute)))

	allowed, info := limiter.Allow("127.0.0.1", "/drafts", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 9, info.Remaining, "an evicted client starts with a full bucket")
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, CleanupInterval: time.Millisecond})
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/drafts", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path, method string
		wantPath     string
		wantLimit    int
	}{
		{"/health", "GET", "/health", 0},
		{"/templates", "GET", "/templates", 0},
		{"/export", "POST", "/export", 30},
		{"/export/all", "POST", "/export/all", 10},
		{"/drafts/123/export", "POST", "/drafts/*/export", 30},
		{"/drafts/123/token", "POST", "/drafts/*/token", 10},
		{"/drafts", "POST", "/drafts", 60},
		{"/drafts/123", "PUT", "/drafts/", 120},
		{"/drafts/123", "DELETE", "/drafts/", 60},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}

	assert.Nil(t, MatchEndpoint("/drafts/123", "GET", configs))
	assert.Nil(t, MatchEndpoint("/drafts/123/export/extra", "POST", configs))
	assert.Nil(t, MatchEndpoint("/drafts", "PUT", configs), "prefix rules need a deeper path")
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")
	t.Setenv("RATE_LIMIT_BLACKLIST", "")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	assert.Empty(t, cfg.Blacklist)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
