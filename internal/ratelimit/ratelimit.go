// Package ratelimit provides the throttling used by the public API: a
// fixed-window dedupe store keyed by (subject, actor, action) for
// engagement actions, and a token-bucket limiter keyed by caller address
// for the autocomplete path.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientEntry pairs a token bucket with its last use, so idle callers
// can be evicted.
type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter manages per-key token buckets. Keys are caller
// addresses, so the map is unbounded without eviction; buckets idle
// longer than the sweep age are dropped and recreated on next use.
type KeyedRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
	limit   rate.Limit
	burst   int

	done     chan struct{}
	stopOnce sync.Once
}

const (
	clientSweepInterval = 5 * time.Minute
	clientIdleAge       = 10 * time.Minute
)

// New creates a keyed limiter allowing rps requests per second with the
// given burst per key, and starts its eviction goroutine. Call Stop when
// done.
func New(rps float64, burst int) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		clients: make(map[string]*clientEntry),
		limit:   rate.Limit(rps),
		burst:   burst,
		done:    make(chan struct{}),
	}

	go krl.sweep()

	return krl
}

// Allow reports whether a request for the given key may proceed.
// Returns immediately without blocking.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.getLimiter(key).Allow()
}

// Wait blocks until a request for the given key is allowed or the
// context is canceled.
func (krl *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return krl.getLimiter(key).Wait(ctx)
}

func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	entry, ok := krl.clients[key]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.clients[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// Stop shuts down the eviction goroutine.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
}

func (krl *KeyedRateLimiter) sweep() {
	ticker := time.NewTicker(clientSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-krl.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-clientIdleAge)
			krl.mu.Lock()
			for key, entry := range krl.clients {
				if entry.lastSeen.Before(cutoff) {
					delete(krl.clients, key)
				}
			}
			krl.mu.Unlock()
		}
	}
}
