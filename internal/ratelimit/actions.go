package ratelimit

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/hydrahub/hydra-server/internal/domain"
)

// shardCount spreads unrelated keys across locks so concurrent actions
// on different subjects never contend.
const shardCount = 32

// Default throttle windows per action kind.
const (
	DefaultViewWindow     = 1 * time.Hour
	DefaultStarWindow     = 24 * time.Hour
	DefaultBookmarkWindow = 24 * time.Hour
	DefaultSweepInterval  = 5 * time.Minute
)

// ActionsConfig sets the throttle window per action kind and how often
// expired entries are swept. Zero values fall back to defaults.
type ActionsConfig struct {
	ViewWindow     time.Duration
	StarWindow     time.Duration
	BookmarkWindow time.Duration
	SweepInterval  time.Duration
}

func (c *ActionsConfig) applyDefaults() {
	if c.ViewWindow <= 0 {
		c.ViewWindow = DefaultViewWindow
	}
	if c.StarWindow <= 0 {
		c.StarWindow = DefaultStarWindow
	}
	if c.BookmarkWindow <= 0 {
		c.BookmarkWindow = DefaultBookmarkWindow
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
}

// actionEntry is one throttled (subject, actor, action) key. An entry
// starts as an unconfirmed claim; Record confirms it, Release drops it.
type actionEntry struct {
	expiresAt time.Time
	confirmed bool
}

type actionShard struct {
	mu      sync.Mutex
	entries map[string]*actionEntry
}

// Actions answers "may this actor perform this action on this subject
// right now?" with a fixed window per action kind. State is in-process
// and best effort: a restart clears it, which is accepted for
// abuse-dampening counters.
//
// Allow atomically claims the key, so two concurrent requests for the
// same key can never both proceed. Callers confirm the claim with
// Record after the counter increment succeeds, or drop it with Release
// if the increment fails.
type Actions struct {
	shards  [shardCount]actionShard
	windows map[domain.ActionKind]time.Duration

	done     chan struct{}
	stopOnce sync.Once

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewActions creates the action store and starts its sweep goroutine.
// Call Stop when done.
func NewActions(cfg ActionsConfig) *Actions {
	cfg.applyDefaults()

	a := &Actions{
		windows: map[domain.ActionKind]time.Duration{
			domain.ActionView:     cfg.ViewWindow,
			domain.ActionStar:     cfg.StarWindow,
			domain.ActionBookmark: cfg.BookmarkWindow,
		},
		done: make(chan struct{}),
		now:  time.Now,
	}
	for i := range a.shards {
		a.shards[i].entries = make(map[string]*actionEntry)
	}

	go a.sweep(cfg.SweepInterval)

	return a
}

// Allow reports whether the action may proceed, claiming the key if so.
// A claimed or confirmed key rejects every further Allow until its
// window lapses. Expired entries are reclaimed in place, so a hot key
// never leaks memory.
func (a *Actions) Allow(subject, actor string, action domain.ActionKind) bool {
	key := actionKey(subject, actor, action)
	shard := a.shardFor(key)
	now := a.now()

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if e, ok := shard.entries[key]; ok && now.Before(e.expiresAt) {
		return false
	}
	shard.entries[key] = &actionEntry{expiresAt: now.Add(a.windows[action])}
	return true
}

// Record confirms a claim made by Allow. A confirmed entry survives
// until its window lapses.
func (a *Actions) Record(subject, actor string, action domain.ActionKind) {
	key := actionKey(subject, actor, action)
	shard := a.shardFor(key)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if e, ok := shard.entries[key]; ok {
		e.confirmed = true
	}
}

// Release drops an unconfirmed claim so a failed increment does not
// throttle the actor. Confirmed entries are left alone.
func (a *Actions) Release(subject, actor string, action domain.ActionKind) {
	key := actionKey(subject, actor, action)
	shard := a.shardFor(key)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if e, ok := shard.entries[key]; ok && !e.confirmed {
		delete(shard.entries, key)
	}
}

// Stop shuts down the sweep goroutine.
func (a *Actions) Stop() {
	a.stopOnce.Do(func() {
		close(a.done)
	})
}

// len reports the total live entry count. Test hook.
func (a *Actions) len() int {
	n := 0
	for i := range a.shards {
		a.shards[i].mu.Lock()
		n += len(a.shards[i].entries)
		a.shards[i].mu.Unlock()
	}
	return n
}

func (a *Actions) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			a.purgeExpired()
		}
	}
}

func (a *Actions) purgeExpired() {
	now := a.now()
	for i := range a.shards {
		shard := &a.shards[i]
		shard.mu.Lock()
		for key, e := range shard.entries {
			if !now.Before(e.expiresAt) {
				delete(shard.entries, key)
			}
		}
		shard.mu.Unlock()
	}
}

func (a *Actions) shardFor(key string) *actionShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &a.shards[h.Sum32()%shardCount]
}

func actionKey(subject, actor string, action domain.ActionKind) string {
	return subject + "\x00" + actor + "\x00" + string(action)
}
