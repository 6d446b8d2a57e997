package edgefilter

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type windowRecord struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps fixed-window counters in a process-local go-cache.
// Entries expire with their window and the janitor sweeps them. The table
// never holds more than maxKeys records: when it is full, the record whose
// window ends first is dropped to make room.
type MemoryLimiter struct {
	mu      sync.Mutex
	cache   *gocache.Cache
	window  time.Duration
	limit   int
	maxKeys int
	now     func() time.Time
}

func NewMemoryLimiter(window time.Duration, limit, maxKeys int) *MemoryLimiter {
	return &MemoryLimiter{
		cache:   gocache.New(window, window),
		window:  window,
		limit:   limit,
		maxKeys: maxKeys,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if v, ok := l.cache.Get(key); ok {
		rec := v.(*windowRecord)
		if now.After(rec.resetAt) {
			rec.count = 1
			rec.resetAt = now.Add(l.window)
			l.cache.Set(key, rec, l.window)
		} else {
			rec.count++
		}
		return decide(rec.count, l.limit, rec.resetAt), nil
	}

	if l.maxKeys > 0 && l.cache.ItemCount() >= l.maxKeys {
		l.cache.DeleteExpired()
		if l.cache.ItemCount() >= l.maxKeys {
			l.evictOldest()
		}
	}
	rec := &windowRecord{count: 1, resetAt: now.Add(l.window)}
	l.cache.Set(key, rec, l.window)
	return decide(rec.count, l.limit, rec.resetAt), nil
}

func (l *MemoryLimiter) evictOldest() {
	var oldestKey string
	var oldest int64
	for k, item := range l.cache.Items() {
		if oldestKey == "" || item.Expiration < oldest {
			oldestKey, oldest = k, item.Expiration
		}
	}
	if oldestKey != "" {
		l.cache.Delete(oldestKey)
	}
}

// Len is the number of tracked keys, expired or not.
func (l *MemoryLimiter) Len() int {
	return l.cache.ItemCount()
}
