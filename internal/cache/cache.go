// Package cache provides the bounded in-memory response cache used to
// memoize provider and TTS results. Entries expire after a fixed age and,
// when the cache is full, the oldest-written entry is evicted to make room.
//
// Eviction is by write time, not access time: a Get never refreshes an
// entry's timestamp, so a frequently read but old entry is still the first
// to go. Expired entries are removed lazily by the Get that finds them;
// there is no background sweep.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Defaults applied by New when the corresponding argument is zero.
const (
	DefaultMaxSize = 100
	DefaultMaxAge  = 5 * time.Minute
)

type entry[V any] struct {
	data      V
	timestamp time.Time
	hits      int
	seq       uint64 // insertion order, breaks timestamp ties on eviction
}

// Cache is a capacity- and age-bounded memoization map from string keys to
// opaque payloads. All methods are safe for concurrent use; each operation,
// including the check-capacity/evict/insert sequence inside Set, runs under
// a single lock.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	maxAge  time.Duration
	maxSize int
	seq     uint64
	now     func() time.Time

	// OnEvent, when set, is called with "expired" or "evicted" each time an
	// entry is dropped. Set it before first use; it runs under the cache
	// lock and must not call back into the cache.
	OnEvent func(event string)
}

// New creates a Cache holding at most maxSize entries, each valid for
// maxAge after its write. Zero (or negative) arguments select the defaults.
func New[V any](maxSize int, maxAge time.Duration) *Cache[V] {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Cache[V]{
		entries: make(map[string]*entry[V]),
		maxAge:  maxAge,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// GenerateKey derives a cache key from a flat parameter map. Parameter names
// are sorted before serialization, so maps that are equal as sets of pairs
// produce the same key regardless of construction order. Values that fail to
// JSON-marshal (the caller contract excludes them) fall back to their fmt
// rendering instead of erroring.
func GenerateKey(params map[string]any) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(name)
		b.WriteByte('=')
		if v, err := json.Marshal(params[name]); err == nil {
			b.Write(v)
		} else {
			fmt.Fprintf(&b, "%v", params[name])
		}
	}

	h := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(h[:])
}

// Get returns the payload stored under key, or false if the key is unknown
// or its entry has outlived maxAge. An expired entry is deleted on the spot.
// A hit increments the entry's hit counter but does not refresh its
// timestamp.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.timestamp) > c.maxAge {
		delete(c.entries, key)
		c.notify("expired")
		return zero, false
	}
	e.hits++
	return e.data, true
}

// Set writes data under key, overwriting any existing entry and resetting
// its timestamp and hit count. When the cache is full and key is not already
// present, the oldest-written entry is evicted first; an overwrite never
// evicts.
func (c *Cache[V]) Set(key string, data V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.seq++
	c.entries[key] = &entry[V]{data: data, timestamp: c.now(), seq: c.seq}
}

// evictOldest removes the entry with the smallest timestamp. Equal
// timestamps fall back to insertion order: the first-written entry loses.
func (c *Cache[V]) evictOldest() {
	var (
		victim string
		oldest *entry[V]
	)
	for key, e := range c.entries {
		if oldest == nil || e.timestamp.Before(oldest.timestamp) ||
			(e.timestamp.Equal(oldest.timestamp) && e.seq < oldest.seq) {
			victim, oldest = key, e
		}
	}
	if oldest != nil {
		delete(c.entries, victim)
		c.notify("evicted")
	}
}

func (c *Cache[V]) notify(event string) {
	if c.OnEvent != nil {
		c.OnEvent(event)
	}
}

// Clear removes all entries. Calling it on an empty cache is a no-op.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[V])
}

// Len returns the number of entries currently held, counting expired entries
// that no Get has touched yet.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats is a point-in-time snapshot of cache contents for observability.
type Stats struct {
	Size int      `json:"size"`
	Hits int      `json:"hits"`
	Keys []string `json:"keys"`
}

// Stats reports the current entry count, the sum of hit counters across all
// present entries, and a snapshot of the keys. It never mutates state: an
// expired entry still counts until a Get on its key removes it.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Size: len(c.entries), Keys: make([]string, 0, len(c.entries))}
	for key, e := range c.entries {
		s.Hits += e.hits
		s.Keys = append(s.Keys, key)
	}
	return s
}
