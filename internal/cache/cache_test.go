package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests advance cache time deterministically.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache[V any](maxSize int, maxAge time.Duration) (*Cache[V], *fakeClock) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	c := New[V](maxSize, maxAge)
	c.now = clk.now
	return c, clk
}

func TestGenerateKey_OrderIndependent(t *testing.T) {
	k1 := GenerateKey(map[string]any{"message": "hello", "personality": "friend"})
	k2 := GenerateKey(map[string]any{"personality": "friend", "message": "hello"})
	if k1 != k2 {
		t.Errorf("expected identical keys, got %s vs %s", k1, k2)
	}
}

func TestGenerateKey_DistinguishesValues(t *testing.T) {
	k1 := GenerateKey(map[string]any{"message": "hello", "personality": "friend"})
	k2 := GenerateKey(map[string]any{"message": "hello", "personality": "zen"})
	if k1 == k2 {
		t.Error("expected different keys for different parameter values")
	}
}

func TestGenerateKey_MixedTypes(t *testing.T) {
	k1 := GenerateKey(map[string]any{"n": 3, "temp": 0.7, "stream": false})
	k2 := GenerateKey(map[string]any{"stream": false, "temp": 0.7, "n": 3})
	if k1 != k2 {
		t.Errorf("expected identical keys, got %s vs %s", k1, k2)
	}
}

func TestMissThenHit(t *testing.T) {
	c, _ := newTestCache[string](10, time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss on fresh cache")
	}
	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got != "v" {
		t.Errorf("expected v, got %s", got)
	}
}

func TestOverwriteResetsHits(t *testing.T) {
	c, _ := newTestCache[string](10, time.Minute)

	c.Set("k", "v1")
	c.Get("k")
	c.Get("k")
	c.Get("k")
	if s := c.Stats(); s.Hits != 3 {
		t.Fatalf("expected 3 hits before overwrite, got %d", s.Hits)
	}

	c.Set("k", "v2")
	if s := c.Stats(); s.Hits != 0 {
		t.Errorf("expected 0 hits after overwrite, got %d", s.Hits)
	}
	got, ok := c.Get("k")
	if !ok || got != "v2" {
		t.Errorf("expected v2 after overwrite, got %q (hit=%v)", got, ok)
	}
}

func TestExpiry(t *testing.T) {
	c, clk := newTestCache[string](10, 100*time.Millisecond)

	c.Set("k", "v")
	clk.advance(101 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after expiry")
	}
	// The expired-entry removal happens inside Get, so the stats no longer
	// count the key.
	if s := c.Stats(); s.Size != 0 {
		t.Errorf("expected size 0 after lazy removal, got %d", s.Size)
	}
}

func TestExpiry_ExactBoundaryStillValid(t *testing.T) {
	c, clk := newTestCache[string](10, 100*time.Millisecond)

	c.Set("k", "v")
	clk.advance(100 * time.Millisecond)

	// now - timestamp == maxAge is not yet expired.
	if _, ok := c.Get("k"); !ok {
		t.Error("expected hit at exactly maxAge")
	}
}

func TestExpiry_IsLazy(t *testing.T) {
	c, clk := newTestCache[string](10, 100*time.Millisecond)

	c.Set("a", "1")
	c.Set("b", "2")
	clk.advance(200 * time.Millisecond)

	// Nothing has touched the expired entries, so they still count.
	if s := c.Stats(); s.Size != 2 {
		t.Fatalf("expected untouched expired entries to count, got size %d", s.Size)
	}

	c.Get("a")
	if s := c.Stats(); s.Size != 1 {
		t.Errorf("expected only the touched entry removed, got size %d", s.Size)
	}
}

func TestCapacityEviction(t *testing.T) {
	c, clk := newTestCache[string](2, time.Minute)

	c.Set("a", "1")
	clk.advance(time.Millisecond)
	c.Set("b", "2")
	clk.advance(time.Millisecond)
	c.Set("c", "3") // evicts "a", the oldest write

	if s := c.Stats(); s.Size != 2 {
		t.Fatalf("expected size 2 after eviction, got %d", s.Size)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected 'a' to be evicted")
	}
	if v, ok := c.Get("b"); !ok || v != "2" {
		t.Error("expected 'b' to survive")
	}
	if v, ok := c.Get("c"); !ok || v != "3" {
		t.Error("expected 'c' to be present")
	}
}

func TestEviction_IgnoresAccessOrder(t *testing.T) {
	c, clk := newTestCache[string](2, time.Minute)

	c.Set("a", "1")
	clk.advance(time.Millisecond)
	c.Set("b", "2")

	// Reading "a" does not refresh its timestamp, so it is still the
	// oldest write and still the eviction victim.
	c.Get("a")
	c.Get("a")

	clk.advance(time.Millisecond)
	c.Set("c", "3")

	if _, ok := c.Get("a"); ok {
		t.Error("expected 'a' evicted despite being recently read")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected 'b' to survive")
	}
}

func TestEviction_NotTriggeredByOverwrite(t *testing.T) {
	c, clk := newTestCache[string](2, time.Minute)

	c.Set("a", "1")
	clk.advance(time.Millisecond)
	c.Set("b", "2")
	clk.advance(time.Millisecond)
	c.Set("a", "3") // overwrite, not a new key

	if s := c.Stats(); s.Size != 2 {
		t.Fatalf("expected size 2, got %d", s.Size)
	}
	if v, ok := c.Get("b"); !ok || v != "2" {
		t.Error("expected 'b' untouched by overwrite of 'a'")
	}
	if v, ok := c.Get("a"); !ok || v != "3" {
		t.Error("expected 'a' to hold the overwritten value")
	}
}

func TestEviction_TimestampTieBreaksByInsertionOrder(t *testing.T) {
	c, _ := newTestCache[string](2, time.Minute)

	// Same fake-clock instant for both writes.
	c.Set("first", "1")
	c.Set("second", "2")
	c.Set("third", "3")

	if _, ok := c.Get("first"); ok {
		t.Error("expected the first-written entry to lose the tie")
	}
	if _, ok := c.Get("second"); !ok {
		t.Error("expected 'second' to survive")
	}
}

func TestClear(t *testing.T) {
	c, _ := newTestCache[string](10, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")
	c.Clear()

	if s := c.Stats(); s.Size != 0 {
		t.Errorf("expected size 0 after clear, got %d", s.Size)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, ok := c.Get(k); ok {
			t.Errorf("expected %q absent after clear", k)
		}
	}

	// Idempotent: a second clear is a no-op with the same post-state.
	c.Clear()
	if s := c.Stats(); s.Size != 0 {
		t.Errorf("expected size 0 after double clear, got %d", s.Size)
	}
}

func TestStats_Snapshot(t *testing.T) {
	c, _ := newTestCache[string](10, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")

	s := c.Stats()
	if s.Size != 2 {
		t.Errorf("expected size 2, got %d", s.Size)
	}
	if s.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", s.Hits)
	}
	if len(s.Keys) != 2 {
		t.Errorf("expected 2 keys, got %v", s.Keys)
	}

	// The snapshot must not be a live view.
	c.Set("c", "3")
	if len(s.Keys) != 2 {
		t.Error("expected snapshot keys to be unaffected by later writes")
	}
}

func TestDefaults(t *testing.T) {
	c := New[string](0, 0)
	if c.maxSize != DefaultMaxSize {
		t.Errorf("expected default max size %d, got %d", DefaultMaxSize, c.maxSize)
	}
	if c.maxAge != DefaultMaxAge {
		t.Errorf("expected default max age %v, got %v", DefaultMaxAge, c.maxAge)
	}
}

// TestWriteTimeEvictionScenario walks the full read/overwrite/evict sequence:
// an entry that was read (and even overwritten earlier than the others) keeps
// its write timestamp, so it — not the never-read entry written after it —
// is the one evicted when capacity is exceeded.
func TestWriteTimeEvictionScenario(t *testing.T) {
	c, clk := newTestCache[string](3, 5*time.Second)

	c.Set("hello:robot-friend", "Hi!")
	clk.advance(10 * time.Millisecond)
	c.Set("bye:robot-friend", "Bye!")
	clk.advance(10 * time.Millisecond)

	if v, ok := c.Get("hello:robot-friend"); !ok || v != "Hi!" {
		t.Fatalf("expected hit for hello, got %q (hit=%v)", v, ok)
	}

	c.Set("thanks:robot-friend", "You're welcome!")
	clk.advance(10 * time.Millisecond)
	c.Set("ok:robot-friend", "OK!") // 4th distinct key with maxSize=3

	// "hello" was written first; the read did not refresh it, so it is the
	// eviction victim even though "bye" was never touched.
	if _, ok := c.Get("hello:robot-friend"); ok {
		t.Error("expected hello to be evicted (oldest write)")
	}
	if _, ok := c.Get("bye:robot-friend"); !ok {
		t.Error("expected bye to survive")
	}
	if s := c.Stats(); s.Size != 3 {
		t.Errorf("expected size 3, got %d", s.Size)
	}
}

func TestGenericPayload(t *testing.T) {
	c, _ := newTestCache[[]byte](10, time.Minute)

	c.Set("audio", []byte{0x49, 0x44, 0x33})
	got, ok := c.Get("audio")
	if !ok || len(got) != 3 {
		t.Errorf("expected 3-byte payload, got %v (hit=%v)", got, ok)
	}
}

func TestConcurrent(_ *testing.T) {
	c := New[string](100, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%7)
			c.Set(key, key)
			c.Get(key)
			c.Stats()
		}(i)
	}
	wg.Wait()
}

func TestOnEvent_ReportsExpiryAndEviction(t *testing.T) {
	c, clk := newTestCache[string](2, 100*time.Millisecond)
	events := map[string]int{}
	c.OnEvent = func(event string) { events[event]++ }

	c.Set("a", "1")
	c.Set("b", "2")

	// Third distinct key evicts the oldest entry.
	c.Set("c", "3")
	if events["evicted"] != 1 {
		t.Errorf("evicted events = %d, want 1", events["evicted"])
	}

	// A Get that finds an expired entry reports the lazy removal.
	clk.advance(101 * time.Millisecond)
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected entry to be expired")
	}
	if events["expired"] != 1 {
		t.Errorf("expired events = %d, want 1", events["expired"])
	}

	// Overwrites and misses report nothing.
	c.Set("c", "3 again")
	c.Get("nope")
	if got := events["evicted"] + events["expired"]; got != 2 {
		t.Errorf("total events = %d, want 2", got)
	}
}

func TestOnEvent_UnsetIsSafe(t *testing.T) {
	c, clk := newTestCache[string](1, 100*time.Millisecond)
	c.Set("a", "1")
	c.Set("b", "2") // evicts without a hook
	clk.advance(101 * time.Millisecond)
	c.Get("b") // expires without a hook
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}
