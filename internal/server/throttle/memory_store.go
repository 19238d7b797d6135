package throttle

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	mu     sync.Mutex
	start  time.Time
	count  int
	length time.Duration
	dead   bool
}

// MemoryStore keeps counters in process memory with a lock per key.
type MemoryStore struct {
	counters sync.Map // string -> *counter
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string, now time.Time, length time.Duration) (Window, error) {
	v, ok := m.counters.Load(key)
	if !ok {
		return Window{Start: now}, nil
	}
	c := v.(*counter)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dead {
		return Window{Start: now}, nil
	}
	start, count := roll(c.start, c.count, now, length)
	return Window{Start: start, Count: count}, nil
}

// Increment implements Store.
func (m *MemoryStore) Increment(_ context.Context, key string, now time.Time, length time.Duration) (Window, error) {
	for {
		v, _ := m.counters.LoadOrStore(key, &counter{})
		c := v.(*counter)
		c.mu.Lock()
		if c.dead {
			// Swept between load and lock; retry against the fresh entry.
			c.mu.Unlock()
			continue
		}
		c.start, c.count = roll(c.start, c.count, now, length)
		c.count++
		c.length = length
		w := Window{Start: c.start, Count: c.count}
		c.mu.Unlock()
		return w, nil
	}
}

// Reset implements Store.
func (m *MemoryStore) Reset(_ context.Context, key string) error {
	if v, ok := m.counters.LoadAndDelete(key); ok {
		c := v.(*counter)
		c.mu.Lock()
		c.dead = true
		c.mu.Unlock()
	}
	return nil
}

// Sweep drops counters whose window ended before now and reports how many
// were removed.
func (m *MemoryStore) Sweep(now time.Time) int {
	removed := 0
	m.counters.Range(func(k, v any) bool {
		c := v.(*counter)
		c.mu.Lock()
		if !c.start.IsZero() && !now.Before(c.start.Add(c.length)) {
			c.dead = true
			m.counters.Delete(k)
			removed++
		}
		c.mu.Unlock()
		return true
	})
	return removed
}

// Len reports the number of live counters.
func (m *MemoryStore) Len() int {
	n := 0
	m.counters.Range(func(_, _ any) bool { n++; return true })
	return n
}
