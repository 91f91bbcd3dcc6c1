package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dietledger/backend/internal/domain"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryCache is a TTL cache holding JSON-encoded payloads, so readers
// never share memory with writers.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

// NewMemoryCache creates a cache that sweeps expired entries every interval
// until Close is called. A zero interval disables the sweeper.
func NewMemoryCache(sweepInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		data: make(map[string]entry),
		now:  time.Now,
		stop: make(chan struct{}),
	}
	if sweepInterval > 0 {
		go c.sweepLoop(sweepInterval)
	}
	return c
}

// Get decodes the entry for key into dest.
func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		return domain.ErrCacheMiss
	}
	if err := json.Unmarshal(e.payload, dest); err != nil {
		return fmt.Errorf("decode cache entry %q: %w", key, err)
	}
	return nil
}

// Set stores value under key for ttl.
func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %q: %w", key, err)
	}

	c.mu.Lock()
	c.data[key] = entry{payload: payload, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}

// Close stops the sweeper.
func (c *MemoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *MemoryCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *MemoryCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for key, e := range c.data {
		if !now.Before(e.expiresAt) {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}
