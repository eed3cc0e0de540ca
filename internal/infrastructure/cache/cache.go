// Package cache adaptadores del puerto ports.Cache: Redis, memoria y no-op.
package cache

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/Brobot64/shopmasterback-v1/internal/application/ports"
)

var (
	_ ports.Cache = NoopCache{}
	_ ports.Cache = (*MemoryCache)(nil)
)

// NoopCache nunca guarda nada: toda lectura va al store.
type NoopCache struct{}

func (NoopCache) Get(_ context.Context, _ string) ([]byte, bool, error) { return nil, false, nil }

func (NoopCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration, _ []string) error {
	return nil
}

func (NoopCache) InvalidateByTag(_ context.Context, _ string) error { return nil }

func (NoopCache) InvalidateByPattern(_ context.Context, _ string) error { return nil }

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // cero = sin expiración
}

// MemoryCache caché en proceso para tests y modo demo.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	tags    map[string]map[string]struct{}
	now     func() time.Time
}

// NewMemoryCache crea una caché vacía.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		tags:    make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration, tags []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e
	for _, tag := range tags {
		set, ok := c.tags[tag]
		if !ok {
			set = make(map[string]struct{})
			c.tags[tag] = set
		}
		set[key] = struct{}{}
	}
	return nil
}

func (c *MemoryCache) InvalidateByTag(_ context.Context, tag string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.tags[tag] {
		delete(c.entries, key)
	}
	delete(c.tags, tag)
	return nil
}

func (c *MemoryCache) InvalidateByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.entries, key)
		}
	}
	return nil
}

// Len número de entradas vivas (tests).
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
