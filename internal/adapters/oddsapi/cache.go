package oddsapi

import (
	"sync"
	"time"
)

// ttlCache es una cache en memoria genérica con TTL por entrada, keyed por
// la firma del request. El tipo del valor lo fija el call site — así cada
// endpoint cachea su tipo concreto sin pasar por any.
type ttlCache[V any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]cacheEntry[V]
}

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

func newTTLCache[V any](ttl time.Duration) *ttlCache[V] {
	return &ttlCache[V]{
		ttl:   ttl,
		items: make(map[string]cacheEntry[V]),
	}
}

// get devuelve el valor cacheado si la entrada sigue viva.
func (c *ttlCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.items, key)
		var zero V
		return zero, false
	}
	return entry.value, true
}

// set guarda el valor con el TTL configurado.
func (c *ttlCache[V]) set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheEntry[V]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// clear vacía la cache entera.
func (c *ttlCache[V]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheEntry[V])
}
