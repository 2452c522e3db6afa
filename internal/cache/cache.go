package cache

import (
	"sync"
	"time"
)

// Cache порт кэша с TTL и пространствами имён (организация/назначение).
// Кэши терпимы к устареванию: промах означает пересчёт, не ошибку.
type Cache interface {
	Get(ns, key string) (any, bool)
	Put(ns, key string, value any, ttl time.Duration)
	Forget(ns, key string)
}

type entry struct {
	value     any
	expiresAt time.Time
}

// TTLCache потокобезопасный кэш в памяти
type TTLCache struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

// NewTTLCache создаёт пустой кэш
func NewTTLCache() *TTLCache {
	return &TTLCache{
		items: make(map[string]entry),
		now:   time.Now,
	}
}

func cacheKey(ns, key string) string { return ns + "\x00" + key }

func (c *TTLCache) Get(ns, key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.items[cacheKey(ns, key)]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.Forget(ns, key)
		return nil, false
	}
	return e.value, true
}

func (c *TTLCache) Put(ns, key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[cacheKey(ns, key)] = entry{value: value, expiresAt: c.now().Add(ttl)}
}

func (c *TTLCache) Forget(ns, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, cacheKey(ns, key))
}
