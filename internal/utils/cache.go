package utils

import (
	"sync"
)

// Cache is a concurrent map whose entries, once stored, are never replaced.
type Cache[K comparable, V any] struct {
	items map[K]V
	mutex sync.RWMutex
}

// NewCache creates a new generic cache
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

// Get retrieves an item from the cache
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	value, exists := c.items[key]
	return value, exists
}

// GetOrCreate returns the cached value for key, building it with create on a
// miss. create runs without the lock held so it may consult the cache itself;
// when two callers race, the first stored value wins and both receive it.
// Failed creations are not stored.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err := create()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if existing, ok := c.items[key]; ok {
		return existing, nil
	}
	c.items[key] = value
	return value, nil
}

// Size returns the number of items in the cache
func (c *Cache[K, V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}

// Keys returns all keys in the cache
func (c *Cache[K, V]) Keys() []K {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	keys := make([]K, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}

	return keys
}
