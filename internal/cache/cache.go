// Package cache provides a small in-process L1 cache used in front of
// hot read paths (whitelabel configs, catalog listings).
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates a ristretto-backed cache. maxCostBytes is the maximum
// total size of cached values in bytes.
func New(maxCostBytes int64) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

func (c *Cache) Get(key string) ([]byte, bool) {
	return c.c.Get(key)
}

func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	c.c.SetWithTTL(key, value, int64(len(value)), ttl)
}

func (c *Cache) Delete(key string) {
	c.c.Del(key)
}

// Wait blocks until pending writes are visible. Only tests need this;
// ristretto applies sets asynchronously.
func (c *Cache) Wait() {
	c.c.Wait()
}
