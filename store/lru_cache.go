package store

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/willf/bloom"
)

// Cache is a read-through LRU for archived values with a Bloom filter
// in front, so lookups for keys that were never written skip the LRU
// entirely.
type Cache struct {
	mu          sync.RWMutex
	cache       *lru.Cache[string, []byte]
	bloomFilter *bloom.BloomFilter
}

func NewCache(size int, expectedItems uint, falsePositiveRate float64) (*Cache, error) {
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &Cache{
		cache:       c,
		bloomFilter: bloom.NewWithEstimates(expectedItems, falsePositiveRate),
	}, nil
}

func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.bloomFilter.TestString(key) {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *Cache) Add(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bloomFilter.AddString(key)
	c.cache.Add(key, value)
}
