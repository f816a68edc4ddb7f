package gdbindex

import (
	lru "github.com/hashicorp/golang-lru"
)

// pubnamesCache holds decompressed per-object pubname/pubtype bytes,
// keyed by object identity plus section kind.
type pubnamesCache struct {
	c *lru.Cache
}

// defaultCacheSize is the capacity Build gives the pubnames cache.
const defaultCacheSize = 256

type pubnamesCacheKey struct {
	object string
	kind   byte // 'n' for pubnames, 't' for pubtypes
}

// newPubnamesCache builds a cache bounded to size entries. size <= 0
// falls back to the default capacity noted in the configuration
// component.
func newPubnamesCache(size int) *pubnamesCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		// lru.New only fails for size <= 0, excluded above.
		panic(err)
	}
	return &pubnamesCache{c: c}
}

func (p *pubnamesCache) get(key pubnamesCacheKey) ([]byte, bool) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (p *pubnamesCache) put(key pubnamesCacheKey, data []byte) {
	p.c.Add(key, data)
}
