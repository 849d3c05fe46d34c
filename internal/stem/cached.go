package stem

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of stems a Cached stemmer keeps.
const DefaultCacheSize = 4096

// Cached wraps a Stemmer with an LRU of recent results. Query tokens repeat
// heavily across requests, so most lookups skip the stemming algorithm.
type Cached struct {
	inner Stemmer
	cache *lru.Cache[string, string]
}

// NewCached creates a cached stemmer. A non-positive size selects DefaultCacheSize.
func NewCached(inner Stemmer, size int) *Cached {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, string](size)
	return &Cached{inner: inner, cache: cache}
}

// Stem returns the cached stem for word, computing it on a miss.
func (c *Cached) Stem(word string) string {
	if s, ok := c.cache.Get(word); ok {
		return s
	}
	s := c.inner.Stem(word)
	c.cache.Add(word, s)
	return s
}

// Len returns the number of cached stems.
func (c *Cached) Len() int {
	return c.cache.Len()
}

var _ Stemmer = (*Cached)(nil)
