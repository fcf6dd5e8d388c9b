package literal

import (
	lru "github.com/hashicorp/golang-lru"
)

// Classifier classifies macro bodies.
type Classifier interface {
	Classify(body string) (Value, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(body string) (Value, error)

func (f ClassifierFunc) Classify(body string) (Value, error) { return f(body) }

// Default is the uncached classifier.
var Default Classifier = ClassifierFunc(Classify)

type cacheEntry struct {
	val Value
	err error
}

// Cache memoizes Classify results. Classification is pure, so one cache can
// be shared between units translated in parallel.
type Cache struct {
	entries *lru.Cache
}

// NewCache returns a cache holding up to size bodies.
func NewCache(size int) (*Cache, error) {
	entries, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Classify returns the cached result for body or computes and stores it.
func (c *Cache) Classify(body string) (Value, error) {
	if raw, ok := c.entries.Get(body); ok {
		e := raw.(cacheEntry)
		return e.val, e.err
	}
	v, err := Classify(body)
	c.entries.Add(body, cacheEntry{val: v, err: err})
	return v, err
}

// Len reports how many bodies are cached.
func (c *Cache) Len() int { return c.entries.Len() }
