package dataset

import (
	"log"
	"sync"
	"time"
)

// Cache loads the dataset on first use and hands the same read-only value to
// every caller afterwards. A failed load is remembered as well.
type Cache struct {
	Path    string
	Options Options

	once sync.Once
	ds   *Dataset
	err  error
	load func(path string, opts Options) (*Dataset, error)
}

// NewCache creates a Cache for the CSV at path.
func NewCache(path string, opts Options) *Cache {
	return &Cache{Path: path, Options: opts, load: Load}
}

// NewCacheFunc creates a Cache that loads with load instead of the CSV reader.
func NewCacheFunc(path string, opts Options, load func(path string, opts Options) (*Dataset, error)) *Cache {
	return &Cache{Path: path, Options: opts, load: load}
}

// Get returns the cached dataset, loading it on the first call.
func (c *Cache) Get() (*Dataset, error) {
	c.once.Do(func() {
		load := c.load
		if load == nil {
			load = Load
		}
		start := time.Now()
		c.ds, c.err = load(c.Path, c.Options)
		if c.err != nil {
			log.Printf("[ERROR] load dataset %s: %v", c.Path, c.err)
			return
		}
		log.Printf("[INFO] dataset loaded: %s (%d rows, %d categories) in %v",
			c.Path, c.ds.Len(), len(c.ds.categories), time.Since(start).Round(time.Millisecond))
	})
	return c.ds, c.err
}
