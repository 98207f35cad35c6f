package matcher

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Cache holds compiled patterns keyed by (engine, pattern, compile options).
// Entries are evicted oldest-first once the capacity is reached and
// closed on eviction. Not safe for concurrent use.
type Cache struct {
	size    int
	entries map[uint64]Regexp
	order   []uint64
	retired []Regexp
}

// NewCache creates a Cache holding at most size compiled patterns.
func NewCache(size int) *Cache {
	return &Cache{
		size:    size,
		entries: make(map[uint64]Regexp),
	}
}

// cacheKey hashes everything that affects compilation. FindAll only
// changes how a compiled pattern is run, so it is left out.
func cacheKey(engine, pattern string, opts Options) uint64 {
	d := xxhash.New()
	d.WriteString(engine)
	d.WriteString("\x00")
	d.WriteString(pattern)
	d.WriteString("\x00")
	var bits int
	if opts.IgnoreCase {
		bits |= 1
	}
	if opts.Multiline {
		bits |= 2
	}
	d.WriteString(strconv.Itoa(bits))
	return d.Sum64()
}

// Get returns the compiled pattern stored under key.
func (c *Cache) Get(key uint64) (Regexp, bool) {
	re, ok := c.entries[key]
	return re, ok
}

// Put stores re under key and reports whether the cache kept it.
func (c *Cache) Put(key uint64, re Regexp) bool {
	c.closeRetired()
	if c.size <= 0 {
		return false
	}
	if _, ok := c.entries[key]; ok {
		return true
	}
	for len(c.order) >= c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		if old, ok := c.entries[oldest]; ok {
			old.Close()
			delete(c.entries, oldest)
		}
	}
	c.entries[key] = re
	c.order = append(c.order, key)
	return true
}

// Len returns the number of cached patterns.
func (c *Cache) Len() int {
	return len(c.entries)
}

// retire defers closing a pattern the cache did not keep until the next
// Put or Purge, after its matches have been consumed.
func (c *Cache) retire(re Regexp) {
	c.retired = append(c.retired, re)
}

func (c *Cache) closeRetired() {
	for _, re := range c.retired {
		re.Close()
	}
	c.retired = c.retired[:0]
}

// Purge closes and drops every entry.
func (c *Cache) Purge() {
	c.closeRetired()
	for _, re := range c.entries {
		re.Close()
	}
	c.entries = make(map[uint64]Regexp)
	c.order = nil
}
