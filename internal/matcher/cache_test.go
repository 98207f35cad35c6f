package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRegexp records Close calls.
type countingRegexp struct {
	closed int
}

func (r *countingRegexp) FindAll(string, int) ([]RawMatch, error) { return nil, nil }
func (r *countingRegexp) NumGroups() int                          { return 0 }
func (r *countingRegexp) Close()                                  { r.closed++ }

// compileCounter counts Compile calls on top of the RE2 engine.
type compileCounter struct {
	RegexEngine
	compiles int
}

func (c *compileCounter) Compile(pattern string, opts Options) (Regexp, error) {
	c.compiles++
	return c.RegexEngine.Compile(pattern, opts)
}

func TestCacheKey(t *testing.T) {
	base := cacheKey("re2", "a+", Options{})
	assert.Equal(t, base, cacheKey("re2", "a+", Options{}), "equal inputs must hash equally")
	assert.Equal(t, base, cacheKey("re2", "a+", Options{FindAll: true}), "FindAll does not affect compilation")

	others := []uint64{
		cacheKey("pcre", "a+", Options{}),
		cacheKey("re2", "a", Options{}),
		cacheKey("re2", "a+", Options{IgnoreCase: true}),
		cacheKey("re2", "a+", Options{Multiline: true}),
	}
	for i, k := range others {
		assert.NotEqual(t, base, k, "variant %d collides with base key", i)
	}
}

func TestCache_EvictsOldest(t *testing.T) {
	c := NewCache(2)
	a, b, d := &countingRegexp{}, &countingRegexp{}, &countingRegexp{}

	c.Put(1, a)
	c.Put(2, b)
	c.Put(3, d)

	require.Equal(t, 2, c.Len())
	_, ok := c.Get(1)
	assert.False(t, ok, "oldest entry should have been evicted")
	assert.Equal(t, 1, a.closed, "evicted entry closed once")
	_, ok = c.Get(3)
	assert.True(t, ok, "newest entry missing")

	c.Purge()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 1, b.closed)
	assert.Equal(t, 1, d.closed)
}

func TestCache_Disabled(t *testing.T) {
	c := NewCache(0)
	r := &countingRegexp{}
	require.False(t, c.Put(1, r), "disabled cache must not keep entries")

	c.retire(r)
	require.Equal(t, 0, r.closed, "retired pattern closed too early")
	c.Put(2, &countingRegexp{})
	assert.Equal(t, 1, r.closed)
}

func TestEnumerator_ReusesCompiled(t *testing.T) {
	e := NewEnumerator(4)
	defer e.Close()

	cfg := Config{Pattern: `\d`, Global: true}
	_, err := e.Enumerate("1 2", cfg)
	require.NoError(t, err)
	_, err = e.Enumerate("3 4 5", cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, e.cache.Len())

	cfg.IgnoreCase = true
	_, err = e.Enumerate("6", cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, e.cache.Len())
}

func TestEnumerator_GlobalToggleKeepsCompiled(t *testing.T) {
	e := NewEnumerator(4)
	defer e.Close()
	eng := &compileCounter{}

	cfg := Config{Pattern: `\d`, Global: true}
	all, err := e.run(eng, "1 2", cfg)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cfg.Global = false
	first, err := e.run(eng, "1 2", cfg)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	assert.Equal(t, 1, eng.compiles, "toggling global must not recompile")
}
