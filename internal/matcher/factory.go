package matcher

import (
	"fmt"
	"strings"
)

// Engine names accepted by NewEngine.
const (
	EngineRE2  = "re2"
	EnginePCRE = "pcre"
)

// NewEngine returns the engine registered under name.
// Selection logic:
//   - "" or "re2" -> RegexEngine (Go RE2)
//   - "pcre"      -> PCREEngine (PCRE2 via pure Go port)
func NewEngine(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineRE2:
		return NewRegexEngine(), nil
	case EnginePCRE:
		return NewPCREEngine(), nil
	default:
		return nil, fmt.Errorf("unknown regex engine %q (want %s or %s)", name, EngineRE2, EnginePCRE)
	}
}

// Enumerator runs patterns against subject text. Compiled patterns are kept
// in a Cache so re-runs with an unchanged pattern skip compilation.
type Enumerator struct {
	cache *Cache
}

// NewEnumerator creates an Enumerator with a cache of the given capacity.
// A capacity <= 0 disables caching.
func NewEnumerator(cacheSize int) *Enumerator {
	return &Enumerator{cache: NewCache(cacheSize)}
}

// Enumerate returns the matches of cfg.Pattern in text.
// An empty (or all-whitespace) pattern yields no matches and no error.
// Without cfg.Global at most one match, the first, is returned.
// A pattern the engine rejects, or a match the engine fails to run, is
// reported as *MatchError.
func (e *Enumerator) Enumerate(text string, cfg Config) ([]RawMatch, error) {
	if strings.TrimSpace(cfg.Pattern) == "" {
		return nil, nil
	}

	eng, err := NewEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	return e.run(eng, text, cfg)
}

func (e *Enumerator) run(eng Engine, text string, cfg Config) ([]RawMatch, error) {
	opts := cfg.Options()
	re, err := e.compile(eng, cfg.Pattern, opts)
	if err != nil {
		return nil, &MatchError{Pattern: cfg.Pattern, Engine: eng.Name(), Err: err}
	}

	n := 1
	if opts.FindAll {
		n = -1
	}
	matches, err := re.FindAll(text, n)
	if err != nil {
		return nil, &MatchError{Pattern: cfg.Pattern, Engine: eng.Name(), Err: err}
	}
	return matches, nil
}

func (e *Enumerator) compile(eng Engine, pattern string, opts Options) (Regexp, error) {
	key := cacheKey(eng.Name(), pattern, opts)
	if re, ok := e.cache.Get(key); ok {
		return re, nil
	}
	re, err := eng.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	if !e.cache.Put(key, re) {
		// Not retained by the cache; the caller still needs it for this run.
		e.cache.retire(re)
	}
	return re, nil
}

// Close releases every cached compiled pattern.
func (e *Enumerator) Close() {
	e.cache.Purge()
}

// Enumerate is a one-shot helper that compiles without caching.
func Enumerate(text string, cfg Config) ([]RawMatch, error) {
	e := NewEnumerator(0)
	defer e.Close()
	return e.Enumerate(text, cfg)
}
