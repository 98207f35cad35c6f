package matcher

import (
	"regexp"
	"regexp/syntax"
)

// RegexEngine compiles patterns with Go's RE2 regexp package.
type RegexEngine struct{}

// NewRegexEngine creates a RegexEngine.
func NewRegexEngine() *RegexEngine {
	return &RegexEngine{}
}

func (e *RegexEngine) Name() string { return EngineRE2 }

// Compile maps the option set onto RE2 inline flags.
func (e *RegexEngine) Compile(pattern string, opts Options) (Regexp, error) {
	flags := ""
	if opts.IgnoreCase {
		flags += "i"
	}
	if opts.Multiline {
		flags += "m"
	}
	expr := pattern
	if flags != "" {
		expr = "(?" + flags + ")" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		// Report the error against the pattern as typed, without the flag prefix.
		if _, perr := syntax.Parse(pattern, syntax.Perl); perr != nil {
			return nil, perr
		}
		return nil, err
	}
	return &RegexMatcher{re: re}, nil
}

// RegexMatcher is a compiled RE2 pattern.
type RegexMatcher struct {
	re *regexp.Regexp
}

// FindAll never fails; RE2 runs in linear time on any input.
func (m *RegexMatcher) FindAll(text string, n int) ([]RawMatch, error) {
	locs := m.re.FindAllStringSubmatchIndex(text, n)
	if len(locs) == 0 {
		return nil, nil
	}

	matches := make([]RawMatch, 0, len(locs))
	for _, loc := range locs {
		if rm, ok := capturesFromIndex(text, loc); ok {
			matches = append(matches, rm)
		}
	}
	return matches, nil
}

func (m *RegexMatcher) NumGroups() int {
	return m.re.NumSubexp()
}

func (m *RegexMatcher) Close() {}
