package matcher

import "fmt"

// Config is the matching half of a tester input: the pattern and its flags.
type Config struct {
	Pattern    string
	Global     bool   // find every match instead of the first
	IgnoreCase bool   // case-insensitive matching
	Multiline  bool   // ^ and $ match at line boundaries
	Engine     string // engine name, see NewEngine; empty means RE2
}

// Options is the option set handed to an Engine at compile time.
type Options struct {
	IgnoreCase bool
	Multiline  bool
	FindAll    bool
}

// Options derives the engine option set from the config flags.
func (c Config) Options() Options {
	return Options{
		IgnoreCase: c.IgnoreCase,
		Multiline:  c.Multiline,
		FindAll:    c.Global,
	}
}

// Capture is one capture group of a match.
// Start and End are byte offsets into the subject text, or -1 when the
// engine did not report a span for the group.
type Capture struct {
	Text         string
	Participated bool
	Start        int
	End          int
}

// HasSpan reports whether the engine supplied exact offsets for the group.
func (c Capture) HasSpan() bool {
	return c.Participated && c.Start >= 0 && c.End >= c.Start
}

// RawMatch is one occurrence of the pattern in the subject text.
type RawMatch struct {
	Text   string    // full match text
	Start  int       // byte offset of the match start (inclusive)
	Groups []Capture // capture groups 1..N in declaration order
}

// End returns the byte offset just past the match.
func (m RawMatch) End() int {
	return m.Start + len(m.Text)
}

// MatchError is returned when the engine rejects a pattern.
type MatchError struct {
	Pattern string
	Engine  string
	Err     error
}

func (e *MatchError) Error() string {
	return e.Err.Error()
}

func (e *MatchError) Unwrap() error {
	return e.Err
}

// Message returns the engine diagnostic as shown in place of the rendering.
func (e *MatchError) Message() string {
	return fmt.Sprintf("Error in regex: %s", e.Err)
}

// Regexp is a compiled pattern.
type Regexp interface {
	// FindAll returns matches in text order, leftmost-first and
	// non-overlapping. n < 0 means all matches. An empty match is followed
	// by a search starting one character later. A failure inside the
	// engine is returned as an error.
	FindAll(text string, n int) ([]RawMatch, error)

	// NumGroups returns the number of capture groups in the pattern.
	NumGroups() int

	// Close releases engine resources held by the compiled pattern.
	Close()
}

// Engine compiles patterns into Regexps.
type Engine interface {
	Name() string
	Compile(pattern string, opts Options) (Regexp, error)
}

// capturesFromIndex converts a submatch index slice (pairs of byte offsets,
// negative for groups that did not participate) into a RawMatch.
func capturesFromIndex(text string, loc []int) (RawMatch, bool) {
	if len(loc) < 2 || loc[0] < 0 || loc[1] < loc[0] || loc[1] > len(text) {
		return RawMatch{}, false
	}

	m := RawMatch{
		Text:  text[loc[0]:loc[1]],
		Start: loc[0],
	}

	n := len(loc)/2 - 1
	if n > 0 {
		m.Groups = make([]Capture, n)
	}
	for g := 1; g <= n; g++ {
		start, end := loc[2*g], loc[2*g+1]
		if start < 0 || end < start || end > len(text) {
			m.Groups[g-1] = Capture{Start: -1, End: -1}
			continue
		}
		m.Groups[g-1] = Capture{
			Text:         text[start:end],
			Participated: true,
			Start:        start,
			End:          end,
		}
	}
	return m, true
}
