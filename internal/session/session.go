// Package session ties the matcher and the annotator into a single
// render(input) pipeline that is re-run whenever the input changes.
package session

import (
	"errors"

	"github.com/dl/rxmark/internal/annotate"
	"github.com/dl/rxmark/internal/matcher"
)

// defaultCacheSize bounds the number of compiled patterns kept between runs.
const defaultCacheSize = 16

// Input is the complete set of values a rendering depends on.
type Input struct {
	Config matcher.Config
	Text   string
}

// Result is the output of one pipeline run.
// On a pattern error Err is a *matcher.MatchError, the report is empty and
// Rendered carries the error message.
type Result struct {
	Input      Input
	Annotation annotate.Annotation
	Err        error
}

// Matched reports whether the run produced at least one match.
func (r Result) Matched() bool {
	return len(r.Annotation.Report) > 0
}

// Session holds the latest input and its result. Each change fully
// supersedes the previous run. Not safe for concurrent use.
type Session struct {
	enum    *matcher.Enumerator
	builder *annotate.Builder

	current Input
	result  Result
	ran     bool
}

// New creates a Session rendering with the given annotation options.
func New(opts annotate.Options) *Session {
	return &Session{
		enum:    matcher.NewEnumerator(defaultCacheSize),
		builder: annotate.NewBuilder(opts),
	}
}

// Render runs the pipeline for in. The result depends only on in and the
// session options.
func (s *Session) Render(in Input) Result {
	matches, err := s.enum.Enumerate(in.Text, in.Config)
	if err != nil {
		ann := annotate.Annotation{Rendered: errorMessage(err)}
		return Result{Input: in, Annotation: ann, Err: err}
	}

	if len(matches) == 0 {
		return Result{Input: in, Annotation: s.builder.Plain(in.Text)}
	}
	return Result{Input: in, Annotation: s.builder.Build(in.Text, matches)}
}

// Update applies fn to a copy of the current input and re-renders when the
// input changed. The returned bool reports whether a new run happened.
func (s *Session) Update(fn func(*Input)) (Result, bool) {
	next := s.current
	fn(&next)
	if s.ran && next == s.current {
		return s.result, false
	}
	s.current = next
	s.result = s.Render(next)
	s.ran = true
	return s.result, true
}

// SetPattern replaces the pattern.
func (s *Session) SetPattern(pattern string) (Result, bool) {
	return s.Update(func(in *Input) { in.Config.Pattern = pattern })
}

// SetText replaces the subject text.
func (s *Session) SetText(text string) (Result, bool) {
	return s.Update(func(in *Input) { in.Text = text })
}

// Current returns the latest input.
func (s *Session) Current() Input {
	return s.current
}

// Result returns the latest result.
func (s *Session) Result() Result {
	return s.result
}

// Close releases cached compiled patterns.
func (s *Session) Close() {
	s.enum.Close()
}

func errorMessage(err error) string {
	var me *matcher.MatchError
	if errors.As(err, &me) {
		return me.Message()
	}
	return "Error in regex: " + err.Error()
}
