package session

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dl/rxmark/internal/annotate"
	"github.com/dl/rxmark/internal/matcher"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	s := New(annotate.Options{})
	t.Cleanup(s.Close)
	return s
}

func TestRender_EmptyPattern(t *testing.T) {
	s := newSession(t)
	res := s.Render(Input{Config: matcher.Config{Pattern: "", Global: true}, Text: "one\ntwo"})

	require.NoError(t, res.Err)
	assert.False(t, res.Matched())
	assert.Empty(t, res.Annotation.Report)
	assert.Equal(t, "one<br>two", res.Annotation.Rendered)
	assert.NotContains(t, res.Annotation.Rendered, "<mark")
}

func TestRender_NoMatch(t *testing.T) {
	s := newSession(t)
	res := s.Render(Input{Config: matcher.Config{Pattern: "x", Global: true}, Text: "abc"})

	require.NoError(t, res.Err)
	assert.Empty(t, res.Annotation.Report)
	assert.Equal(t, "abc", res.Annotation.Rendered)
}

func TestRender_InvalidPattern(t *testing.T) {
	s := newSession(t)
	res := s.Render(Input{Config: matcher.Config{Pattern: "(", Global: true}, Text: "abc"})

	require.Error(t, res.Err)
	var me *matcher.MatchError
	assert.True(t, errors.As(res.Err, &me))
	assert.Empty(t, res.Annotation.Report, "report is cleared on error")
	assert.Contains(t, res.Annotation.Rendered, "Error in regex: ")
	assert.Contains(t, res.Annotation.Rendered, "missing closing )")
}

func TestRender_FirstMatchOnly(t *testing.T) {
	s := newSession(t)
	res := s.Render(Input{Config: matcher.Config{Pattern: `(a)(b)?`}, Text: "a"})

	require.NoError(t, res.Err)
	require.Len(t, res.Annotation.Report, 1)
	rec := res.Annotation.Report[0]
	require.Len(t, rec, 3)
	assert.Equal(t, "a", rec[0].Content)
	assert.True(t, rec[1].Participated)
	assert.Equal(t, "a", rec[1].Content)
	assert.False(t, rec[2].Participated)
	assert.Equal(t, 1, rec[2].Start)
	assert.Equal(t, 1, rec[2].End)
}

func TestRender_Deterministic(t *testing.T) {
	s := newSession(t)
	in := Input{
		Config: matcher.Config{Pattern: `(\b)\w+(\b)`, Global: true, Multiline: true},
		Text:   "hell\nmy name\nis weal lamp",
	}
	a := s.Render(in)
	b := s.Render(in)
	assert.Equal(t, a, b)
	assert.Len(t, a.Annotation.Report, 6)
}

func TestUpdate_RerendersOnlyOnChange(t *testing.T) {
	s := newSession(t)

	res, changed := s.Update(func(in *Input) {
		in.Config = matcher.Config{Pattern: `\d`, Global: true}
		in.Text = "1 2"
	})
	require.True(t, changed, "first update always renders")
	assert.Len(t, res.Annotation.Report, 2)

	_, changed = s.SetText("1 2")
	assert.False(t, changed, "same input must not re-render")

	res, changed = s.SetText("1 2 3")
	assert.True(t, changed)
	assert.Len(t, res.Annotation.Report, 3)

	res, changed = s.SetPattern(`(`)
	assert.True(t, changed)
	assert.Error(t, res.Err)
	assert.Empty(t, res.Annotation.Report)

	res, changed = s.SetPattern(`[23]`)
	assert.True(t, changed)
	require.NoError(t, res.Err)
	assert.Len(t, res.Annotation.Report, 2)
	assert.Equal(t, res, s.Result())
	assert.Equal(t, "1 2 3", s.Current().Text)
}

func TestUpdate_LastWriteWins(t *testing.T) {
	s := newSession(t)
	s.Update(func(in *Input) {
		in.Config.Global = true
		in.Config.Pattern = "a"
	})
	for _, text := range []string{"a", "aa", "aaa", "b"} {
		s.SetText(text)
	}

	want := s.Render(Input{Config: matcher.Config{Pattern: "a", Global: true}, Text: "b"})
	assert.Equal(t, want, s.Result())
	assert.False(t, s.Result().Matched())
}

func TestRender_PCREZeroWidthAndInvalidUTF8(t *testing.T) {
	if os.Getenv("RXMARK_SKIP_PCRE") == "1" {
		t.Skip("pcre tests disabled")
	}
	s := newSession(t)

	tests := []struct {
		pattern string
		text    string
		want    int
	}{
		{`\b`, "café au lait", 6},
		{`x*`, "éa", 3},
		{`\w+`, "caf\xe9", 1},
		{`x*`, "", 1},
	}
	for _, tt := range tests {
		res := s.Render(Input{
			Config: matcher.Config{Pattern: tt.pattern, Global: true, Engine: matcher.EnginePCRE},
			Text:   tt.text,
		})
		require.NoError(t, res.Err, "%s over %q", tt.pattern, tt.text)
		assert.Len(t, res.Annotation.Report, tt.want, "%s over %q", tt.pattern, tt.text)
	}
}
