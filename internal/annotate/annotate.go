package annotate

import (
	"fmt"
	"html"
	"strings"

	"github.com/dl/rxmark/internal/matcher"
)

// GroupRecord is the span of one group of a match. Group 0 is the full
// match. A group that did not participate has Start == End, placed right
// after the previous participating group.
type GroupRecord struct {
	Content      string
	Participated bool
	Group        int
	Start        int
	End          int
}

// MatchRecord holds the full match at index 0 followed by groups 1..N.
type MatchRecord []GroupRecord

// Report lists the match records in text order.
type Report []MatchRecord

// Segment is a run of the subject text, either plain or a highlighted match.
type Segment struct {
	Text  string
	Match bool
	Index int    // 0-based match index; only set for matches
	Color string // palette color; only set for matches
}

// Annotation is everything derived from one (text, matches) pair.
type Annotation struct {
	Report   Report
	Segments []Segment
	Rendered string
}

// Locator selects how capture group offsets are found.
type Locator int

const (
	// LocateExact uses the offsets reported by the engine and falls back to
	// scanning for groups reported without a span.
	LocateExact Locator = iota
	// LocateScan searches for each group's text in the unconsumed part of
	// the match. It is ambiguous when group texts repeat within a match.
	LocateScan
)

func (l Locator) String() string {
	switch l {
	case LocateExact:
		return "exact"
	case LocateScan:
		return "scan"
	}
	return fmt.Sprintf("Locator(%d)", int(l))
}

// ParseLocator parses "exact" or "scan".
func ParseLocator(s string) (Locator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return LocateExact, nil
	case "scan":
		return LocateScan, nil
	}
	return LocateExact, fmt.Errorf("unknown group locator %q", s)
}

// Options configures a Builder.
type Options struct {
	Unit       OffsetUnit
	Locator    Locator
	EscapeHTML bool    // escape &, <, > and quotes in the subject text
	Palette    Palette // DefaultPalette when empty
}

// Builder turns raw matches into a report and a highlighted rendering.
// It holds no per-input state and never fails.
type Builder struct {
	opts Options
}

// NewBuilder creates a Builder.
func NewBuilder(opts Options) *Builder {
	if len(opts.Palette) == 0 {
		opts.Palette = DefaultPalette
	}
	return &Builder{opts: opts}
}

// Build annotates text with matches, which must come from text.
func (b *Builder) Build(text string, matches []matcher.RawMatch) Annotation {
	segs := b.segments(text, matches)
	return Annotation{
		Report:   b.report(text, matches),
		Segments: segs,
		Rendered: b.render(segs),
	}
}

// Plain renders text with no highlighting.
func (b *Builder) Plain(text string) Annotation {
	segs := b.segments(text, nil)
	return Annotation{
		Segments: segs,
		Rendered: b.render(segs),
	}
}

// segments splits text into plain runs and match runs. The cursor never
// moves backwards and every match consumes one palette slot, including
// zero-width matches.
func (b *Builder) segments(text string, matches []matcher.RawMatch) []Segment {
	segs := make([]Segment, 0, 2*len(matches)+1)
	last := 0
	for i, m := range matches {
		start := clamp(m.Start, last, len(text))
		end := clamp(m.End(), start, len(text))

		if start > last {
			segs = append(segs, Segment{Text: text[last:start]})
		}
		segs = append(segs, Segment{
			Text:  text[start:end],
			Match: true,
			Index: i,
			Color: b.opts.Palette.Color(i),
		})
		last = end
	}
	if last < len(text) {
		segs = append(segs, Segment{Text: text[last:]})
	}
	return segs
}

// render produces the HTML rendering. Newlines are converted after the
// markers are in place.
func (b *Builder) render(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		t := s.Text
		if b.opts.EscapeHTML {
			t = html.EscapeString(t)
		}
		if !s.Match {
			sb.WriteString(t)
			continue
		}
		sb.WriteString(`<mark style="background-color: `)
		sb.WriteString(s.Color)
		sb.WriteString(`;">`)
		sb.WriteString(t)
		sb.WriteString(`</mark>`)
	}
	return BreakLines(sb.String())
}

// BreakLines converts newlines to HTML line breaks.
func BreakLines(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}

func (b *Builder) report(text string, matches []matcher.RawMatch) Report {
	if len(matches) == 0 {
		return nil
	}

	idx := newOffsetIndex(text, b.opts.Unit)
	report := make(Report, 0, len(matches))
	for _, m := range matches {
		start := clamp(m.Start, 0, len(text))
		end := clamp(m.End(), start, len(text))

		rec := make(MatchRecord, 0, len(m.Groups)+1)
		rec = append(rec, GroupRecord{
			Content:      m.Text,
			Participated: true,
			Group:        0,
			Start:        idx.at(start),
			End:          idx.at(end),
		})

		cursor := start
		for i, c := range m.Groups {
			g := GroupRecord{Group: i + 1}
			if !c.Participated {
				g.Start, g.End = idx.at(cursor), idx.at(cursor)
				rec = append(rec, g)
				continue
			}

			gs, ge := b.locate(text, end, c, cursor)
			g.Content = c.Text
			g.Participated = true
			g.Start, g.End = idx.at(gs), idx.at(ge)
			rec = append(rec, g)
			cursor = ge
		}
		report = append(report, rec)
	}
	return report
}

// locate returns the byte span of a participating group. cursor is the scan
// position inside the match and matchEnd bounds the first search.
func (b *Builder) locate(text string, matchEnd int, c matcher.Capture, cursor int) (int, int) {
	if b.opts.Locator == LocateExact && c.HasSpan() && c.End <= len(text) {
		return c.Start, c.End
	}

	cursor = clamp(cursor, 0, len(text))
	if matchEnd >= cursor {
		if i := strings.Index(text[cursor:matchEnd], c.Text); i >= 0 {
			return cursor + i, cursor + i + len(c.Text)
		}
	}
	// Lookaround captures can lie outside the match.
	if i := strings.Index(text[cursor:], c.Text); i >= 0 {
		return cursor + i, cursor + i + len(c.Text)
	}
	return cursor, cursor
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Reconstruct concatenates segment texts, undoing the split made by Build.
func Reconstruct(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Text)
	}
	return sb.String()
}
