package output

import (
	"strings"

	"github.com/dl/rxmark/internal/annotate"
	"github.com/dl/rxmark/internal/session"
)

// TerminalFormatter prints the subject text with highlighted matches
// followed by the match report. Without color, matches are bracketed.
type TerminalFormatter struct {
	styles Styles
}

// NewTerminalFormatter creates a TerminalFormatter.
func NewTerminalFormatter(styles Styles) *TerminalFormatter {
	return &TerminalFormatter{styles: styles}
}

func (f *TerminalFormatter) Format(buf []byte, res session.Result) ([]byte, error) {
	if res.Err != nil {
		msg := res.Annotation.Rendered
		if f.styles.Enabled {
			msg = f.styles.Error.Render(msg)
		}
		buf = append(buf, msg...)
		buf = append(buf, '\n')
		return buf, nil
	}

	for _, seg := range res.Annotation.Segments {
		if !seg.Match {
			buf = append(buf, seg.Text...)
			continue
		}
		buf = f.highlight(buf, seg)
	}
	if !strings.HasSuffix(res.Input.Text, "\n") {
		buf = append(buf, '\n')
	}

	if len(res.Annotation.Report) == 0 {
		return buf, nil
	}
	buf = append(buf, '\n')
	header := "Matches"
	if f.styles.Enabled {
		header = f.styles.Header.Render(header)
	}
	buf = append(buf, header...)
	buf = append(buf, '\n')
	return appendReport(buf, res.Annotation.Report), nil
}

// highlight renders one match segment. Lines are styled separately so a
// match spanning a newline is not padded into a block.
func (f *TerminalFormatter) highlight(buf []byte, seg annotate.Segment) []byte {
	if !f.styles.Enabled || len(f.styles.Matches) == 0 {
		buf = append(buf, '[')
		buf = append(buf, seg.Text...)
		buf = append(buf, ']')
		return buf
	}

	style := f.styles.Matches[seg.Index%len(f.styles.Matches)]
	for i, line := range strings.Split(seg.Text, "\n") {
		if i > 0 {
			buf = append(buf, '\n')
		}
		if line != "" {
			buf = append(buf, style.Render(line)...)
		}
	}
	return buf
}

// Ensure TerminalFormatter implements Formatter.
var _ Formatter = (*TerminalFormatter)(nil)
