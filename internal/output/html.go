package output

import "github.com/dl/rxmark/internal/session"

// HTMLFormatter writes the rendered subject text: highlighted matches as
// <mark> elements and line breaks as <br>. On a pattern error it writes
// the error message instead.
type HTMLFormatter struct{}

// NewHTMLFormatter creates an HTMLFormatter.
func NewHTMLFormatter() *HTMLFormatter {
	return &HTMLFormatter{}
}

func (f *HTMLFormatter) Format(buf []byte, res session.Result) ([]byte, error) {
	buf = append(buf, res.Annotation.Rendered...)
	buf = append(buf, '\n')
	return buf, nil
}

// Ensure HTMLFormatter implements Formatter.
var _ Formatter = (*HTMLFormatter)(nil)
