package output

import (
	"fmt"
	"strings"

	"github.com/dl/rxmark/internal/session"
)

// Formatter formats a pipeline result into bytes for output.
// buf is a reusable buffer: implementations append to it and return the result.
// Callers can pass buf[:0] to reuse the underlying array without allocating.
// On error the returned bytes must not be written.
type Formatter interface {
	Format(buf []byte, res session.Result) ([]byte, error)
}

// Format names accepted by NewFormatter.
const (
	FormatReport   = "report"
	FormatJSON     = "json"
	FormatHTML     = "html"
	FormatTerminal = "terminal"
)

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, styles Styles) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FormatReport:
		return NewReportFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(true), nil
	case FormatHTML:
		return NewHTMLFormatter(), nil
	case FormatTerminal:
		return NewTerminalFormatter(styles), nil
	}
	return nil, fmt.Errorf("unknown output format %q", name)
}
