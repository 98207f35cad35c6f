package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dl/rxmark/internal/annotate"
	"github.com/dl/rxmark/internal/session"
)

// JSONFormatter dumps the report as indented JSON. With envelope set the
// report is wrapped together with the input, the rendering and any error.
type JSONFormatter struct {
	envelope bool
}

// NewJSONFormatter creates a JSONFormatter.
func NewJSONFormatter(envelope bool) *JSONFormatter {
	return &JSONFormatter{envelope: envelope}
}

// jsonGroup is the JSON serialization format for a group record.
// Content is omitted for groups that did not participate.
type jsonGroup struct {
	Content         *string `json:"content,omitempty"`
	IsParticipating bool    `json:"isParticipating"`
	GroupNum        int     `json:"groupNum"`
	StartPos        int     `json:"startPos"`
	EndPos          int     `json:"endPos"`
}

type jsonFlags struct {
	Global          bool `json:"global"`
	CaseInsensitive bool `json:"caseInsensitive"`
	Multiline       bool `json:"multiline"`
}

type jsonEnvelope struct {
	Pattern  string        `json:"pattern"`
	Engine   string        `json:"engine,omitempty"`
	Flags    jsonFlags     `json:"flags"`
	Matches  [][]jsonGroup `json:"matches"`
	Rendered string        `json:"rendered"`
	Error    string        `json:"error,omitempty"`
}

func (f *JSONFormatter) Format(buf []byte, res session.Result) ([]byte, error) {
	var v any = toJSONReport(res.Annotation.Report)
	if f.envelope {
		cfg := res.Input.Config
		env := jsonEnvelope{
			Pattern: cfg.Pattern,
			Engine:  cfg.Engine,
			Flags: jsonFlags{
				Global:          cfg.Global,
				CaseInsensitive: cfg.IgnoreCase,
				Multiline:       cfg.Multiline,
			},
			Matches:  toJSONReport(res.Annotation.Report),
			Rendered: res.Annotation.Rendered,
		}
		if res.Err != nil {
			env.Error = res.Err.Error()
		}
		v = env
	}

	// The rendering is HTML; keep <mark> readable instead of \u003c escapes.
	out := bytes.NewBuffer(buf)
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return buf, fmt.Errorf("encode json: %w", err)
	}
	return out.Bytes(), nil
}

func toJSONReport(report annotate.Report) [][]jsonGroup {
	out := make([][]jsonGroup, len(report))
	for i, rec := range report {
		groups := make([]jsonGroup, len(rec))
		for j, g := range rec {
			jg := jsonGroup{
				IsParticipating: g.Participated,
				GroupNum:        g.Group,
				StartPos:        g.Start,
				EndPos:          g.End,
			}
			if g.Participated {
				content := g.Content
				jg.Content = &content
			}
			groups[j] = jg
		}
		out[i] = groups
	}
	return out
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
