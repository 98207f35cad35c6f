package output

import (
	"strconv"

	"github.com/dl/rxmark/internal/annotate"
	"github.com/dl/rxmark/internal/session"
)

// ReportFormatter writes the human-readable match information:
//
//	Match <n> : <start>-<end> : <content>
//	Group <g> : <start>-<end> : <content>
//
// with a blank line between matches. Non-participating groups print an
// empty content.
type ReportFormatter struct{}

// NewReportFormatter creates a ReportFormatter.
func NewReportFormatter() *ReportFormatter {
	return &ReportFormatter{}
}

func (f *ReportFormatter) Format(buf []byte, res session.Result) ([]byte, error) {
	if res.Err != nil {
		buf = append(buf, res.Annotation.Rendered...)
		buf = append(buf, '\n')
		return buf, nil
	}
	return appendReport(buf, res.Annotation.Report), nil
}

func appendReport(buf []byte, report annotate.Report) []byte {
	for i, rec := range report {
		if i > 0 {
			buf = append(buf, '\n')
		}
		for _, g := range rec {
			if g.Group == 0 {
				buf = append(buf, "Match "...)
				buf = strconv.AppendInt(buf, int64(i+1), 10)
			} else {
				buf = append(buf, "Group "...)
				buf = strconv.AppendInt(buf, int64(g.Group), 10)
			}
			buf = append(buf, " : "...)
			buf = strconv.AppendInt(buf, int64(g.Start), 10)
			buf = append(buf, '-')
			buf = strconv.AppendInt(buf, int64(g.End), 10)
			buf = append(buf, " : "...)
			buf = append(buf, g.Content...)
			buf = append(buf, '\n')
		}
	}
	return buf
}

// Ensure ReportFormatter implements Formatter.
var _ Formatter = (*ReportFormatter)(nil)
