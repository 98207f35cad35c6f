package input

import (
	"io"
	"os"
)

// StdinReader reads all data from stdin, ignoring the path.
type StdinReader struct {
	r io.Reader
}

// NewStdinReader creates a new StdinReader.
func NewStdinReader() *StdinReader {
	return &StdinReader{r: os.Stdin}
}

// NewStreamReader creates a StdinReader that drains r instead of stdin.
func NewStreamReader(r io.Reader) *StdinReader {
	return &StdinReader{r: r}
}

func (r *StdinReader) Read(_ string) (ReadResult, error) {
	data, err := io.ReadAll(r.r)
	if err != nil {
		return ReadResult{}, err
	}
	return ReadResult{
		Data:   data,
		Closer: noopCloser,
	}, nil
}
