package input

import (
	"strings"

	"golang.org/x/sys/unix"
)

// ReadResult holds the data read from a source and a cleanup function.
type ReadResult struct {
	Data   []byte
	Closer func() error
}

// noopCloser is a package-level no-op closer to avoid allocating a func literal per read.
func noopCloser() error { return nil }

// Reader reads the content of a subject source into a byte slice.
type Reader interface {
	Read(path string) (ReadResult, error)
}

// ReadText reads path with r and returns it as subject text. CRLF line
// endings are folded to LF so offsets match what a text area would hold.
// The result is copied, so the reader may reuse its buffer afterwards.
func ReadText(r Reader, path string) (string, error) {
	res, err := r.Read(path)
	if err != nil {
		return "", err
	}
	text := string(res.Data)
	if res.Closer != nil {
		res.Closer()
	}
	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}

// openFile opens a file with O_NOATIME, falling back without it.
func openFile(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOATIME, 0)
	if err != nil {
		fd, err = unix.Open(path, unix.O_RDONLY, 0)
	}
	return fd, err
}
