package input

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// DefaultMaxSize caps the subject file size. The annotation is rebuilt on
// every edit, so a larger subject would make watch mode unusable.
const DefaultMaxSize = 16 << 20

// ErrTooLarge is returned when a subject file exceeds the reader's limit.
var ErrTooLarge = errors.New("subject file too large")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FileReader reads subject files with unix.Pread. It keeps one buffer and
// reuses it on every Read, so the Data of a result is only valid until the
// next call. Not safe for concurrent use.
type FileReader struct {
	maxSize int64
	buf     []byte
}

// NewFileReader creates a FileReader that rejects files over maxSize bytes.
// A maxSize <= 0 selects DefaultMaxSize.
func NewFileReader(maxSize int64) *FileReader {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &FileReader{maxSize: maxSize}
}

func (r *FileReader) Read(path string) (ReadResult, error) {
	fd, err := openFile(path)
	if err != nil {
		return ReadResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer unix.Close(fd)

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		return ReadResult{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if stat.Mode&unix.S_IFMT == unix.S_IFDIR {
		return ReadResult{}, fmt.Errorf("read %s: is a directory", path)
	}
	if stat.Size > r.maxSize {
		return ReadResult{}, fmt.Errorf("read %s: %w (%d bytes, limit %d)", path, ErrTooLarge, stat.Size, r.maxSize)
	}

	data, err := r.readAll(fd, stat.Size)
	if err != nil {
		return ReadResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ReadResult{Data: bytes.TrimPrefix(data, utf8BOM), Closer: noopCloser}, nil
}

// readAll reads until EOF. Editors often rewrite the file while it is being
// watched, so the size from fstat is only a hint: the read keeps going past
// it and stops at EOF or when the limit is crossed.
func (r *FileReader) readAll(fd int, hint int64) ([]byte, error) {
	want := int(hint) + 1
	if cap(r.buf) < want {
		r.buf = make([]byte, want)
	}
	buf := r.buf[:cap(r.buf)]

	total := 0
	for {
		if total == len(buf) {
			if int64(total) > r.maxSize {
				return nil, fmt.Errorf("%w (limit %d)", ErrTooLarge, r.maxSize)
			}
			buf = append(buf, make([]byte, len(buf))...)
			buf = buf[:cap(buf)]
			r.buf = buf
		}
		n, err := unix.Pread(fd, buf[total:], int64(total))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		total += n
	}
	if int64(total) > r.maxSize {
		return nil, fmt.Errorf("%w (limit %d)", ErrTooLarge, r.maxSize)
	}
	if total == 0 {
		return nil, nil
	}
	return buf[:total], nil
}
