package matcher

import (
	"fmt"
	"runtime"
	"sync"
	"unicode/utf8"
	"unsafe"

	"go.elara.ws/pcre"
	"go.elara.ws/pcre/lib"
	"modernc.org/libc"
	"modernc.org/libc/sys/types"
)

// pcreUnset is the ovector value of a group that did not participate.
const pcreUnset = ^lib.Tsize_t(0)

// PCREEngine compiles PCRE2-compatible patterns via the pure Go pcre package.
// Supports lookahead, lookbehind, backreferences, atomic groups, and all PCRE2 features.
//
// Patterns are compiled in UTF mode with invalid-UTF matching enabled, so
// subjects that are not valid UTF-8 are searched instead of rejected; the
// invalid bytes never match.
type PCREEngine struct{}

// NewPCREEngine creates a PCREEngine.
func NewPCREEngine() *PCREEngine {
	return &PCREEngine{}
}

func (e *PCREEngine) Name() string { return EnginePCRE }

func (e *PCREEngine) Compile(pattern string, opts Options) (Regexp, error) {
	copts := pcre.UTF | pcre.MatchInvalidUTF
	if opts.IgnoreCase {
		copts |= pcre.Caseless
	}
	if opts.Multiline {
		copts |= pcre.Multiline
	}
	return compilePCRE(pattern, copts)
}

// PCREError is a diagnostic from the PCRE2 library. Offset is the byte
// offset into the pattern for compile errors, or -1.
type PCREError struct {
	Offset int
	Msg    string
}

func (e *PCREError) Error() string {
	if e.Offset < 0 {
		return e.Msg
	}
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

// PCREMatcher is a compiled PCRE2 pattern.
//
// The pcre package's own FindAll skips empty matches and can only search
// from the start of the subject, so matching goes through the PCRE2 API in
// go.elara.ws/pcre/lib with an explicit start offset.
type PCREMatcher struct {
	mu     sync.Mutex
	tls    *libc.TLS
	code   uintptr
	mctx   uintptr
	groups int
}

func compilePCRE(pattern string, opts pcre.CompileOption) (*PCREMatcher, error) {
	tls := libc.NewTLS()

	cPattern, err := libc.CString(pattern)
	if err != nil {
		tls.Close()
		return nil, err
	}
	defer libc.Xfree(tls, cPattern)

	errCode := libc.Xmalloc(tls, types.Size_t(unsafe.Sizeof(int32(0))))
	errOffset := libc.Xmalloc(tls, types.Size_t(unsafe.Sizeof(lib.Tsize_t(0))))
	defer libc.Xfree(tls, errCode)
	defer libc.Xfree(tls, errOffset)

	code := lib.Xpcre2_compile_8(tls, cPattern, lib.Tsize_t(len(pattern)), uint32(opts), errCode, errOffset, 0)
	if code == 0 {
		perr := &PCREError{
			Offset: int(*(*lib.Tsize_t)(unsafe.Pointer(errOffset))),
			Msg:    pcreMessage(tls, *(*int32)(unsafe.Pointer(errCode))),
		}
		tls.Close()
		return nil, perr
	}

	m := &PCREMatcher{
		tls:  tls,
		code: code,
		mctx: lib.Xpcre2_match_context_create_8(tls, 0),
	}
	var count uint32
	lib.Xpcre2_pattern_info_8(tls, code, lib.DPCRE2_INFO_CAPTURECOUNT, uintptr(unsafe.Pointer(&count)))
	m.groups = int(count)

	runtime.SetFinalizer(m, (*PCREMatcher).Close)
	return m, nil
}

// pcreMessage returns the PCRE2 text for an error code.
func pcreMessage(tls *libc.TLS, code int32) string {
	buf := make([]byte, 256)
	n := lib.Xpcre2_get_error_message_8(tls, code, uintptr(unsafe.Pointer(&buf[0])), lib.Tsize_t(len(buf)))
	if n < 0 {
		return fmt.Sprintf("pcre2 error %d", code)
	}
	return string(buf[:n])
}

// FindAll walks the subject the way a global JavaScript regex does: the
// next search starts at the end of the previous match, or one character
// past it when the match was empty.
func (m *PCREMatcher) FindAll(text string, n int) (matches []RawMatch, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.code == 0 {
		return nil, fmt.Errorf("pcre: use of closed pattern")
	}

	defer func() {
		if r := recover(); r != nil {
			matches, err = nil, fmt.Errorf("pcre: match failed: %v", r)
		}
	}()

	subject, err := libc.CString(text)
	if err != nil {
		return nil, err
	}
	defer libc.Xfree(m.tls, subject)

	md := lib.Xpcre2_match_data_create_from_pattern_8(m.tls, m.code, 0)
	if md == 0 {
		return nil, fmt.Errorf("pcre: cannot allocate match data")
	}
	defer lib.Xpcre2_match_data_free_8(m.tls, md)

	loc := make([]int, 2*(m.groups+1))
	offset := 0
	for offset <= len(text) && (n < 0 || len(matches) < n) {
		rc := lib.Xpcre2_match_8(m.tls, m.code, subject, lib.Tsize_t(len(text)), lib.Tsize_t(offset), 0, md, m.mctx)
		if rc == lib.DPCRE2_ERROR_NOMATCH {
			break
		}
		if rc < 0 {
			return nil, &PCREError{Offset: -1, Msg: pcreMessage(m.tls, rc)}
		}

		pairs := int(lib.Xpcre2_get_ovector_count_8(m.tls, md))
		ovec := unsafe.Slice((*lib.Tsize_t)(unsafe.Pointer(lib.Xpcre2_get_ovector_pointer_8(m.tls, md))), 2*pairs)
		for i := range loc {
			loc[i] = -1
			if i/2 < int(rc) && i < len(ovec) && ovec[i] != pcreUnset {
				loc[i] = int(ovec[i])
			}
		}

		if rm, ok := capturesFromIndex(text, loc); ok {
			matches = append(matches, rm)
		}

		// \K can report an end before the start; never move backwards.
		next := max(loc[1], offset)
		if loc[1] <= loc[0] {
			next = advance(text, next)
		}
		offset = next
	}
	return matches, nil
}

// advance returns the offset one character past i. Invalid UTF-8 steps a
// single byte.
func advance(text string, i int) int {
	if i >= len(text) {
		return i + 1
	}
	_, size := utf8.DecodeRuneInString(text[i:])
	return i + size
}

func (m *PCREMatcher) NumGroups() int {
	return m.groups
}

// Close releases the compiled PCRE regex resources. Safe to call more than once.
func (m *PCREMatcher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.code == 0 {
		return
	}
	lib.Xpcre2_match_context_free_8(m.tls, m.mctx)
	lib.Xpcre2_code_free_8(m.tls, m.code)
	m.code, m.mctx = 0, 0
	m.tls.Close()
	runtime.SetFinalizer(m, nil)
}
