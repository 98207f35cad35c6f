package annotate

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// OffsetUnit selects the unit report offsets are expressed in.
type OffsetUnit int

const (
	UTF16 OffsetUnit = iota // UTF-16 code units, as browsers count
	Runes                   // Unicode code points
	Bytes                   // UTF-8 bytes
)

func (u OffsetUnit) String() string {
	switch u {
	case UTF16:
		return "utf16"
	case Runes:
		return "runes"
	case Bytes:
		return "bytes"
	}
	return fmt.Sprintf("OffsetUnit(%d)", int(u))
}

// ParseOffsetUnit parses the names produced by OffsetUnit.String.
func ParseOffsetUnit(s string) (OffsetUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf16", "utf-16":
		return UTF16, nil
	case "runes", "rune", "codepoints":
		return Runes, nil
	case "bytes", "byte":
		return Bytes, nil
	}
	return UTF16, fmt.Errorf("unknown offset unit %q", s)
}

// offsetIndex maps byte offsets in a text to offsets in another unit.
// units[i] is the unit offset of byte i; bytes inside a multi-byte
// sequence map to the offset of the sequence start.
type offsetIndex struct {
	units []int
}

func newOffsetIndex(text string, unit OffsetUnit) *offsetIndex {
	if unit == Bytes {
		return &offsetIndex{}
	}

	units := make([]int, len(text)+1)
	pos := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		for j := 0; j < size; j++ {
			units[i+j] = pos
		}
		i += size
		if unit == UTF16 {
			if n := utf16.RuneLen(r); n > 0 {
				pos += n
				continue
			}
		}
		pos++
	}
	units[len(text)] = pos
	return &offsetIndex{units: units}
}

// at converts a byte offset. Out-of-range offsets are clamped.
func (x *offsetIndex) at(b int) int {
	if x.units == nil {
		return b
	}
	if b < 0 {
		return 0
	}
	if b >= len(x.units) {
		return x.units[len(x.units)-1]
	}
	return x.units[b]
}
