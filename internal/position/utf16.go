// Package position converts between LSP positions, which count UTF-16 code
// units, and byte offsets into Go strings.
package position

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ToByte returns the byte offset of the UTF-16 column col in line. A column
// inside a surrogate pair is clamped to the start of its rune; a column past
// the end yields len(line).
func ToByte(line string, col int) int {
	units := 0
	for i, r := range line {
		if units >= col {
			return i
		}
		n := utf16.RuneLen(r)
		if n < 1 {
			n = 1
		}
		if units+n > col {
			return i
		}
		units += n
	}
	return len(line)
}

// ToUTF16 returns the UTF-16 column of byte offset off in line
func ToUTF16(line string, off int) uint32 {
	if off > len(line) {
		off = len(line)
	}
	var units uint32
	for len(line[:off]) > 0 {
		r, size := utf8.DecodeRuneInString(line[:off])
		n := utf16.RuneLen(r)
		if n < 1 {
			n = 1
		}
		units += uint32(n)
		line, off = line[size:], off-size
	}
	return units
}

// Len returns the length of s in UTF-16 code units
func Len(s string) uint32 {
	return ToUTF16(s, len(s))
}

// Offset returns the byte offset in content of the zero-based line and
// UTF-16 character. It reports false when line is past the end.
func Offset(content string, line, character uint32) (int, bool) {
	start := 0
	for i := uint32(0); i < line; i++ {
		nl := strings.IndexByte(content[start:], '\n')
		if nl < 0 {
			return 0, false
		}
		start += nl + 1
	}
	text := content[start:]
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[:nl]
	}
	return start + ToByte(text, int(character)), true
}

// At returns the zero-based line and UTF-16 character of byte offset off
func At(content string, off int) (line, character uint32) {
	if off > len(content) {
		off = len(content)
	}
	lineStart := strings.LastIndexByte(content[:off], '\n') + 1
	line = uint32(strings.Count(content[:lineStart], "\n"))
	return line, ToUTF16(content[lineStart:], off-lineStart)
}
