// Package format provides text helpers for terminal output: visible-width
// measurement, ANSI-safe truncation and icon presentation for civic
// records.
package format

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/civica-dev/civica/internal/constants"
)

// ansiRegex matches ANSI escape sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripAnsi removes ANSI escape sequences from a string.
func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// segment is one display unit of a styled string: an ANSI escape (zero
// width), an emoji presentation pair (base + U+FE0F, two columns) or a
// plain rune.
type segment struct {
	text  string
	width int
	ansi  bool
}

// segments splits s into display units. Standalone variation selectors
// are dropped.
func segments(s string) []segment {
	var segs []segment
	escapes := ansiRegex.FindAllStringIndex(s, -1)

	pos := 0
	next := 0
	for pos < len(s) {
		if next < len(escapes) && pos == escapes[next][0] {
			segs = append(segs, segment{text: s[escapes[next][0]:escapes[next][1]], ansi: true})
			pos = escapes[next][1]
			next++
			continue
		}

		r, size := utf8.DecodeRuneInString(s[pos:])
		if r == '️' {
			pos += size
			continue
		}

		// Emoji presentation pairs display as two columns in modern
		// terminals and must stay together.
		end := pos + size
		if end < len(s) {
			if vs, vsSize := utf8.DecodeRuneInString(s[end:]); vs == '️' {
				segs = append(segs, segment{text: s[pos : end+vsSize], width: 2})
				pos = end + vsSize
				continue
			}
		}

		segs = append(segs, segment{text: s[pos:end], width: runewidth.RuneWidth(r)})
		pos = end
	}
	return segs
}

// DisplayWidth returns the visible width of a string in terminal columns,
// counting emoji presentation pairs as two and ANSI escapes as zero.
func DisplayWidth(s string) int {
	width := 0
	for _, seg := range segments(s) {
		width += seg.width
	}
	return width
}

// TruncateToWidth fits a string within maxWidth display columns, keeping
// ANSI escapes intact. When truncation happens, "..." is appended, plus a
// reset code if the string carried styling. Returns the string and its
// visible width.
func TruncateToWidth(s string, maxWidth int) (string, int) {
	width := DisplayWidth(s)
	if width <= maxWidth {
		return s, width
	}

	target := maxWidth - constants.TruncationSuffixWidth
	if target < 0 {
		target = 0
	}

	var b strings.Builder
	visible := 0
	styled := false
	for _, seg := range segments(s) {
		if seg.ansi {
			styled = true
			b.WriteString(seg.text)
			continue
		}
		if visible+seg.width > target {
			break
		}
		b.WriteString(seg.text)
		visible += seg.width
	}

	b.WriteString("...")
	if styled {
		b.WriteString("\x1b[0m")
	}
	return b.String(), maxWidth
}

// PadRight pads a string with spaces to reach the target visible width.
func PadRight(s string, visibleWidth, targetWidth int) string {
	if visibleWidth >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-visibleWidth)
}
