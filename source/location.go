package source

import (
	"fmt"
	"strings"
)

// Location is a half-open byte range [First,Last) within a Script.
// Every Phrase, Token, and Meaning carries one so that diagnostics can
// point at exact source text.
type Location struct {
	Script *Script
	First  int
	Last   int
}

// NoLocation is used for synthesized phrases (e.g. builtin constants)
// that have no source text of their own.
var NoLocation = Location{}

// IsValid reports whether this Location actually points into a Script.
func (l Location) IsValid() bool {
	return l.Script != nil
}

// Text returns the source slice this Location spans.
func (l Location) Text() string {
	if !l.IsValid() {
		return ""
	}
	return l.Script.Text[l.First:l.Last]
}

// lineCol returns the 1-based line and column of a byte offset.
func (l Location) lineCol(offset int) (line, col int) {
	line, col = 1, 1
	text := l.Script.Text
	if offset > len(text) {
		offset = len(text)
	}
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return
}

// Range returns the combined Location spanning from the start of a to
// the end of b; both must belong to the same Script.
func Range(a, b Location) Location {
	if !a.IsValid() {
		return b
	}
	if !b.IsValid() {
		return a
	}
	return Location{Script: a.Script, First: a.First, Last: b.Last}
}

// String renders "name:line:col".
func (l Location) String() string {
	if !l.IsValid() {
		return "<unknown location>"
	}
	line, col := l.lineCol(l.First)
	return fmt.Sprintf("%s:%d:%d", l.Script.Name, line, col)
}

// lineText returns the full line of source text containing offset,
// along with the 1-based line number and column of offset within it.
func (l Location) lineText(offset int) (lineText string, line, col int) {
	text := l.Script.Text
	line, col = l.lineCol(offset)
	start := offset
	for start > 0 && text[start-1] != '\n' {
		start--
	}
	end := offset
	for end < len(text) && text[end] != '\n' {
		end++
	}
	return text[start:end], line, col
}

// Context renders a multi-line diagnostic: the message, the originating
// file:line:col, the offending source line, and a caret pointing at the
// first offending byte. This is the shape every Exception uses to
// report where it happened.
func (l Location) Context(message string) string {
	if !l.IsValid() {
		return message
	}
	lineText, line, col := l.lineText(l.First)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", message)
	fmt.Fprintf(&b, "  at %s:%d:%d\n", l.Script.Name, line, col)
	fmt.Fprintf(&b, "  %s\n", lineText)
	fmt.Fprintf(&b, "  %s^\n", strings.Repeat(" ", col-1))
	return b.String()
}
