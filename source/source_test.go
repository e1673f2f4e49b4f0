package source

import (
	"strings"
	"testing"
)

func TestScriptDigestIsStableAndContentSensitive(t *testing.T) {
	a := NewScript("a", "hello")
	b := NewScript("b", "hello")
	c := NewScript("c", "world")
	if a.Digest() != b.Digest() {
		t.Fatal("two scripts with identical text should have identical digests")
	}
	if a.Digest() == c.Digest() {
		t.Fatal("scripts with different text should have different digests")
	}
	if a.Digest() != a.Digest() {
		t.Fatal("Digest should be stable across repeated calls")
	}
}

func TestScriptLen(t *testing.T) {
	s := NewScript("a", "hello")
	if s.Len() != 5 {
		t.Fatalf("Len() = %d", s.Len())
	}
}

func TestLocationTextAndLineCol(t *testing.T) {
	s := NewScript("a", "line one\nline two\n")
	loc := Location{Script: s, First: 9, Last: 13}
	if loc.Text() != "line" {
		t.Fatalf("Text() = %q", loc.Text())
	}
	rendered := loc.String()
	if !strings.Contains(rendered, "a:2:1") {
		t.Fatalf("String() = %q, want it to report line 2, column 1", rendered)
	}
}

func TestNoLocationIsInvalid(t *testing.T) {
	if NoLocation.IsValid() {
		t.Fatal("NoLocation should be invalid")
	}
	if NoLocation.Text() != "" {
		t.Fatal("NoLocation.Text() should be empty")
	}
	if NoLocation.String() != "<unknown location>" {
		t.Fatalf("got %q", NoLocation.String())
	}
}

func TestRangeCombinesLocationsAndHandlesInvalid(t *testing.T) {
	s := NewScript("a", "0123456789")
	a := Location{Script: s, First: 2, Last: 4}
	b := Location{Script: s, First: 6, Last: 8}
	r := Range(a, b)
	if r.First != 2 || r.Last != 8 {
		t.Fatalf("Range(a,b) = %+v", r)
	}
	if Range(NoLocation, b) != b {
		t.Fatal("Range with an invalid left operand should return the right one")
	}
	if Range(a, NoLocation) != a {
		t.Fatal("Range with an invalid right operand should return the left one")
	}
}

func TestLocationContextRendersCaretUnderneathOffset(t *testing.T) {
	s := NewScript("a.curv", "let (x = 1) y")
	loc := Location{Script: s, First: 12, Last: 13} // "y"
	rendered := loc.Context("not defined: y")
	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Context() produced %d lines, want 4:\n%s", len(lines), rendered)
	}
	if lines[0] != "not defined: y" {
		t.Fatalf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "a.curv:1:13") {
		t.Fatalf("location line = %q", lines[1])
	}
	if lines[3] != "  "+strings.Repeat(" ", 12)+"^" {
		t.Fatalf("caret line = %q, want caret at column 13", lines[3])
	}
}

func TestExceptionErrorUsesLocationContext(t *testing.T) {
	s := NewScript("a.curv", "1 + x")
	loc := Location{Script: s, First: 4, Last: 5}
	exc := NewException(loc, "not defined: x")
	msg := exc.Error()
	if !strings.Contains(msg, "not defined: x") || !strings.Contains(msg, "a.curv:1:5") {
		t.Fatalf("Error() = %q", msg)
	}
}
