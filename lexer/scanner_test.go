package lexer

import (
	"testing"

	"curv/source"
)

func scanAll(text string) (toks []Token, panicked interface{}) {
	defer func() {
		panicked = recover()
	}()
	s := NewScanner(source.NewScript("<test>", text))
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Kind == KEOF {
			return
		}
	}
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func assertKinds(t *testing.T, text string, want ...Kind) {
	t.Helper()
	toks, panicked := scanAll(text)
	if panicked != nil {
		t.Fatalf("scanning %q panicked: %v", text, panicked)
	}
	want = append(want, KEOF)
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("scanning %q: got %v, want %v", text, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("scanning %q: token %d: got %v, want %v", text, i, got[i], want[i])
		}
	}
}

func TestPunctuators(t *testing.T) {
	assertKinds(t, "(", KLParen)
	assertKinds(t, ")", KRParen)
	assertKinds(t, "[]", KLBracket, KRBracket)
	assertKinds(t, "{}", KLBrace, KRBrace)
	assertKinds(t, ",;.'", KComma, KSemicolon, KDot, KQuote)
}

func TestOperatorsLongestMatchFirst(t *testing.T) {
	assertKinds(t, "..", KRange)
	assertKinds(t, "..<", KRangeOpen)
	assertKinds(t, "...", KEllipsis)
	assertKinds(t, "<", KLt)
	assertKinds(t, "<=", KLe)
	assertKinds(t, "<<", KLShift)
	assertKinds(t, ">", KGt)
	assertKinds(t, ">=", KGe)
	assertKinds(t, ">>", KRShift)
	assertKinds(t, "=", KAssign)
	assertKinds(t, "==", KEq)
	assertKinds(t, "!", KNot)
	assertKinds(t, "!=", KNe)
	assertKinds(t, "-", KMinus)
	assertKinds(t, "->", KArrow)
	assertKinds(t, ":", KColon)
	assertKinds(t, ":=", KWalrus)
	assertKinds(t, "&&", KAnd)
	assertKinds(t, "||", KOr)
}

func TestKeywordsVsIdentifiers(t *testing.T) {
	assertKinds(t, "if else let for by do var", KIf, KElse, KLet, KFor, KBy, KDo, KVar)
	assertKinds(t, "iffy", KIdent)
	assertKinds(t, "_let", KIdent)
}

func TestNumerals(t *testing.T) {
	assertKinds(t, "42", KNumeral)
	assertKinds(t, "3.14", KNumeral)
	assertKinds(t, "1e10", KNumeral)
	assertKinds(t, "1.5e-3", KNumeral)
	assertKinds(t, "1e", KNumeral, KIdent) // trailing 'e' with no digits is not consumed as exponent
}

func TestStringEscapes(t *testing.T) {
	toks, panicked := scanAll(`"hi\n\t\"\\"`)
	if panicked != nil {
		t.Fatalf("panicked: %v", panicked)
	}
	if len(toks) != 2 || toks[0].Kind != KString {
		t.Fatalf("got %v", kinds(toks))
	}
	want := "hi\n\t\"\\"
	if toks[0].Literal != want {
		t.Fatalf("got literal %q, want %q", toks[0].Literal, want)
	}
}

func TestUnterminatedStringPanics(t *testing.T) {
	_, panicked := scanAll(`"abc`)
	if panicked == nil {
		t.Fatal("expected panic for unterminated string")
	}
	if _, ok := panicked.(*source.Exception); !ok {
		t.Fatalf("expected *source.Exception, got %T", panicked)
	}
}

func TestUnexpectedCharacterPanics(t *testing.T) {
	_, panicked := scanAll("@")
	if panicked == nil {
		t.Fatal("expected panic for unexpected character")
	}
}

func TestCommentsAndWhitespaceAreTrivia(t *testing.T) {
	toks, panicked := scanAll("  // a comment\n  42 // trailing\n")
	if panicked != nil {
		t.Fatalf("panicked: %v", panicked)
	}
	if len(toks) != 2 || toks[0].Kind != KNumeral || toks[1].Kind != KEOF {
		t.Fatalf("got %v", kinds(toks))
	}
	if toks[0].Text() != "42" {
		t.Fatalf("got text %q", toks[0].Text())
	}
}

func TestTokenTextExcludesTrivia(t *testing.T) {
	s := NewScanner(source.NewScript("<test>", "  foo"))
	tok := s.Next()
	if tok.Text() != "foo" {
		t.Fatalf("got %q", tok.Text())
	}
	if tok.FirstWhite != 0 || tok.First != 2 {
		t.Fatalf("got FirstWhite=%d First=%d", tok.FirstWhite, tok.First)
	}
}

func TestPushback(t *testing.T) {
	s := NewScanner(source.NewScript("<test>", "a b"))
	first := s.Next()
	second := s.Next()
	s.Push(second)
	s.Push(first)
	if got := s.Next(); got.Text() != "a" {
		t.Fatalf("got %q", got.Text())
	}
	if got := s.Next(); got.Text() != "b" {
		t.Fatalf("got %q", got.Text())
	}
}
