package lexer

import "curv/source"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	KEOF     Kind = iota
	KMissing      // sentinel: an expected-but-absent token, for diagnostics
	KPhrase       // compound span covering a whole Phrase, for diagnostics only

	KIdent
	KNumeral
	KString

	// Punctuators
	KLParen
	KRParen
	KLBracket
	KRBracket
	KLBrace
	KRBrace
	KComma
	KSemicolon
	KDot
	KQuote // '

	// Operators
	KPlus
	KMinus
	KStar
	KSlash
	KCaret
	KEq
	KNe
	KLt
	KLe
	KGt
	KGe
	KAnd
	KOr
	KNot
	KRange     // ..
	KRangeOpen // ..<
	KLShift    // <<
	KRShift    // >>

	KAssign   // =
	KArrow    // ->
	KColon    // :
	KEllipsis // ...
	KWalrus   // :=

	// Keywords
	KIf
	KElse
	KLet
	KFor
	KBy
	KDo
	KVar
)

var kindNames = map[Kind]string{
	KEOF: "end of input", KMissing: "missing token", KPhrase: "phrase",
	KIdent: "identifier", KNumeral: "numeral", KString: "string literal",
	KLParen: "'('", KRParen: "')'", KLBracket: "'['", KRBracket: "']'",
	KLBrace: "'{'", KRBrace: "'}'", KComma: "','", KSemicolon: "';'",
	KDot: "'.'", KQuote: "'''",
	KPlus: "'+'", KMinus: "'-'", KStar: "'*'", KSlash: "'/'", KCaret: "'^'",
	KEq: "'=='", KNe: "'!='", KLt: "'<'", KLe: "'<='", KGt: "'>'", KGe: "'>='",
	KAnd: "'&&'", KOr: "'||'", KNot: "'!'",
	KRange: "'..'", KRangeOpen: "'..<'", KLShift: "'<<'", KRShift: "'>>'",
	KAssign: "'='", KArrow: "'->'", KColon: "':'", KEllipsis: "'...'", KWalrus: "':='",
	KIf: "'if'", KElse: "'else'", KLet: "'let'", KFor: "'for'", KBy: "'by'",
	KDo: "'do'", KVar: "'var'",
}

// String returns a human-readable category name, used by the parser's
// "expected X" error messages.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown token"
}

var keywords = map[string]Kind{
	"if": KIf, "else": KElse, "let": KLet, "for": KFor, "by": KBy,
	"do": KDo, "var": KVar,
}

// Token is a tagged record of byte offsets into a Script: FirstWhite is
// the start of its leading trivia (whitespace/comments), First is the
// first non-trivia byte, and Last is one past the token's last byte.
// Keeping FirstWhite lets a consumer reconstruct the original source
// exactly by concatenating each token's [FirstWhite,Last) span.
type Token struct {
	Kind       Kind
	Script     *source.Script
	FirstWhite int
	First      int
	Last       int
	// Literal holds the decoded value for KString (escapes resolved)
	// and is empty for every other Kind.
	Literal string
}

// Text returns the raw source text of the token, not counting leading
// trivia.
func (t Token) Text() string {
	if t.Script == nil {
		return ""
	}
	return t.Script.Text[t.First:t.Last]
}

// Location returns the token's source span for diagnostics.
func (t Token) Location() source.Location {
	return source.Location{Script: t.Script, First: t.First, Last: t.Last}
}

// WhiteLocation returns the span including leading trivia, used when
// reconstructing source layout exactly.
func (t Token) WhiteLocation() source.Location {
	return source.Location{Script: t.Script, First: t.FirstWhite, Last: t.Last}
}
