package syntax

import (
	"strings"

	"curv/lexer"
)

// Unparse reconstructs the exact original source text a Phrase was
// parsed from, by walking its tokens in document order and
// concatenating each token's leading-trivia-to-end span. This works
// because every Phrase retains every token it was built from,
// including punctuation, except IfPhrase's `else` keyword, whose text
// tokens() recovers as the gap between the Then and Else phrases; so
// no information needed to re-render the source is ever discarded.
func Unparse(p Phrase) string {
	var b strings.Builder
	for _, tok := range tokens(p) {
		b.WriteString(tok.WhiteLocation().Text())
	}
	return b.String()
}

// tokens collects every token spanned by a Phrase, in source order.
func tokens(p Phrase) []lexer.Token {
	switch n := p.(type) {
	case *EmptyPhrase:
		return nil
	case *NumeralPhrase:
		return []lexer.Token{n.Tok}
	case *StringPhrase:
		return []lexer.Token{n.Tok}
	case *IdentifierPhrase:
		return []lexer.Token{n.Tok}
	case *UnaryPhrase:
		return append([]lexer.Token{n.Op}, tokens(n.Arg)...)
	case *BinaryPhrase:
		out := tokens(n.Left)
		out = append(out, n.Op)
		return append(out, tokens(n.Right)...)
	case *CommaPhrase:
		var out []lexer.Token
		for i, item := range n.Items {
			out = append(out, tokens(item)...)
			if i < len(n.Commas) {
				out = append(out, n.Commas[i])
			}
		}
		return out
	case *SemicolonPhrase:
		var out []lexer.Token
		for i, item := range n.Items {
			out = append(out, tokens(item)...)
			if i < len(n.Semis) {
				out = append(out, n.Semis[i])
			}
		}
		return out
	case *ParenPhrase:
		out := []lexer.Token{n.LParen}
		out = append(out, tokens(n.Body)...)
		return append(out, n.RParen)
	case *BracketPhrase:
		out := []lexer.Token{n.LBracket}
		out = append(out, tokens(n.Body)...)
		return append(out, n.RBracket)
	case *BracePhrase:
		out := []lexer.Token{n.LBrace}
		out = append(out, tokens(n.Body)...)
		return append(out, n.RBrace)
	case *CallPhrase:
		out := tokens(n.Left)
		if n.Kind != Juxtaposition {
			out = append(out, n.Op)
		}
		return append(out, tokens(n.Right)...)
	case *LambdaPhrase:
		out := tokens(n.Params)
		out = append(out, n.Arrow)
		return append(out, tokens(n.Body)...)
	case *DefinitionPhrase:
		out := tokens(n.Left)
		out = append(out, n.Sep)
		return append(out, tokens(n.Right)...)
	case *IfPhrase:
		out := []lexer.Token{n.If}
		out = append(out, tokens(n.Cond)...)
		thenToks := tokens(n.Then)
		out = append(out, thenToks...)
		if n.Else != nil {
			elseToks := tokens(n.Else)
			gap := thenToks[len(thenToks)-1].Last
			out = append(out, lexer.Token{Kind: lexer.KElse, Script: n.If.Script, FirstWhite: gap, First: gap, Last: elseToks[0].FirstWhite})
			out = append(out, elseToks...)
		}
		return out
	case *LetPhrase:
		out := []lexer.Token{n.Let}
		out = append(out, tokens(n.Params)...)
		return append(out, tokens(n.Body)...)
	case *ForPhrase:
		out := []lexer.Token{n.For}
		out = append(out, tokens(n.IterDef)...)
		return append(out, tokens(n.Body)...)
	case *RangePhrase:
		out := tokens(n.First)
		out = append(out, n.Op)
		out = append(out, tokens(n.Last)...)
		if n.Step != nil {
			out = append(out, n.By)
			out = append(out, tokens(n.Step)...)
		}
		return out
	case *DoPhrase:
		out := []lexer.Token{n.Do, n.Block.LBrace}
		out = append(out, tokens(n.Block.Body)...)
		return append(out, n.Block.RBrace)
	case *VarDefPhrase:
		out := []lexer.Token{n.Var, n.Name, n.Eq}
		return append(out, tokens(n.Init)...)
	case *ProgramPhrase:
		out := tokens(n.Body)
		return append(out, n.EOF)
	}
	return nil
}
