// Package syntax implements Curv's recursive-descent parser, producing
// a concrete-syntax tree (Phrase) whose node types mirror the grammar
// productions and retain every token so diagnostics
// can reconstruct exact source spans.
package syntax

import (
	"curv/lexer"
	"curv/source"
)

// Phrase is the common interface of every CST node. A Phrase is
// immutable once built; it may be shared by more than one Meaning
// derived from it (e.g. a module field's definition phrase is also
// the phrase the field's Lambda_Expr closes over).
type Phrase interface {
	Location() source.Location
}

// EmptyPhrase is the result of parsing an empty comma/semicolon list.
type EmptyPhrase struct {
	Loc source.Location
}

func (p *EmptyPhrase) Location() source.Location { return p.Loc }

// NumeralPhrase is a numeric literal token.
type NumeralPhrase struct {
	Tok lexer.Token
}

func (p *NumeralPhrase) Location() source.Location { return p.Tok.Location() }

// StringPhrase is a string literal token; Tok.Literal holds the
// escape-decoded value.
type StringPhrase struct {
	Tok lexer.Token
}

func (p *StringPhrase) Location() source.Location { return p.Tok.Location() }

// IdentifierPhrase is a bare name reference.
type IdentifierPhrase struct {
	Tok lexer.Token
}

func (p *IdentifierPhrase) Location() source.Location { return p.Tok.Location() }
func (p *IdentifierPhrase) Name() string              { return p.Tok.Text() }

// UnaryPhrase covers prefix +, -, !, and the spread/splice prefix ...
type UnaryPhrase struct {
	Op  lexer.Token
	Arg Phrase
}

func (p *UnaryPhrase) Location() source.Location {
	return source.Range(p.Op.Location(), p.Arg.Location())
}

// BinaryPhrase covers arithmetic/relational/logical/range operators,
// and also the postfix forms `.field`, `'index`, and `^power` (the
// left operand is the postfix-so-far, the operator token distinguishes
// the form).
type BinaryPhrase struct {
	Left  Phrase
	Op    lexer.Token
	Right Phrase
}

func (p *BinaryPhrase) Location() source.Location {
	return source.Range(p.Left.Location(), p.Right.Location())
}

// CommaPhrase is a top-level comma-separated list (program body, call
// argument list, list literal body). Commas holds the `,`
// tokens between items (and, if present, a trailing one), in order, so
// the original layout can be reconstructed exactly.
type CommaPhrase struct {
	Items  []Phrase
	Commas []lexer.Token
	Loc    source.Location
}

func (p *CommaPhrase) Location() source.Location { return p.Loc }

// SemicolonPhrase is a semicolon-separated statement list, used inside
// module/record/brace bodies (each item is either a Definition or an
// element expression) and, elsewhere, as sequencing (last value wins).
type SemicolonPhrase struct {
	Items []Phrase
	Semis []lexer.Token
	Loc   source.Location
}

func (p *SemicolonPhrase) Location() source.Location { return p.Loc }

// ParenPhrase is a parenthesized body: `( commas )`.
type ParenPhrase struct {
	LParen lexer.Token
	Body   Phrase
	RParen lexer.Token
}

func (p *ParenPhrase) Location() source.Location {
	return source.Range(p.LParen.Location(), p.RParen.Location())
}

// BracketPhrase is a list literal: `[ commas ]`.
type BracketPhrase struct {
	LBracket lexer.Token
	Body     Phrase
	RBracket lexer.Token
}

func (p *BracketPhrase) Location() source.Location {
	return source.Range(p.LBracket.Location(), p.RBracket.Location())
}

// BracePhrase is a record/module literal: `{ semicolons }`.
type BracePhrase struct {
	LBrace lexer.Token
	Body   Phrase
	RBrace lexer.Token
}

func (p *BracePhrase) Location() source.Location {
	return source.Range(p.LBrace.Location(), p.RBrace.Location())
}

// CallKind distinguishes the three surface spellings of application;
// all three mean "call the function with the argument," they just put
// function and argument in different textual order.
type CallKind int

const (
	// Juxtaposition is ordinary application: `f x`.
	Juxtaposition CallKind = iota
	// LeftCallKind is `f << x`, low-precedence application.
	LeftCallKind
	// RightCallKind is `x >> f`, low-precedence reverse application.
	RightCallKind
)

// CallPhrase is function application. Left and Right are kept in
// their original textual order (not application order) so Unparse can
// reconstruct the source exactly; Callee/Argument give the
// application-order view the analyzer wants.
type CallPhrase struct {
	Left, Right Phrase
	Op          lexer.Token // KLShift or KRShift when explicit; zero Token for Juxtaposition
	Kind        CallKind
}

func (p *CallPhrase) Location() source.Location {
	return source.Range(p.Left.Location(), p.Right.Location())
}

// Callee returns the phrase that evaluates to the function being called.
func (p *CallPhrase) Callee() Phrase {
	if p.Kind == RightCallKind {
		return p.Right
	}
	return p.Left
}

// Argument returns the phrase that evaluates to the call's single argument.
func (p *CallPhrase) Argument() Phrase {
	if p.Kind == RightCallKind {
		return p.Left
	}
	return p.Right
}

// LambdaPhrase is `params -> body`.
type LambdaPhrase struct {
	Params Phrase
	Arrow  lexer.Token
	Body   Phrase
}

func (p *LambdaPhrase) Location() source.Location {
	return source.Range(p.Params.Location(), p.Body.Location())
}

// DefinitionPhrase is `left = right`, `left : right` or `left := right`
// (the separator token distinguishes the spellings; `=` and `:` lower
// to the same Definition meaning, while `:=` lowers to an assignment
// inside a do block and is rejected elsewhere).
type DefinitionPhrase struct {
	Left  Phrase
	Sep   lexer.Token
	Right Phrase
}

func (p *DefinitionPhrase) Location() source.Location {
	return source.Range(p.Left.Location(), p.Right.Location())
}

// IfPhrase is `if cond then (else else)?`.
type IfPhrase struct {
	If   lexer.Token
	Cond Phrase
	Then Phrase
	Else Phrase // nil if absent
}

func (p *IfPhrase) Location() source.Location {
	end := p.Then
	if p.Else != nil {
		end = p.Else
	}
	return source.Range(p.If.Location(), end.Location())
}

// LetPhrase is `let (defs) body`.
type LetPhrase struct {
	Let    lexer.Token
	Params Phrase // a ParenPhrase wrapping a CommaPhrase of Definitions
	Body   Phrase
}

func (p *LetPhrase) Location() source.Location {
	return source.Range(p.Let.Location(), p.Body.Location())
}

// ForPhrase is `for (iter_def) body`.
type ForPhrase struct {
	For     lexer.Token
	IterDef Phrase // a ParenPhrase wrapping a single Definition
	Body    Phrase
}

func (p *ForPhrase) Location() source.Location {
	return source.Range(p.For.Location(), p.Body.Location())
}

// RangePhrase is `first .. last (by step)?` or `first ..< last (by step)?`.
type RangePhrase struct {
	First Phrase
	Op    lexer.Token // KRange or KRangeOpen
	Last  Phrase
	By    lexer.Token // KBy if present; zero Token otherwise
	Step  Phrase      // nil if By absent
}

func (p *RangePhrase) Location() source.Location {
	end := p.Last
	if p.Step != nil {
		end = p.Step
	}
	return source.Range(p.First.Location(), end.Location())
}

// DoPhrase is the `do/var/:=` imperative sub-construct: `do { ... }`,
// a sequence of var-declarations and slot re-assignments scoped to the
// enclosing lambda frame, ending in a result expression.
type DoPhrase struct {
	Do    lexer.Token
	Block *BracePhrase
}

func (p *DoPhrase) Location() source.Location {
	return source.Range(p.Do.Location(), p.Block.Location())
}

// VarDefPhrase is `var id = expr`, valid only inside a DoPhrase block.
type VarDefPhrase struct {
	Var  lexer.Token
	Name lexer.Token
	Eq   lexer.Token
	Init Phrase
}

func (p *VarDefPhrase) Location() source.Location {
	return source.Range(p.Var.Location(), p.Init.Location())
}

// ProgramPhrase is the whole parsed script: `commas EOF`.
type ProgramPhrase struct {
	Body Phrase
	EOF  lexer.Token
}

func (p *ProgramPhrase) Location() source.Location {
	return source.Range(p.Body.Location(), p.EOF.Location())
}
