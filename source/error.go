package source

import "strings"

// Exception is the error type raised by every stage of the pipeline:
// lexical, syntactic, semantic, and runtime errors all carry a
// Location so the caller can render a Context diagnostic. Trace
// accumulates one line per active call frame a runtime error
// unwinds through, deepest call first; lexer/syntax/analyzer errors
// never populate it, since those stages have no call stack yet.
type Exception struct {
	Loc     Location
	Message string
	Trace   []string
}

func (e *Exception) Error() string {
	msg := e.Loc.Context(e.Message)
	if len(e.Trace) > 0 {
		msg += "\n" + strings.Join(e.Trace, "\n")
	}
	return msg
}

// NewException builds an Exception at a given Location.
func NewException(loc Location, message string) *Exception {
	return &Exception{Loc: loc, Message: message}
}
