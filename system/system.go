// Package system implements the evaluator's two external collaborator
// interfaces (console output, script loading by path), generalizing
// MOO's db.Store cache-by-key pattern and its server/console
// sink into Curv's much smaller surface.
package system

import (
	"io"

	"curv/source"
)

// System is the interface the evaluator consumes for everything that
// touches the outside world: printing (the `echo` builtin) and
// loading another script by path (the `file` builtin). Concurrent
// script evaluations must use disjoint System instances except for the
// console sink, which is the one resource allowed to be shared.
type System interface {
	Console() io.Writer
	LoadScript(path string, relativeTo *source.Script) (*source.Script, error)
}
