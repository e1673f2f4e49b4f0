package system

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"curv/analyzer"
	"curv/source"
)

// Loader is the default System implementation: it reads scripts off
// disk, resolving a relative `file` path against the including
// script's own directory, and caches both the parsed script text and
// its analysis by content digest rather than by path — two paths
// whose files hold byte-identical text share one *source.Script and
// one analyzer.Operation, so `file()` loads and analyzes a given
// script body at most once regardless of how many paths reference it.
// Generalizes MOO's db.Store mutex-guarded map (db/store.go) from an
// object-ID cache to a content-addressed one.
type Loader struct {
	console io.Writer

	mu       sync.Mutex
	byDigest map[string]*source.Script
	analyzed map[string]analyzer.Operation
}

func NewLoader(console io.Writer) *Loader {
	return &Loader{
		console:  console,
		byDigest: make(map[string]*source.Script),
		analyzed: make(map[string]analyzer.Operation),
	}
}

func (l *Loader) Console() io.Writer { return l.console }

// LoadScript resolves path relative to relativeTo's directory (or the
// working directory if relativeTo is nil), reads it off disk, and
// returns the cached Script for its content digest if this exact text
// has already been loaded from anywhere — a cache lookup keyed by
// source.Script.Digest, not by the resolved path.
func (l *Loader) LoadScript(path string, relativeTo *source.Script) (*source.Script, error) {
	resolved := path
	if !filepath.IsAbs(path) && relativeTo != nil {
		resolved = filepath.Join(filepath.Dir(relativeTo.Name), path)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return nil, fmt.Errorf("file: cannot resolve %q: %w", path, err)
	}

	text, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("file: cannot read %q: %w", path, err)
	}
	script := source.NewScript(abs, string(text))
	digest := script.Digest()

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.byDigest[digest]; ok {
		return cached, nil
	}
	l.byDigest[digest] = script
	return script, nil
}

// Analyzed returns the cached analysis of script, running analyze and
// caching its result under script's content digest the first time
// this content is seen. Because the cache key is content, not path or
// identity, a second script loaded from a different path with the
// same text reuses the first one's analysis outright.
func (l *Loader) Analyzed(script *source.Script, analyze func() (analyzer.Operation, error)) (analyzer.Operation, error) {
	digest := script.Digest()

	l.mu.Lock()
	if op, ok := l.analyzed[digest]; ok {
		l.mu.Unlock()
		return op, nil
	}
	l.mu.Unlock()

	op, err := analyze()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.analyzed[digest] = op
	l.mu.Unlock()
	return op, nil
}
