// Package source owns script text and maps byte ranges to line/column
// positions so diagnostics can reconstruct exact source context.
package source

import (
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/ripemd160"
)

// Script is shared, immutable source text with a filename. Every
// Location in the system is relative to one Script.
type Script struct {
	Name string
	Text string

	digestOnce sync.Once
	digest     string
}

// NewScript wraps source text with its originating name (typically a
// file path, or "<stdin>"/"<string>" for non-file sources).
func NewScript(name, text string) *Script {
	return &Script{Name: name, Text: text}
}

// Digest returns a stable content fingerprint for this script's text,
// used as a cache key by system.Loader so that repeatedly including or
// file()-loading the same script body does not re-parse/re-analyze it.
// It is never shown to the user; any stable hash would do.
func (s *Script) Digest() string {
	s.digestOnce.Do(func() {
		h := ripemd160.New()
		_, _ = h.Write([]byte(s.Text))
		s.digest = hex.EncodeToString(h.Sum(nil))
	})
	return s.digest
}

// Len returns the number of bytes in the script text.
func (s *Script) Len() int {
	return len(s.Text)
}
