// Package logging provides the package-wide structured logger used by
// the slow paths of the engine (handle table bookkeeping) and by the
// command-line tools. The hot inner loops of determinize/minimize/
// compose never log; within the library only the handle table does.
package logging

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

var current atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	current.Store(&nop)
}

// SetLogger installs the logger used by this package going forward.
// Embedding applications call this once at startup; until they do,
// Logger returns a no-op logger so the library is silent by default.
func SetLogger(l zerolog.Logger) {
	current.Store(&l)
}

// Logger returns the currently installed logger.
func Logger() zerolog.Logger {
	return *current.Load()
}
