// Package selflog reports problems inside logsink itself.
//
// The sink is best-effort: a failing emitter, a dropped write or a record
// logged after Close never surfaces as an error to the caller. When selflog is
// enabled those conditions are written here instead.
//
//	selflog.Enable(os.Stderr)
//	defer selflog.Disable()
//
// Lines look like:
//
//	2026-01-29T15:30:45Z [sink] emitter *emitters.JSONEmitter panicked: ...
//
// Setting LOGSINK_SELFLOG to "stderr", "stdout" or a file path enables it at
// startup.
package selflog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

type output struct {
	w  io.Writer
	fn func(string)
}

var current atomic.Pointer[output]

// Enable sends diagnostics to w. w must be safe for concurrent use; wrap it with Sync otherwise.
func Enable(w io.Writer) {
	if w == nil {
		return
	}
	current.Store(&output{w: w})
}

// EnableFunc sends each formatted diagnostic line to fn.
func EnableFunc(fn func(string)) {
	if fn == nil {
		return
	}
	current.Store(&output{fn: fn})
}

// Disable turns diagnostics off.
func Disable() {
	current.Store(nil)
}

// IsEnabled reports whether diagnostics are being written.
func IsEnabled() bool {
	return current.Load() != nil
}

// Printf writes one diagnostic line. The format should start with the
// component in brackets, e.g. "[json] write failed: %v".
func Printf(format string, args ...any) {
	out := current.Load()
	if out == nil {
		return
	}

	line := time.Now().UTC().Format(time.RFC3339) + " " + fmt.Sprintf(format, args...)
	if out.fn != nil {
		out.fn(line)
		return
	}
	fmt.Fprintln(out.w, line)
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Sync serializes writes to w.
func Sync(w io.Writer) io.Writer {
	return &syncWriter{w: w}
}

func init() {
	switch dest := os.Getenv("LOGSINK_SELFLOG"); dest {
	case "":
	case "stderr":
		Enable(os.Stderr)
	case "stdout":
		Enable(os.Stdout)
	default:
		if f, err := os.OpenFile(dest, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			Enable(Sync(f))
		}
	}
}
