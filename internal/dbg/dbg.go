// Package dbg supplies a silent-by-default structured logger and a
// panic-on-violation assertion, both switched on by an environment
// variable rather than compiled out.
package dbg

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Log is the package-wide debug logger. It discards everything unless
// BRKHEAP_DEBUG is set in the environment, at which point it writes
// text-formatted records to stderr at LevelDebug.
var Log = newLogger()

// Enabled reports whether BRKHEAP_DEBUG is set, i.e. whether the invariant
// validator (see package heap's debug.go) should run on every public call.
var Enabled = os.Getenv("BRKHEAP_DEBUG") != ""

func newLogger() *slog.Logger {
	if os.Getenv("BRKHEAP_DEBUG") == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Assert panics with a formatted message when cond is false. Callers gate
// it behind Enabled so release builds pay nothing for the invariant sweep;
// an assertion failure is treated as fatal and non-recoverable.
func Assert(cond bool, msg string, args ...any) {
	if cond {
		return
	}
	detail := fmt.Sprintf(msg, args...)
	Log.Error("assertion failed", slog.String("detail", detail))
	panic("brkheap: invariant violated: " + detail)
}
