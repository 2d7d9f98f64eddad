// Package debug provides opt-in trace logging, enabled at runtime by
// setting the CDC_DEBUG environment variable. Grounded on restic's
// internal/debug package, simplified: restic compiles two variants of its
// binary (a debug build and a release build, selected by a build tag) so
// that the release binary pays zero cost for the logging calls; this
// repository ships a single binary, so the check is a runtime flag instead of
// a build tag. See DESIGN.md for the trade-off.
package debug

import (
	"fmt"
	"log"
	"os"
)

var logger *log.Logger

func init() {
	if os.Getenv("CDC_DEBUG") == "" {
		return
	}
	logger = log.New(os.Stderr, "cdc debug: ", log.LstdFlags|log.Lshortfile)
}

// Log writes a formatted trace line if CDC_DEBUG is set, otherwise it is a
// no-op.
func Log(format string, args ...interface{}) {
	if logger == nil {
		return
	}
	logger.Output(2, fmt.Sprintf(format, args...)) //nolint:errcheck
}

// Enabled reports whether trace logging is active.
func Enabled() bool {
	return logger != nil
}
