// Package monitoring holds the process-wide diagnostic logger used by the
// prediction path. It exists so tests can mute or capture output, and so
// flood-prone messages can be throttled instead of written per sample.
package monitoring

import (
	"log"
	"sync"
	"time"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Throttled returns a logger that forwards to Logf at most once per
// interval and counts what it suppressed in between. Meant for messages
// that would otherwise repeat on every sample while something downstream
// is stuck, like the emitter's queue-full drop.
func Throttled(interval time.Duration) func(format string, v ...interface{}) {
	var mu sync.Mutex
	var last time.Time
	var suppressed int
	return func(format string, v ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		now := time.Now()
		if !last.IsZero() && now.Sub(last) < interval {
			suppressed++
			return
		}
		if suppressed > 0 {
			format += " (%d similar suppressed)"
			v = append(v, suppressed)
		}
		last = now
		suppressed = 0
		Logf(format, v...)
	}
}
