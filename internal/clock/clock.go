// Package clock backs the @time builtin module and the top-level clock()
// native with a single source of wall-clock reads.
package clock

import "time"

var start = time.Now()

// Nanoseconds returns nanoseconds since the VM process started.
func Nanoseconds() int64 { return time.Since(start).Nanoseconds() }

// Microseconds returns microseconds since the VM process started.
func Microseconds() int64 { return time.Since(start).Microseconds() }

// Milliseconds returns milliseconds since the VM process started.
func Milliseconds() int64 { return time.Since(start).Milliseconds() }

// Seconds returns fractional seconds since the VM process started, the
// value the top-level clock() native reports.
func Seconds() float64 { return time.Since(start).Seconds() }
