package sahara

import (
	"time"

	"github.com/moffa90/go-sahara/attributes"
)

// Session phases reported through Progress.
const (
	PhaseHandshake = "handshake"
	PhaseQuerying  = "querying"
	PhaseResetting = "resetting"
	PhaseComplete  = "complete"
)

// Progress contains information about a running session.
// Passed to ProgressCallback between exchanges.
type Progress struct {
	// Phase is one of PhaseHandshake, PhaseQuerying, PhaseResetting, PhaseComplete
	Phase string

	// Attribute is the attribute being queried (PhaseQuerying only)
	Attribute attributes.Kind

	// Current is the number of attributes finished so far
	Current int

	// Total is the number of attributes requested
	Total int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the session started
	ElapsedTime time.Duration
}

// ProgressCallback is called between exchanges to report progress.
// It runs on the session goroutine and should return quickly.
//
// Example:
//
//	client := sahara.New(t,
//	    sahara.WithProgressCallback(func(p sahara.Progress) {
//	        fmt.Printf("[%s] %d/%d %s\n", p.Phase, p.Current, p.Total, p.Attribute)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the client.
// This allows integration with any logging framework; see package logging
// for a zap adapter.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	client := sahara.New(t, sahara.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
