package viewer

import (
	"io"
	"log"
	"sync"
)

// LogWriters holds the io.Writers for each logging stream.
type LogWriters struct {
	Ops   io.Writer
	Diag  io.Writer
	Trace io.Writer
}

var (
	mu          sync.RWMutex
	opsLogger   *log.Logger
	diagLogger  *log.Logger
	traceLogger *log.Logger
)

// SetLogWriters configures all three logging streams at once.
// Pass nil for any writer to disable that stream.
func SetLogWriters(w LogWriters) {
	mu.Lock()
	defer mu.Unlock()
	opsLogger = newLogger("[viewer] ", w.Ops)
	diagLogger = newLogger("[viewer] ", w.Diag)
	traceLogger = newLogger("[viewer] ", w.Trace)
}

// newLogger creates a *log.Logger for a given writer, or returns nil if w is nil.
func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

// Opsf logs to the ops stream (actionable warnings, errors, lifecycle events).
func Opsf(format string, args ...interface{}) {
	mu.RLock()
	l := opsLogger
	mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

// Diagf logs to the diag stream (per-frame diagnostics).
func Diagf(format string, args ...interface{}) {
	mu.RLock()
	l := diagLogger
	mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

// Tracef logs to the trace stream (per-instance detail).
func Tracef(format string, args ...interface{}) {
	mu.RLock()
	l := traceLogger
	mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

// OnceLogger forwards a message to its sink the first time a key is seen
// and drops every later message for the same key. Safe for concurrent use.
type OnceLogger struct {
	sink func(format string, args ...interface{})

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewOnceLogger returns a OnceLogger writing to sink. A nil sink logs to
// the ops stream.
func NewOnceLogger(sink func(format string, args ...interface{})) *OnceLogger {
	if sink == nil {
		sink = Opsf
	}
	return &OnceLogger{sink: sink, seen: make(map[string]struct{})}
}

// Logf logs the formatted message unless key has already been logged.
// It reports whether the message was emitted.
func (o *OnceLogger) Logf(key string, format string, args ...interface{}) bool {
	o.mu.Lock()
	if _, ok := o.seen[key]; ok {
		o.mu.Unlock()
		return false
	}
	o.seen[key] = struct{}{}
	o.mu.Unlock()

	o.sink(format, args...)
	return true
}

// Reset forgets every key, so the next failure for each is logged again.
func (o *OnceLogger) Reset() {
	o.mu.Lock()
	o.seen = make(map[string]struct{})
	o.mu.Unlock()
}

// Len returns the number of distinct keys logged so far.
func (o *OnceLogger) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.seen)
}

// Errorf logs err prefixed with key, once per key.
func (o *OnceLogger) Errorf(key string, err error) bool {
	return o.Logf(key, "%s: %v", key, err)
}
