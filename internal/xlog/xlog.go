// Package xlog provides the package-wide structured logger used by the
// root package's primitives (Event, CountdownEvent, Barrier, Future), the
// queue package, and the operation package to record release, queueing,
// and state-change events.
//
// It wraps logiface (github.com/joeycumines/logiface) over the stumpy
// encoder (github.com/joeycumines/stumpy), the pack's zero-dependency
// default. Call sites pass diagnostic location fields explicitly (see
// Site), matching the file/function/line metadata spec.md's external
// interfaces section describes as optional, ignorable tracing context.
package xlog

import (
	"os"
	"runtime"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the concrete logger type shared across the module.
type Logger = logiface.Logger[*stumpy.Event]

// Default is the package-wide logger instance. It writes to stderr at
// Informational level by default. It is a plain package variable with no
// setter; primitives, queues, and operations capture its value when they
// are constructed.
var Default = New(os.Stderr)

// New constructs a Logger writing stumpy-encoded events to w.
func New(w *os.File) *Logger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(w),
		),
		logiface.WithLevel[*stumpy.Event](logiface.LevelInformational),
	)
}

// Site carries caller-location diagnostics, matching the spec's optional
// file/function/line tracing parameters. Callers that don't care about
// tracing overhead may pass a zero Site; callers that do should build one
// with Caller.
type Site struct {
	File     string
	Line     int
	Function string
}

// Caller captures the immediate caller's location, skip frames above the
// xlog.Caller call itself.
func Caller(skip int) Site {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Site{}
	}
	fn := runtime.FuncForPC(pc)
	name := ""
	if fn != nil {
		name = fn.Name()
	}
	return Site{File: file, Line: line, Function: name}
}

// apply adds the site's fields to a logiface builder, when non-zero.
func (s Site) apply(b *logiface.Builder[*stumpy.Event]) *logiface.Builder[*stumpy.Event] {
	if s.File == "" {
		return b
	}
	return b.Str("file", s.File).Int("line", s.Line).Str("func", s.Function)
}

// Debug logs a debug-level event with the given site and key/value fields.
func Debug(l *Logger, site Site, msg string, fields map[string]any) {
	if l == nil || !l.Debug().Enabled() {
		return
	}
	b := l.Debug()
	b = site.apply(b)
	for k, v := range fields {
		b = b.Any(k, v)
	}
	b.Log(msg)
}

// Warn logs a warning-level event with the given site and key/value fields.
func Warn(l *Logger, site Site, msg string, fields map[string]any) {
	if l == nil || !l.Warning().Enabled() {
		return
	}
	b := l.Warning()
	b = site.apply(b)
	for k, v := range fields {
		b = b.Any(k, v)
	}
	b.Log(msg)
}
