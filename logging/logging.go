// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logging

import (
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

type options struct {
	level  slog.Leveler
	w      io.Writer
	lp     log.LoggerProvider
	source bool
}

// Option configures the [slog.Logger] returned by [New].
type Option func(*options)

// LogLevel sets the minimum level of records handled locally and
// forwarded to the [log.LoggerProvider]. Defaults to info.
func LogLevel(l slog.Leveler) Option {
	return func(o *options) {
		o.level = l
	}
}

// Writer sets where JSON encoded records are written. Defaults to [os.Stderr].
// A nil writer disables local output.
func Writer(w io.Writer) Option {
	return func(o *options) {
		o.w = w
	}
}

// LoggerProvider sets the [log.LoggerProvider] records are bridged to.
// Defaults to the global one.
func LoggerProvider(lp log.LoggerProvider) Option {
	return func(o *options) {
		o.lp = lp
	}
}

// AddSource includes the source code position in local output.
func AddSource(b bool) Option {
	return func(o *options) {
		o.source = b
	}
}

// New returns an [slog.Logger] which writes JSON records locally and
// bridges them to OpenTelemetry under the instrumentation scope name.
func New(name string, opts ...Option) *slog.Logger {
	return slog.New(NewHandler(name, opts...))
}

// NewHandler returns the [slog.Handler] backing [New].
func NewHandler(name string, opts ...Option) slog.Handler {
	o := &options{
		level: slog.LevelInfo,
		w:     os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.lp == nil {
		o.lp = global.GetLoggerProvider()
	}

	var hs []slog.Handler
	if o.w != nil {
		hs = append(hs, NewTraceHandler(slog.NewJSONHandler(o.w, &slog.HandlerOptions{
			AddSource: o.source,
			Level:     o.level,
		})))
	}
	hs = append(hs, WithLevel(o.level, otelslog.NewHandler(name, otelslog.WithLoggerProvider(o.lp))))

	return Fanout(hs...)
}
