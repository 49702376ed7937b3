// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logging

import (
	"context"
	"errors"
	"log/slog"
)

type fanoutHandler []slog.Handler

// Fanout returns an [slog.Handler] which passes every record to each
// of the given handlers that has it enabled.
func Fanout(hs ...slog.Handler) slog.Handler {
	return fanoutHandler(hs)
}

func (hs fanoutHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	for _, h := range hs {
		if h.Enabled(ctx, lvl) {
			return true
		}
	}
	return false
}

func (hs fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		err := h.Handle(ctx, r.Clone())
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (hs fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanoutHandler, len(hs))
	for i, h := range hs {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (hs fanoutHandler) WithGroup(name string) slog.Handler {
	next := make(fanoutHandler, len(hs))
	for i, h := range hs {
		next[i] = h.WithGroup(name)
	}
	return next
}

type levelHandler struct {
	level slog.Leveler
	slog  slog.Handler
}

// WithLevel returns an [slog.Handler] which drops every record below level.
func WithLevel(level slog.Leveler, h slog.Handler) slog.Handler {
	return levelHandler{level: level, slog: h}
}

func (h levelHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	if lvl < h.level.Level() {
		return false
	}
	return h.slog.Enabled(ctx, lvl)
}

func (h levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.slog.Handle(ctx, r)
}

func (h levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return levelHandler{level: h.level, slog: h.slog.WithAttrs(attrs)}
}

func (h levelHandler) WithGroup(name string) slog.Handler {
	return levelHandler{level: h.level, slog: h.slog.WithGroup(name)}
}
