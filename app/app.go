// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app provides helpers for common [o11ydemo.App] implementation patterns.
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/z5labs/o11ydemo"
	"github.com/z5labs/o11ydemo/internal/try"
	"github.com/z5labs/o11ydemo/lifecycle"
)

type runFunc func(context.Context) error

func (f runFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Recover will wrap the give [o11ydemo.App] with panic recovery.
// The recovered value is returned as a [try.PanicError] which
// unwraps to the value itself when it implements [error].
func Recover(app o11ydemo.App) o11ydemo.App {
	return runFunc(func(ctx context.Context) (err error) {
		defer try.Recover(&err)

		return app.Run(ctx)
	})
}

// WithSignalNotifications wraps a given [o11ydemo.App] in an implementation
// that cancels the [context.Context] that's passed to app.Run if an [os.Signal]
// is received by the running process.
func WithSignalNotifications(app o11ydemo.App, signals ...os.Signal) o11ydemo.App {
	return runFunc(func(ctx context.Context) error {
		sigCtx, cancel := signal.NotifyContext(ctx, signals...)
		defer cancel()

		return app.Run(sigCtx)
	})
}

// PostRun runs the given [lifecycle.Hook] after the [o11ydemo.App]
// returns, even if it returned an error or panicked.
func PostRun(app o11ydemo.App, hook lifecycle.Hook) o11ydemo.App {
	return runFunc(func(ctx context.Context) (err error) {
		defer runHook(ctx, hook, &err)
		defer try.Recover(&err)

		return app.Run(ctx)
	})
}

func runHook(ctx context.Context, hook lifecycle.Hook, err *error) {
	if hook == nil {
		return
	}

	hookErr := hook.Run(context.WithoutCancel(ctx))

	// errors.Join returns nil if both are nil
	*err = errors.Join(*err, hookErr)
}
