// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/z5labs/o11ydemo/internal/try"
	"github.com/z5labs/o11ydemo/lifecycle"

	"github.com/stretchr/testify/assert"
)

func TestRecover(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the underlying App returns an error", func(t *testing.T) {
			appErr := errors.New("failed to run")
			app := Recover(runFunc(func(ctx context.Context) error {
				return appErr
			}))

			err := app.Run(context.Background())
			if !assert.Equal(t, appErr, err) {
				return
			}
		})

		t.Run("if the underlying App panics with an error value", func(t *testing.T) {
			appErr := errors.New("failed to run")
			app := Recover(runFunc(func(ctx context.Context) error {
				panic(appErr)
			}))

			err := app.Run(context.Background())
			if !assert.ErrorIs(t, err, appErr) {
				return
			}
		})

		t.Run("if the underlying App panics with a non-error value", func(t *testing.T) {
			app := Recover(runFunc(func(ctx context.Context) error {
				panic("hello world")
			}))

			err := app.Run(context.Background())

			var perr try.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.NotEmpty(t, perr.Error()) {
				return
			}
			if !assert.Equal(t, "hello world", perr.Value) {
				return
			}
		})
	})
}

func TestWithSignalNotifications(t *testing.T) {
	t.Run("will propogate context cancellation", func(t *testing.T) {
		t.Run("if the parent context is cancelled", func(t *testing.T) {
			app := WithSignalNotifications(runFunc(func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			}), os.Interrupt)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := app.Run(ctx)
			if !assert.ErrorIs(t, err, context.Canceled) {
				return
			}
		})

		t.Run("if the process receives one of the signals", func(t *testing.T) {
			app := WithSignalNotifications(runFunc(func(ctx context.Context) error {
				p, err := os.FindProcess(os.Getpid())
				if err != nil {
					return err
				}
				err = p.Signal(syscall.SIGUSR1)
				if err != nil {
					return err
				}

				<-ctx.Done()
				return ctx.Err()
			}), syscall.SIGUSR1)

			err := app.Run(context.Background())
			if !assert.ErrorIs(t, err, context.Canceled) {
				return
			}
		})
	})
}

func TestPostRun(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the underlying app fails", func(t *testing.T) {
			baseErr := errors.New("failed to run app")
			base := runFunc(func(ctx context.Context) error {
				return baseErr
			})

			app := PostRun(base, nil)

			err := app.Run(context.Background())
			if !assert.ErrorIs(t, err, baseErr) {
				return
			}
		})

		t.Run("if the hook fails", func(t *testing.T) {
			base := runFunc(func(ctx context.Context) error {
				return nil
			})

			hookErr := errors.New("failed to post run")
			app := PostRun(base, lifecycle.HookFunc(func(ctx context.Context) error {
				return hookErr
			}))

			err := app.Run(context.Background())
			if !assert.ErrorIs(t, err, hookErr) {
				return
			}
		})

		t.Run("if both underlying app and the hook fail", func(t *testing.T) {
			baseErr := errors.New("failed to run app")
			base := runFunc(func(ctx context.Context) error {
				return baseErr
			})

			hookErr := errors.New("failed to post run")
			app := PostRun(base, lifecycle.HookFunc(func(ctx context.Context) error {
				return hookErr
			}))

			err := app.Run(context.Background())
			if !assert.ErrorIs(t, err, baseErr) {
				return
			}
			if !assert.ErrorIs(t, err, hookErr) {
				return
			}
		})

		t.Run("if the underlying app panics", func(t *testing.T) {
			ran := false
			app := PostRun(
				runFunc(func(ctx context.Context) error {
					panic("boom")
				}),
				lifecycle.HookFunc(func(ctx context.Context) error {
					ran = true
					return nil
				}),
			)

			err := app.Run(context.Background())

			var perr try.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.True(t, ran) {
				return
			}
		})
	})

	t.Run("will not return an error", func(t *testing.T) {
		t.Run("if both the underlying app and the hook do not fail", func(t *testing.T) {
			base := runFunc(func(ctx context.Context) error {
				return nil
			})

			app := PostRun(base, lifecycle.HookFunc(func(ctx context.Context) error {
				return nil
			}))

			err := app.Run(context.Background())
			if !assert.Nil(t, err) {
				return
			}
		})

		t.Run("if the app context was cancelled before the hook runs", func(t *testing.T) {
			base := runFunc(func(ctx context.Context) error {
				return nil
			})

			app := PostRun(base, lifecycle.HookFunc(func(ctx context.Context) error {
				return ctx.Err()
			}))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := app.Run(ctx)
			if !assert.Nil(t, err) {
				return
			}
		})
	})
}
