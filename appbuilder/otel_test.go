// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package appbuilder

import (
	"context"
	"errors"
	"testing"

	"github.com/z5labs/o11ydemo"
	"github.com/z5labs/o11ydemo/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type otelInitFunc func(context.Context) (lifecycle.Hook, error)

func (f otelInitFunc) InitializeOTel(ctx context.Context) (lifecycle.Hook, error) {
	return f(ctx)
}

func noopApp() o11ydemo.App {
	return appFunc(func(ctx context.Context) error {
		return nil
	})
}

func TestOTel(t *testing.T) {
	t.Run("o11ydemo.AppBuilder will return an error", func(t *testing.T) {
		t.Run("if InitializeOTel fails", func(t *testing.T) {
			initErr := errors.New("failed to init otel")
			b := OTel(o11ydemo.AppBuilderFunc[otelInitFunc](func(ctx context.Context, cfg otelInitFunc) (o11ydemo.App, error) {
				return nil, nil
			}))

			_, err := b.Build(context.Background(), otelInitFunc(func(ctx context.Context) (lifecycle.Hook, error) {
				return nil, initErr
			}))
			if !assert.ErrorIs(t, err, initErr) {
				return
			}
		})

		t.Run("if the context is already cancelled", func(t *testing.T) {
			b := OTel(o11ydemo.AppBuilderFunc[otelInitFunc](func(ctx context.Context, cfg otelInitFunc) (o11ydemo.App, error) {
				return nil, nil
			}))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := b.Build(ctx, otelInitFunc(func(ctx context.Context) (lifecycle.Hook, error) {
				return nil, nil
			}))
			if !assert.ErrorIs(t, err, context.Canceled) {
				return
			}
		})

		t.Run("and shutdown the SDK if the given o11ydemo.AppBuilder fails", func(t *testing.T) {
			buildErr := errors.New("failed to build")
			shutdownErr := errors.New("failed to shutdown")
			b := OTel(o11ydemo.AppBuilderFunc[otelInitFunc](func(ctx context.Context, cfg otelInitFunc) (o11ydemo.App, error) {
				return nil, buildErr
			}))

			_, err := b.Build(context.Background(), otelInitFunc(func(ctx context.Context) (lifecycle.Hook, error) {
				return lifecycle.HookFunc(func(ctx context.Context) error {
					return shutdownErr
				}), nil
			}))
			if !assert.ErrorIs(t, err, buildErr) {
				return
			}
			if !assert.ErrorIs(t, err, shutdownErr) {
				return
			}
		})
	})

	t.Run("the built o11ydemo.App will return an error", func(t *testing.T) {
		t.Run("if it fails to shutdown the SDK", func(t *testing.T) {
			shutdownErr := errors.New("failed to shutdown")
			b := OTel(o11ydemo.AppBuilderFunc[otelInitFunc](func(ctx context.Context, cfg otelInitFunc) (o11ydemo.App, error) {
				return noopApp(), nil
			}))

			app, err := b.Build(context.Background(), otelInitFunc(func(ctx context.Context) (lifecycle.Hook, error) {
				return lifecycle.HookFunc(func(ctx context.Context) error {
					return shutdownErr
				}), nil
			}))
			if !assert.Nil(t, err) {
				return
			}

			err = app.Run(context.Background())
			if !assert.ErrorIs(t, err, shutdownErr) {
				return
			}
		})
	})

	t.Run("will register the shutdown hook", func(t *testing.T) {
		t.Run("with the lifecycle.Context if one is present", func(t *testing.T) {
			shutdownCalled := false
			b := OTel(o11ydemo.AppBuilderFunc[otelInitFunc](func(ctx context.Context, cfg otelInitFunc) (o11ydemo.App, error) {
				return noopApp(), nil
			}))

			lc := &lifecycle.Context{}
			ctx := lifecycle.NewContext(context.Background(), lc)

			app, err := b.Build(ctx, otelInitFunc(func(ctx context.Context) (lifecycle.Hook, error) {
				return lifecycle.HookFunc(func(ctx context.Context) error {
					shutdownCalled = true
					return nil
				}), nil
			}))
			require.NoError(t, err)
			require.NoError(t, app.Run(ctx))
			require.False(t, shutdownCalled)

			require.NoError(t, lc.PostRun().Run(ctx))
			require.True(t, shutdownCalled)
		})
	})
}
