// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package appbuilder

import (
	"context"
	"errors"

	"github.com/z5labs/o11ydemo"
	"github.com/z5labs/o11ydemo/app"
	"github.com/z5labs/o11ydemo/lifecycle"
)

// OTelInitializer represents anything which can initialize the OTel SDK.
// The returned [lifecycle.Hook] must flush and release everything the
// initialization acquired.
type OTelInitializer interface {
	InitializeOTel(context.Context) (lifecycle.Hook, error)
}

// OTel is a [o11ydemo.AppBuilder] middleware which initializes the OTel SDK.
// It also ensures that the OTel SDK is properly shutdown when the built [o11ydemo.App]
// stops running or when building it fails.
func OTel[T OTelInitializer](builder o11ydemo.AppBuilder[T]) o11ydemo.AppBuilder[T] {
	return o11ydemo.AppBuilderFunc[T](func(ctx context.Context, cfg T) (o11ydemo.App, error) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		shutdown, err := cfg.InitializeOTel(ctx)
		if err != nil {
			return nil, err
		}

		base, err := builder.Build(ctx, cfg)
		if err != nil {
			if shutdown == nil {
				return nil, err
			}
			shutdownErr := shutdown.Run(context.WithoutCancel(ctx))
			return nil, errors.Join(err, shutdownErr)
		}

		lc, ok := lifecycle.FromContext(ctx)
		if !ok {
			return app.PostRun(base, shutdown), nil
		}

		lc.OnPostRun(shutdown)
		return base, nil
	})
}
