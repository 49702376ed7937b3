// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package appbuilder provides [o11ydemo.AppBuilder] middleware.
package appbuilder

import (
	"context"

	"github.com/z5labs/o11ydemo"
	"github.com/z5labs/o11ydemo/config"
	"github.com/z5labs/o11ydemo/internal/try"
)

// Recover will wrap the given [o11ydemo.AppBuilder] with panic recovery.
func Recover[T any](builder o11ydemo.AppBuilder[T]) o11ydemo.AppBuilder[T] {
	return o11ydemo.AppBuilderFunc[T](func(ctx context.Context, cfg T) (_ o11ydemo.App, err error) {
		defer try.Recover(&err)

		return builder.Build(ctx, cfg)
	})
}

// FromConfig returns an [o11ydemo.AppBuilder] which unmarshals
// the given [o11ydemo.AppBuilder]s input type, T, from a [config.Source].
func FromConfig[T any](builder o11ydemo.AppBuilder[T]) o11ydemo.AppBuilder[config.Source] {
	return o11ydemo.AppBuilderFunc[config.Source](func(ctx context.Context, src config.Source) (o11ydemo.App, error) {
		m, err := config.Read(src)
		if err != nil {
			return nil, err
		}

		var cfg T
		err = m.Unmarshal(&cfg)
		if err != nil {
			return nil, err
		}

		return builder.Build(ctx, cfg)
	})
}
