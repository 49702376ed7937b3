// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package o11ydemo runs a small HTTP service instrumented end to end
// with OpenTelemetry traces, metrics and logs.
//
// The package itself only defines how an application is assembled:
// config sources are read and merged, decoded into a typed config,
// handed to an [AppBuilder] and the resulting [App] is run. Any
// [lifecycle.Hook] registered while building is executed once the
// [App] returns, regardless of how it returned.
//
//	err := o11ydemo.Run(ctx, builder, config.FromYaml(r))
//
// The concrete service lives in the service package and the
// executable in cmd/o11ydemo.
package o11ydemo
