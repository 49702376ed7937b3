// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package telemetry sets up the OpenTelemetry SDK for the service.
//
// # Providers
//
// [Init] builds a tracer, meter and logger provider which all share one
// [resource.Resource] built by [NewResource]. Spans and log records are
// batched in memory and exported in the background while metrics are
// collected by a periodic reader.
//
//	p, err := telemetry.Init(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	p.Register()
//	defer p.Shutdown(context.WithoutCancel(ctx))
//
// # Exporters
//
// The exporter used for every signal is selected by [ExporterConfig]:
//
//   - otlp over grpc: one shared client connection to the collector
//   - otlp over http
//   - stdout: human readable JSON, useful during development
//   - none: records are processed and then discarded
//
// Export is never on the request path. Failures are retried by the
// OTLP exporters and then reported to the global otel.ErrorHandler,
// see [ErrorHandler].
//
// # Instruments
//
// [NewInstruments] registers the request counter, the request latency
// histogram and the random value gauge on a [metric.Meter].
package telemetry
