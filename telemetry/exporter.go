// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

type exporters struct {
	span   sdktrace.SpanExporter
	metric sdkmetric.Exporter
	log    sdklog.Exporter

	// conn is shared by the grpc exporters and must be
	// closed after they have been shut down.
	conn *grpc.ClientConn
}

// ExporterError occurs when an exporter can not be constructed.
type ExporterError struct {
	Signal string
	Cause  error
}

// Error implements the [error] interface.
func (e ExporterError) Error() string {
	return fmt.Sprintf("failed to create %s exporter: %s", e.Signal, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ExporterError) Unwrap() error {
	return e.Cause
}

func newExporters(ctx context.Context, cfg ExporterConfig) (exporters, error) {
	switch cfg.Kind {
	case ExporterOTLP, "":
		if cfg.Protocol == ProtocolHTTP {
			return newHttpExporters(ctx, cfg)
		}
		return newGrpcExporters(ctx, cfg)
	case ExporterStdout:
		return newStdoutExporters(cfg.Writer)
	case ExporterNone:
		return exporters{
			span:   discardSpanExporter{},
			metric: discardMetricExporter{},
			log:    discardLogExporter{},
		}, nil
	default:
		return exporters{}, UnknownExporterKindError{Kind: string(cfg.Kind)}
	}
}

func endpoint(cfg ExporterConfig) string {
	if cfg.Endpoint == "" {
		return defaultEndpoint
	}
	return cfg.Endpoint
}

// newGrpcConn does not block on connecting. An unreachable collector
// only surfaces as export errors.
func newGrpcConn(cfg ExporterConfig) (*grpc.ClientConn, error) {
	creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	if cfg.Insecure {
		creds = insecure.NewCredentials()
	}
	return grpc.NewClient(endpoint(cfg), grpc.WithTransportCredentials(creds))
}

func newGrpcExporters(ctx context.Context, cfg ExporterConfig) (exps exporters, err error) {
	conn, err := newGrpcConn(cfg)
	if err != nil {
		return exporters{}, ExporterError{Signal: "grpc connection", Cause: err}
	}
	defer func() {
		if err != nil {
			conn.Close()
		}
	}()

	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithGRPCConn(conn)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithGRPCConn(conn)}
	logOpts := []otlploggrpc.Option{otlploggrpc.WithGRPCConn(conn)}
	if cfg.Timeout > 0 {
		traceOpts = append(traceOpts, otlptracegrpc.WithTimeout(cfg.Timeout))
		metricOpts = append(metricOpts, otlpmetricgrpc.WithTimeout(cfg.Timeout))
		logOpts = append(logOpts, otlploggrpc.WithTimeout(cfg.Timeout))
	}

	spanExp, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return exporters{}, ExporterError{Signal: "span", Cause: err}
	}
	metricExp, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return exporters{}, ExporterError{Signal: "metric", Cause: err}
	}
	logExp, err := otlploggrpc.New(ctx, logOpts...)
	if err != nil {
		return exporters{}, ExporterError{Signal: "log", Cause: err}
	}

	return exporters{
		span:   spanExp,
		metric: metricExp,
		log:    logExp,
		conn:   conn,
	}, nil
}

func newHttpExporters(ctx context.Context, cfg ExporterConfig) (exporters, error) {
	traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint(cfg))}
	metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint(cfg))}
	logOpts := []otlploghttp.Option{otlploghttp.WithEndpoint(endpoint(cfg))}
	if cfg.Insecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
		logOpts = append(logOpts, otlploghttp.WithInsecure())
	}
	if cfg.Timeout > 0 {
		traceOpts = append(traceOpts, otlptracehttp.WithTimeout(cfg.Timeout))
		metricOpts = append(metricOpts, otlpmetrichttp.WithTimeout(cfg.Timeout))
		logOpts = append(logOpts, otlploghttp.WithTimeout(cfg.Timeout))
	}

	spanExp, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return exporters{}, ExporterError{Signal: "span", Cause: err}
	}
	metricExp, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		return exporters{}, ExporterError{Signal: "metric", Cause: err}
	}
	logExp, err := otlploghttp.New(ctx, logOpts...)
	if err != nil {
		return exporters{}, ExporterError{Signal: "log", Cause: err}
	}

	return exporters{
		span:   spanExp,
		metric: metricExp,
		log:    logExp,
	}, nil
}

func newStdoutExporters(w io.Writer) (exporters, error) {
	if w == nil {
		w = os.Stdout
	}

	spanExp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return exporters{}, ExporterError{Signal: "span", Cause: err}
	}
	metricExp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return exporters{}, ExporterError{Signal: "metric", Cause: err}
	}
	logExp, err := stdoutlog.New(stdoutlog.WithWriter(w))
	if err != nil {
		return exporters{}, ExporterError{Signal: "log", Cause: err}
	}

	return exporters{
		span:   spanExp,
		metric: metricExp,
		log:    logExp,
	}, nil
}

type discardSpanExporter struct{}

func (discardSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	return nil
}

func (discardSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

type discardMetricExporter struct{}

func (discardMetricExporter) Temporality(kind sdkmetric.InstrumentKind) metricdata.Temporality {
	return sdkmetric.DefaultTemporalitySelector(kind)
}

func (discardMetricExporter) Aggregation(kind sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.DefaultAggregationSelector(kind)
}

func (discardMetricExporter) Export(ctx context.Context, rm *metricdata.ResourceMetrics) error {
	return nil
}

func (discardMetricExporter) ForceFlush(ctx context.Context) error {
	return nil
}

func (discardMetricExporter) Shutdown(ctx context.Context) error {
	return nil
}

type discardLogExporter struct{}

func (discardLogExporter) Export(ctx context.Context, records []sdklog.Record) error {
	return nil
}

func (discardLogExporter) Shutdown(ctx context.Context) error {
	return nil
}

func (discardLogExporter) ForceFlush(ctx context.Context) error {
	return nil
}
