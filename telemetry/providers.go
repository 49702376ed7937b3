// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"
	"errors"

	"github.com/z5labs/o11ydemo/internal/try"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
)

// Providers owns the SDK providers of all three signals.
type Providers struct {
	Resource       *resource.Resource
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider

	conn *grpc.ClientConn
}

type initOptions struct {
	spanProcessors []sdktrace.SpanProcessor
	metricReaders  []sdkmetric.Reader
	logProcessors  []sdklog.Processor
}

// InitOption customizes [Init] beyond what [Config] expresses.
type InitOption func(*initOptions)

// WithSpanProcessor registers an additional [sdktrace.SpanProcessor].
func WithSpanProcessor(sp sdktrace.SpanProcessor) InitOption {
	return func(o *initOptions) {
		o.spanProcessors = append(o.spanProcessors, sp)
	}
}

// WithMetricReader registers an additional [sdkmetric.Reader].
func WithMetricReader(r sdkmetric.Reader) InitOption {
	return func(o *initOptions) {
		o.metricReaders = append(o.metricReaders, r)
	}
}

// WithLogProcessor registers an additional [sdklog.Processor].
func WithLogProcessor(p sdklog.Processor) InitOption {
	return func(o *initOptions) {
		o.logProcessors = append(o.logProcessors, p)
	}
}

// Init builds the tracer, meter and logger providers described by cfg.
// Nothing is registered globally until [Providers.Register] is called.
func Init(ctx context.Context, cfg Config, opts ...InitOption) (*Providers, error) {
	o := &initOptions{}
	for _, opt := range opts {
		opt(o)
	}

	res, err := NewResource(ctx, cfg.Resource)
	if err != nil {
		return nil, err
	}

	exps, err := newExporters(ctx, cfg.Exporter)
	if err != nil {
		return nil, err
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.Trace)),
		sdktrace.WithBatcher(exps.span, batchSpanOptions(cfg.Trace)...),
	}
	for _, sp := range o.spanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
	}

	mpOpts := []sdkmetric.Option{
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exps.metric, periodicReaderOptions(cfg.Metric)...)),
	}
	for _, r := range o.metricReaders {
		mpOpts = append(mpOpts, sdkmetric.WithReader(r))
	}

	lpOpts := []sdklog.LoggerProviderOption{
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exps.log, batchLogOptions(cfg.Log)...)),
	}
	for _, p := range o.logProcessors {
		lpOpts = append(lpOpts, sdklog.WithProcessor(p))
	}

	return &Providers{
		Resource:       res,
		TracerProvider: sdktrace.NewTracerProvider(tpOpts...),
		MeterProvider:  sdkmetric.NewMeterProvider(mpOpts...),
		LoggerProvider: sdklog.NewLoggerProvider(lpOpts...),
		conn:           exps.conn,
	}, nil
}

func sampler(cfg TraceConfig) sdktrace.Sampler {
	if cfg.SampleRatio == nil || *cfg.SampleRatio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(*cfg.SampleRatio))
}

func batchSpanOptions(cfg TraceConfig) []sdktrace.BatchSpanProcessorOption {
	var opts []sdktrace.BatchSpanProcessorOption
	if cfg.BatchTimeout > 0 {
		opts = append(opts, sdktrace.WithBatchTimeout(cfg.BatchTimeout))
	}
	if cfg.MaxQueueSize > 0 {
		opts = append(opts, sdktrace.WithMaxQueueSize(cfg.MaxQueueSize))
	}
	if cfg.MaxExportBatchSize > 0 {
		opts = append(opts, sdktrace.WithMaxExportBatchSize(cfg.MaxExportBatchSize))
	}
	return opts
}

func periodicReaderOptions(cfg MetricConfig) []sdkmetric.PeriodicReaderOption {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultMetricInterval
	}
	opts := []sdkmetric.PeriodicReaderOption{
		sdkmetric.WithInterval(interval),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, sdkmetric.WithTimeout(cfg.Timeout))
	}
	return opts
}

func batchLogOptions(cfg LogConfig) []sdklog.BatchProcessorOption {
	var opts []sdklog.BatchProcessorOption
	if cfg.ExportInterval > 0 {
		opts = append(opts, sdklog.WithExportInterval(cfg.ExportInterval))
	}
	if cfg.MaxQueueSize > 0 {
		opts = append(opts, sdklog.WithMaxQueueSize(cfg.MaxQueueSize))
	}
	if cfg.MaxExportBatchSize > 0 {
		opts = append(opts, sdklog.WithExportMaxBatchSize(cfg.MaxExportBatchSize))
	}
	return opts
}

// Register installs the providers globally along with the W3C
// trace context and baggage propagators.
func (p *Providers) Register() {
	otel.SetTracerProvider(p.TracerProvider)
	otel.SetMeterProvider(p.MeterProvider)
	global.SetLoggerProvider(p.LoggerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Shutdown flushes and stops every provider and then closes the
// collector connection, if any. All providers are shut down even
// if one of them fails.
func (p *Providers) Shutdown(ctx context.Context) (err error) {
	if p.conn != nil {
		defer try.Close(&err, p.conn)
	}

	return errors.Join(
		p.TracerProvider.Shutdown(ctx),
		p.MeterProvider.Shutdown(ctx),
		p.LoggerProvider.Shutdown(ctx),
	)
}
