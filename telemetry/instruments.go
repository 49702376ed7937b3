// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	RequestsTotalName    = "demo_requests_total"
	RequestLatencyMsName = "demo_request_latency_ms"
	RandomValueName      = "demo_random_value"
)

// Instruments holds the metric instruments recorded by the service.
type Instruments struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

type instrumentsOptions struct {
	random func() float64
}

// InstrumentsOption configures [NewInstruments].
type InstrumentsOption func(*instrumentsOptions)

// RandomSource sets the source sampled by the random value gauge.
// f must return values in [0, 1). Defaults to [rand.Float64].
func RandomSource(f func() float64) InstrumentsOption {
	return func(o *instrumentsOptions) {
		o.random = f
	}
}

// NewInstruments creates every instrument on the given [metric.Meter].
func NewInstruments(meter metric.Meter, opts ...InstrumentsOption) (*Instruments, error) {
	o := &instrumentsOptions{
		random: rand.Float64,
	}
	for _, opt := range opts {
		opt(o)
	}

	requests, err := meter.Int64Counter(
		RequestsTotalName,
		metric.WithDescription("Total number of requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram(
		RequestLatencyMsName,
		metric.WithDescription("Request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.Float64ObservableGauge(
		RandomValueName,
		metric.WithDescription("A random value"),
		metric.WithFloat64Callback(observeRandom(o.random)),
	)
	if err != nil {
		return nil, err
	}

	return &Instruments{
		requests: requests,
		latency:  latency,
	}, nil
}

// RecordRequest counts one request and records how long it took.
func (i *Instruments) RecordRequest(ctx context.Context, method, path string, elapsed time.Duration) {
	attrs := metric.WithAttributeSet(attribute.NewSet(
		attribute.String("method", method),
		attribute.String("path", path),
	))

	i.requests.Add(ctx, 1, attrs)
	i.latency.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
}

func observeRandom(random func() float64) metric.Float64Callback {
	return func(ctx context.Context, o metric.Float64Observer) error {
		o.Observe(random() * 100)
		return nil
	}
}
