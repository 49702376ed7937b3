// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package health provides composable health metrics used to
// answer readiness probes.
package health

import (
	"context"
	"sync/atomic"
)

// Metric represents anything that can report its health status.
type Metric interface {
	Healthy(context.Context) bool
}

// MetricFunc is a func variant of the [Metric] interface.
type MetricFunc func(context.Context) bool

// Healthy implements the [Metric] interface.
func (f MetricFunc) Healthy(ctx context.Context) bool {
	return f(ctx)
}

// Binary represents a [Metric] that is either healthy or not.
// The zero value represents a healthy state.
type Binary struct {
	unhealthy atomic.Bool
}

// Toggle toggles the state of Binary.
func (m *Binary) Toggle() {
	for {
		old := m.unhealthy.Load()
		if m.unhealthy.CompareAndSwap(old, !old) {
			return
		}
	}
}

// Set marks the Binary as healthy or unhealthy.
func (m *Binary) Set(healthy bool) {
	m.unhealthy.Store(!healthy)
}

// Healthy implements the [Metric] interface.
func (m *Binary) Healthy(ctx context.Context) bool {
	return !m.unhealthy.Load()
}

type andMetric []Metric

// And returns a [Metric] which is healthy only when every
// given [Metric] is healthy. With no metrics it is always healthy.
func And(metrics ...Metric) Metric {
	return andMetric(metrics)
}

func (ms andMetric) Healthy(ctx context.Context) bool {
	for _, m := range ms {
		if !m.Healthy(ctx) {
			return false
		}
	}
	return true
}

type orMetric []Metric

// Or returns a [Metric] which is healthy when at least one
// of the given metrics is healthy.
func Or(metrics ...Metric) Metric {
	return orMetric(metrics)
}

func (ms orMetric) Healthy(ctx context.Context) bool {
	for _, m := range ms {
		if m.Healthy(ctx) {
			return true
		}
	}
	return false
}

// Not negates the given [Metric].
func Not(metric Metric) Metric {
	return MetricFunc(func(ctx context.Context) bool {
		return !metric.Healthy(ctx)
	})
}
