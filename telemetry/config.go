// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Config configures every OpenTelemetry signal.
type Config struct {
	Resource ResourceConfig `config:"resource"`
	Exporter ExporterConfig `config:"exporter"`
	Trace    TraceConfig    `config:"trace"`
	Metric   MetricConfig   `config:"metric"`
	Log      LogConfig      `config:"log"`
}

// ExporterKind selects where telemetry is exported to.
type ExporterKind string

const (
	ExporterOTLP   ExporterKind = "otlp"
	ExporterStdout ExporterKind = "stdout"
	ExporterNone   ExporterKind = "none"
)

// UnknownExporterKindError occurs when decoding an unsupported [ExporterKind].
type UnknownExporterKindError struct {
	Kind string
}

// Error implements the [error] interface.
func (e UnknownExporterKindError) Error() string {
	return fmt.Sprintf("unknown exporter kind: %q", e.Kind)
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
func (k *ExporterKind) UnmarshalText(b []byte) error {
	s := ExporterKind(strings.ToLower(strings.TrimSpace(string(b))))
	switch s {
	case "":
		*k = ExporterOTLP
	case ExporterOTLP, ExporterStdout, ExporterNone:
		*k = s
	default:
		return UnknownExporterKindError{Kind: string(b)}
	}
	return nil
}

// Protocol is the OTLP transport.
type Protocol string

const (
	ProtocolGRPC Protocol = "grpc"
	ProtocolHTTP Protocol = "http"
)

// UnknownProtocolError occurs when decoding an unsupported [Protocol].
type UnknownProtocolError struct {
	Protocol string
}

// Error implements the [error] interface.
func (e UnknownProtocolError) Error() string {
	return fmt.Sprintf("unknown otlp protocol: %q", e.Protocol)
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
func (p *Protocol) UnmarshalText(b []byte) error {
	s := Protocol(strings.ToLower(strings.TrimSpace(string(b))))
	switch s {
	case "":
		*p = ProtocolGRPC
	case ProtocolGRPC, ProtocolHTTP:
		*p = s
	default:
		return UnknownProtocolError{Protocol: string(b)}
	}
	return nil
}

// ExporterConfig selects and configures the exporters of all three signals.
type ExporterConfig struct {
	Kind     ExporterKind `config:"kind"`
	Protocol Protocol     `config:"protocol"`

	// Endpoint is the collector address as host:port.
	Endpoint string        `config:"endpoint"`
	Insecure bool          `config:"insecure"`
	Timeout  time.Duration `config:"timeout"`

	// Writer receives stdout exporter output. Defaults to os.Stdout.
	Writer io.Writer `config:"-"`
}

// TraceConfig configures the batch span processor and sampler.
type TraceConfig struct {
	// SampleRatio is the ratio of root spans sampled. Unset samples everything.
	SampleRatio        *float64      `config:"sampleRatio"`
	BatchTimeout       time.Duration `config:"batchTimeout"`
	MaxQueueSize       int           `config:"maxQueueSize"`
	MaxExportBatchSize int           `config:"maxExportBatchSize"`
}

// MetricConfig configures the periodic metric reader.
type MetricConfig struct {
	Interval time.Duration `config:"interval"`
	Timeout  time.Duration `config:"timeout"`
}

// LogConfig configures the batch log processor.
type LogConfig struct {
	ExportInterval     time.Duration `config:"exportInterval"`
	MaxQueueSize       int           `config:"maxQueueSize"`
	MaxExportBatchSize int           `config:"maxExportBatchSize"`
}

const (
	defaultEndpoint       = "otel-collector:4317"
	defaultMetricInterval = 5 * time.Second
)
