// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/contrib/detectors/gcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ResourceConfig describes the service emitting telemetry.
type ResourceConfig struct {
	ServiceName      string            `config:"serviceName"`
	ServiceVersion   string            `config:"serviceVersion"`
	ServiceNamespace string            `config:"serviceNamespace"`
	Environment      string            `config:"environment"`
	Attributes       map[string]string `config:"attributes"`

	// DetectHost adds host.* attributes.
	DetectHost bool `config:"detectHost"`

	// DetectGCP adds cloud.* and platform attributes when running on Google Cloud.
	DetectGCP bool `config:"detectGCP"`
}

// InvalidResourceError occurs when a [ResourceConfig] can not describe a service.
type InvalidResourceError struct {
	Field  string
	Reason string
}

// Error implements the [error] interface.
func (e InvalidResourceError) Error() string {
	return fmt.Sprintf("invalid resource %s: %s", e.Field, e.Reason)
}

func (cfg ResourceConfig) validate() error {
	if cfg.ServiceName == "" {
		return InvalidResourceError{Field: "serviceName", Reason: "must not be empty"}
	}
	for k := range cfg.Attributes {
		if k == "" {
			return InvalidResourceError{Field: "attributes", Reason: "keys must not be empty"}
		}
	}
	return nil
}

func (cfg ResourceConfig) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}
	if cfg.ServiceNamespace != "" {
		attrs = append(attrs, semconv.ServiceNamespace(cfg.ServiceNamespace))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}

	keys := make([]string, 0, len(cfg.Attributes))
	for k := range cfg.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, attribute.String(k, cfg.Attributes[k]))
	}
	return attrs
}

// NewResource builds the [resource.Resource] attached to every span,
// metric point and log record.
func NewResource(ctx context.Context, cfg ResourceConfig) (*resource.Resource, error) {
	err := cfg.validate()
	if err != nil {
		return nil, err
	}

	opts := []resource.Option{
		resource.WithTelemetrySDK(),
	}
	if cfg.DetectHost {
		opts = append(opts, resource.WithHost())
	}
	if cfg.DetectGCP {
		opts = append(opts, resource.WithDetectors(gcp.NewDetector()))
	}
	// configured attributes win over detected ones
	opts = append(opts, resource.WithAttributes(cfg.attributes()...))

	r, err := resource.New(ctx, opts...)
	if errors.Is(err, resource.ErrPartialResource) || errors.Is(err, resource.ErrSchemaURLConflict) {
		return r, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}
