// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package service

import (
	"context"
	"log/slog"

	"github.com/z5labs/o11ydemo"
	"github.com/z5labs/o11ydemo/health"
	apphttp "github.com/z5labs/o11ydemo/http"
	"github.com/z5labs/o11ydemo/http/httpclient"
	"github.com/z5labs/o11ydemo/http/httphealth"
	"github.com/z5labs/o11ydemo/logging"
	"github.com/z5labs/o11ydemo/telemetry"

	"go.opentelemetry.io/otel"
)

// Build implements the [o11ydemo.AppBuilder] interface. It expects the
// global OpenTelemetry providers to already be registered.
func Build(ctx context.Context, cfg Config) (o11ydemo.App, error) {
	logger := logging.New(
		ScopeName,
		logging.LogLevel(cfg.Logging.Level),
		logging.AddSource(cfg.Logging.AddSource),
	)

	ins, err := telemetry.NewInstruments(otel.Meter(ScopeName))
	if err != nil {
		return nil, err
	}

	svcOpts := []Option{
		Logger(logger),
		Readiness(readiness(cfg.Readiness, logger.Handler())),
	}
	if cfg.Service.MaxWork > 0 {
		svcOpts = append(svcOpts, MaxWork(cfg.Service.MaxWork))
	}
	svc := New(svcOpts...)

	opts := []apphttp.RuntimeOption{
		apphttp.ListenOnPort(cfg.HTTP.Port),
		apphttp.LogHandler(logger.Handler()),
		apphttp.WithMiddleware(
			apphttp.Metrics(ins),
			apphttp.Recover(logger),
		),
	}
	if cfg.HTTP.ShutdownTimeout > 0 {
		opts = append(opts, apphttp.ShutdownTimeout(cfg.HTTP.ShutdownTimeout))
	}
	for _, e := range svc.Endpoints() {
		opts = append(opts, apphttp.Handle(e.Pattern, e.Handler))
	}

	return apphttp.NewRuntime(opts...), nil
}

func readiness(cfg ReadinessConfig, h slog.Handler) health.Metric {
	if len(cfg.Dependencies) == 0 {
		return health.And()
	}

	clientOpts := []httpclient.Option{
		httpclient.Name("readiness"),
		httpclient.LogHandler(h),
		httpclient.Timeout(cfg.Timeout),
	}
	if cfg.Retries > 0 {
		clientOpts = append(clientOpts, httpclient.Retry(cfg.Retries, cfg.RetryWaitMin, cfg.RetryWaitMax))
	}
	if cfg.TripAfter > 0 {
		clientOpts = append(
			clientOpts,
			httpclient.TripAfter(cfg.TripAfter),
			httpclient.OpenStateTimeout(cfg.OpenTimeout),
			httpclient.HalfOpenRequests(cfg.HalfOpenRequests),
			httpclient.CountResetInterval(cfg.CountResetInterval),
		)
	}
	client := httpclient.NewClient(clientOpts...)

	deps := make([]health.Metric, 0, len(cfg.Dependencies))
	for _, url := range cfg.Dependencies {
		deps = append(deps, httphealth.Dependency(client, url))
	}
	return health.And(deps...)
}
