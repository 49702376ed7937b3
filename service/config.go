// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/z5labs/o11ydemo/lifecycle"
	"github.com/z5labs/o11ydemo/logging"
	"github.com/z5labs/o11ydemo/telemetry"

	"go.opentelemetry.io/otel"
)

// Config
type Config struct {
	HTTP struct {
		Port            uint          `config:"port"`
		ShutdownTimeout time.Duration `config:"shutdownTimeout"`
	} `config:"http"`

	Logging struct {
		Level     logging.Level `config:"level"`
		AddSource bool          `config:"addSource"`
	} `config:"logging"`

	OTel telemetry.Config `config:"otel"`

	Service struct {
		MaxWork time.Duration `config:"maxWork"`
	} `config:"service"`

	Readiness ReadinessConfig `config:"readiness"`
}

// ReadinessConfig lists the downstream dependencies /readyz checks
// and configures the client used to check them.
type ReadinessConfig struct {
	Dependencies []string      `config:"dependencies"`
	Timeout      time.Duration `config:"timeout"`
	Retries      int           `config:"retries"`
	RetryWaitMin time.Duration `config:"retryWaitMin"`
	RetryWaitMax time.Duration `config:"retryWaitMax"`
	TripAfter    uint32        `config:"tripAfter"`
	OpenTimeout  time.Duration `config:"openTimeout"`

	HalfOpenRequests   uint32        `config:"halfOpenRequests"`
	CountResetInterval time.Duration `config:"countResetInterval"`
}

// InitializeOTel implements the [appbuilder.OTelInitializer] interface.
// The returned [lifecycle.Hook] flushes and shuts down every provider.
func (cfg Config) InitializeOTel(ctx context.Context) (lifecycle.Hook, error) {
	p, err := telemetry.Init(ctx, cfg.OTel)
	if err != nil {
		return nil, err
	}
	p.Register()

	// export failures are only ever logged locally
	otel.SetErrorHandler(telemetry.ErrorHandler(
		slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Logging.Level})),
	))

	return flushOnShutdown(p), nil
}

type shutdowner interface {
	Shutdown(context.Context) error
}

// flushOnShutdown reports flush and export failures to the global
// [otel.ErrorHandler] instead of failing an otherwise graceful shutdown.
func flushOnShutdown(s shutdowner) lifecycle.Hook {
	return lifecycle.HookFunc(func(ctx context.Context) error {
		err := s.Shutdown(ctx)
		if err != nil {
			otel.Handle(err)
		}
		return nil
	})
}
