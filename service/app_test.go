// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apphttp "github.com/z5labs/o11ydemo/http"
	"github.com/z5labs/o11ydemo/logging"
	"github.com/z5labs/o11ydemo/telemetry"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log/global"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func restoreOTelGlobals(t *testing.T) {
	t.Helper()

	prevTP := otel.GetTracerProvider()
	prevMP := otel.GetMeterProvider()
	prevLP := global.GetLoggerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
		global.SetLoggerProvider(prevLP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func withGlobalMeterProvider(t *testing.T, mp *sdkmetric.MeterProvider) {
	t.Helper()

	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(mp)
	t.Cleanup(func() {
		otel.SetMeterProvider(prev)
	})
}

func buildHandler(t *testing.T, cfg Config) http.Handler {
	t.Helper()

	app, err := Build(context.Background(), cfg)
	require.NoError(t, err)

	rt, ok := app.(*apphttp.Runtime)
	require.True(t, ok)
	return rt.Handler()
}

func requestCounts(t *testing.T, reader sdkmetric.Reader) map[attribute.Distinct]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[attribute.Distinct]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != telemetry.RequestsTotalName {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				counts[dp.Attributes.Equivalent()] = dp.Value
			}
		}
	}
	return counts
}

func TestBuild(t *testing.T) {
	t.Run("will count every request by method and path", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		withGlobalMeterProvider(t, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

		var cfg Config
		cfg.Service.MaxWork = time.Millisecond
		h := buildHandler(t, cfg)

		for _, target := range []string{"/", "/healthz", "/readyz", "/error", "/work", "/work"} {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		}

		counts := requestCounts(t, reader)
		key := func(path string) attribute.Distinct {
			s := attribute.NewSet(attribute.String("method", http.MethodGet), attribute.String("path", path))
			return s.Equivalent()
		}
		require.Equal(t, int64(1), counts[key("/")])
		require.Equal(t, int64(1), counts[key("/healthz")])
		require.Equal(t, int64(1), counts[key("/readyz")])
		require.Equal(t, int64(1), counts[key("/error")])
		require.Equal(t, int64(2), counts[key("/work")])
	})

	t.Run("will serve the error endpoint with a 500", func(t *testing.T) {
		withGlobalMeterProvider(t, sdkmetric.NewMeterProvider())

		h := buildHandler(t, Config{})

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/error", nil))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.JSONEq(t, `{"error":"division by zero"}`, w.Body.String())
	})

	t.Run("will report not ready", func(t *testing.T) {
		t.Run("if a readiness dependency is failing", func(t *testing.T) {
			withGlobalMeterProvider(t, sdkmetric.NewMeterProvider())

			dep := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer dep.Close()

			var cfg Config
			cfg.Readiness.Dependencies = []string{dep.URL}
			cfg.Readiness.Timeout = time.Second
			h := buildHandler(t, cfg)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			require.Equal(t, http.StatusServiceUnavailable, w.Code)
			require.JSONEq(t, `{"ready":false}`, w.Body.String())
		})
	})

	t.Run("will report ready", func(t *testing.T) {
		t.Run("if every readiness dependency is healthy", func(t *testing.T) {
			withGlobalMeterProvider(t, sdkmetric.NewMeterProvider())

			dep := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer dep.Close()

			var cfg Config
			cfg.Readiness.Dependencies = []string{dep.URL, dep.URL + "/other"}
			cfg.Readiness.Retries = 1
			cfg.Readiness.TripAfter = 3
			h := buildHandler(t, cfg)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			require.Equal(t, http.StatusOK, w.Code)
			require.JSONEq(t, `{"ready":true}`, w.Body.String())
		})
	})
}

func TestConfig_InitializeOTel(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the resource is invalid", func(t *testing.T) {
			var cfg Config
			cfg.OTel.Exporter.Kind = telemetry.ExporterNone

			_, err := cfg.InitializeOTel(context.Background())

			var rerr telemetry.InvalidResourceError
			require.ErrorAs(t, err, &rerr)
		})
	})

	t.Run("will register global providers and shut them down", func(t *testing.T) {
		restoreOTelGlobals(t)

		var cfg Config
		cfg.Logging.Level = logging.ParseLevel("error")
		cfg.OTel.Resource.ServiceName = "o11y-go"
		cfg.OTel.Exporter.Kind = telemetry.ExporterNone

		hook, err := cfg.InitializeOTel(context.Background())
		require.NoError(t, err)
		require.IsType(t, &sdktrace.TracerProvider{}, otel.GetTracerProvider())

		require.NoError(t, hook.Run(context.Background()))
	})
}

type shutdownFunc func(context.Context) error

func (f shutdownFunc) Shutdown(ctx context.Context) error {
	return f(ctx)
}

type errorHandlerFunc func(error)

func (f errorHandlerFunc) Handle(err error) {
	f(err)
}

func TestFlushOnShutdown(t *testing.T) {
	t.Run("will not return an error", func(t *testing.T) {
		t.Run("if flushing the providers fails", func(t *testing.T) {
			flushErr := errors.New("failed to upload metrics")

			var handled []error
			otel.SetErrorHandler(errorHandlerFunc(func(err error) {
				handled = append(handled, err)
			}))
			t.Cleanup(func() {
				otel.SetErrorHandler(errorHandlerFunc(func(error) {}))
			})

			hook := flushOnShutdown(shutdownFunc(func(ctx context.Context) error {
				return flushErr
			}))

			err := hook.Run(context.Background())
			require.NoError(t, err)
			require.Len(t, handled, 1)
			require.ErrorIs(t, handled[0], flushErr)
		})
	})
}

func TestUnreachableCollector(t *testing.T) {
	t.Run("will not change any response", func(t *testing.T) {
		restoreOTelGlobals(t)

		var cfg Config
		cfg.Logging.Level = logging.ParseLevel("error")
		cfg.Service.MaxWork = time.Millisecond
		cfg.OTel.Resource.ServiceName = "o11y-go"
		cfg.OTel.Exporter.Kind = telemetry.ExporterOTLP
		cfg.OTel.Exporter.Endpoint = "127.0.0.1:1"
		cfg.OTel.Exporter.Insecure = true
		cfg.OTel.Exporter.Timeout = 100 * time.Millisecond
		cfg.OTel.Metric.Interval = 50 * time.Millisecond
		cfg.OTel.Trace.BatchTimeout = 50 * time.Millisecond
		cfg.OTel.Log.ExportInterval = 50 * time.Millisecond

		hook, err := cfg.InitializeOTel(context.Background())
		require.NoError(t, err)

		h := buildHandler(t, cfg)

		expected := []struct {
			Target string
			Status int
			Body   string
		}{
			{Target: "/", Status: http.StatusOK, Body: `{"message":"Hello from demo app"}`},
			{Target: "/healthz", Status: http.StatusOK, Body: `{"status":"ok"}`},
			{Target: "/readyz", Status: http.StatusOK, Body: `{"ready":true}`},
			{Target: "/error", Status: http.StatusInternalServerError, Body: `{"error":"division by zero"}`},
			{Target: "/work", Status: http.StatusOK, Body: `{"result":333283335000}`},
		}

		for range 3 {
			for _, e := range expected {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, e.Target, nil))

				require.Equal(t, e.Status, w.Code, e.Target)
				require.JSONEq(t, e.Body, w.Body.String(), e.Target)
			}

			// let at least one export attempt fail between rounds
			time.Sleep(120 * time.Millisecond)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, hook.Run(ctx))
	})
}
