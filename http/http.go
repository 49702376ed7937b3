// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package http provides the HTTP server runtime and the request middleware
// used to instrument it.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/z5labs/o11ydemo/slogfield"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

type runtimeOptions struct {
	port            uint
	mux             *http.ServeMux
	logHandler      slog.Handler
	middleware      []Middleware
	shutdownTimeout time.Duration
	otelOpts        []otelhttp.Option
}

// RuntimeOption configures a [Runtime].
type RuntimeOption func(*runtimeOptions)

// ListenOnPort will configure the HTTP server to listen on the given port.
//
// Default port is 8000.
func ListenOnPort(port uint) RuntimeOption {
	return func(ro *runtimeOptions) {
		ro.port = port
	}
}

// LogHandler sets the [slog.Handler] the runtime logs its lifecycle with.
func LogHandler(h slog.Handler) RuntimeOption {
	return func(ro *runtimeOptions) {
		ro.logHandler = h
	}
}

// Handle registers a http.Handler for the given [http.ServeMux] pattern.
func Handle(pattern string, h http.Handler) RuntimeOption {
	return func(ro *runtimeOptions) {
		ro.mux.Handle(pattern, h)
	}
}

// HandleFunc registers a http.HandlerFunc for the given [http.ServeMux] pattern.
func HandleFunc(pattern string, f func(http.ResponseWriter, *http.Request)) RuntimeOption {
	return func(ro *runtimeOptions) {
		ro.mux.Handle(pattern, http.HandlerFunc(f))
	}
}

// WithMiddleware wraps every registered handler with the given [Middleware].
// The first one given is the outermost.
func WithMiddleware(mws ...Middleware) RuntimeOption {
	return func(ro *runtimeOptions) {
		ro.middleware = append(ro.middleware, mws...)
	}
}

// ShutdownTimeout bounds how long in-flight requests are waited on
// during a graceful shutdown. Default is 10 seconds.
func ShutdownTimeout(d time.Duration) RuntimeOption {
	return func(ro *runtimeOptions) {
		ro.shutdownTimeout = d
	}
}

// OTelOptions configures the otelhttp server instrumentation.
func OTelOptions(opts ...otelhttp.Option) RuntimeOption {
	return func(ro *runtimeOptions) {
		ro.otelOpts = append(ro.otelOpts, opts...)
	}
}

// Runtime serves HTTP until its [context.Context] is cancelled.
type Runtime struct {
	port   uint
	listen func(string, string) (net.Listener, error)

	log *slog.Logger

	shutdownTimeout time.Duration
	h               http.Handler
}

// NewRuntime
func NewRuntime(opts ...RuntimeOption) *Runtime {
	ros := &runtimeOptions{
		port:            8000,
		mux:             http.NewServeMux(),
		logHandler:      slog.DiscardHandler,
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(ros)
	}

	otelOpts := append([]otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	}, ros.otelOpts...)

	return &Runtime{
		port:            ros.port,
		listen:          net.Listen,
		log:             slog.New(ros.logHandler),
		shutdownTimeout: ros.shutdownTimeout,
		h: otelhttp.NewHandler(
			Chain(ros.mux, ros.middleware...),
			"server",
			otelOpts...,
		),
	}
}

// Handler returns the fully instrumented [http.Handler] served by [Runtime.Run].
func (rt *Runtime) Handler() http.Handler {
	return rt.h
}

// Run implements the [o11ydemo.App] interface.
func (rt *Runtime) Run(ctx context.Context) error {
	ls, err := rt.listen("tcp", fmt.Sprintf(":%d", rt.port))
	if err != nil {
		rt.log.ErrorContext(ctx, "failed to listen for connections", slogfield.Error(err))
		return err
	}

	s := &http.Server{
		Handler:           rt.h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(gctx), rt.shutdownTimeout)
		defer cancel()
		defer rt.log.Info("shut down service")

		rt.log.Info("shutting down service")
		return s.Shutdown(ctx)
	})
	g.Go(func() error {
		rt.log.Info("started service", slogfield.String("addr", ls.Addr().String()))
		return s.Serve(ls)
	})

	err = g.Wait()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	rt.log.Error("service encountered unexpected error", slogfield.Error(err))
	return err
}
