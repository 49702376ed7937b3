// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package service implements the demo endpoints.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/z5labs/o11ydemo/health"
	apphttp "github.com/z5labs/o11ydemo/http"
	"github.com/z5labs/o11ydemo/http/httphealth"
	"github.com/z5labs/o11ydemo/slogfield"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ScopeName is the instrumentation scope of every span, metric and log
// record the service emits.
const ScopeName = "github.com/z5labs/o11ydemo/service"

// ErrDivisionByZero is returned by divide when the divisor is zero.
var ErrDivisionByZero = errors.New("division by zero")

func divide(a, b int) (int, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

// WorkResult is the sum of i*i for i in [0, 10000).
const WorkResult int64 = 333283335000

func work(n int64) int64 {
	var total int64
	for i := range n {
		total += i * i
	}
	return total
}

type options struct {
	tp      trace.TracerProvider
	log     *slog.Logger
	ready   health.Metric
	maxWork time.Duration
	random  func() float64
}

// Option configures a [Service].
type Option func(*options)

// TracerProvider sets the [trace.TracerProvider] spans are started with.
// Defaults to the global one.
func TracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tp = tp
	}
}

// Logger sets the [slog.Logger] handlers log with.
func Logger(logger *slog.Logger) Option {
	return func(o *options) {
		o.log = logger
	}
}

// Readiness sets the [health.Metric] reported by /readyz.
// Defaults to always ready.
func Readiness(m health.Metric) Option {
	return func(o *options) {
		o.ready = m
	}
}

// MaxWork bounds how long / simulates work for. Defaults to 1 second.
func MaxWork(d time.Duration) Option {
	return func(o *options) {
		o.maxWork = d
	}
}

// RandomSource sets the source of randomness. f must return values in [0, 1).
func RandomSource(f func() float64) Option {
	return func(o *options) {
		o.random = f
	}
}

// Service serves the demo endpoints.
type Service struct {
	tracer  trace.Tracer
	log     *slog.Logger
	ready   health.Metric
	maxWork time.Duration
	random  func() float64
}

// New returns a [Service].
func New(opts ...Option) *Service {
	o := &options{
		log:     slog.New(slog.DiscardHandler),
		ready:   health.And(),
		maxWork: time.Second,
		random:  rand.Float64,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tp == nil {
		o.tp = otel.GetTracerProvider()
	}

	return &Service{
		tracer:  o.tp.Tracer(ScopeName),
		log:     o.log,
		ready:   o.ready,
		maxWork: o.maxWork,
		random:  o.random,
	}
}

// Endpoint pairs a [http.ServeMux] pattern with the handler serving it.
type Endpoint struct {
	Pattern string
	Handler http.Handler
}

// Endpoints lists every endpoint of the service.
func (s *Service) Endpoints() []Endpoint {
	return []Endpoint{
		{Pattern: "GET /{$}", Handler: http.HandlerFunc(s.root)},
		{Pattern: "GET /healthz", Handler: http.HandlerFunc(s.healthz)},
		{Pattern: "GET /readyz", Handler: httphealth.NewHandler(s.ready)},
		{Pattern: "GET /error", Handler: http.HandlerFunc(s.failure)},
		{Pattern: "GET /work", Handler: http.HandlerFunc(s.work)},
	}
}

// Handler returns a [http.ServeMux] serving every endpoint.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, e := range s.Endpoints() {
		mux.Handle(e.Pattern, e.Handler)
	}
	return mux
}

// MessageResponse is returned by /.
type MessageResponse struct {
	Message string `json:"message"`
}

// StatusResponse is returned by /healthz.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is returned by /error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WorkResponse is returned by /work.
type WorkResponse struct {
	Result int64 `json:"result"`
}

func (s *Service) root(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.log.InfoContext(ctx, "Root endpoint accessed", slogfield.Endpoint("/"))

	spanCtx, span := s.tracer.Start(ctx, "root-operation")
	defer span.End()

	span.SetAttributes(attribute.String("app.logic.phase", "start"))

	err := sleep(spanCtx, time.Duration(s.random()*float64(s.maxWork)))
	if err != nil {
		span.RecordError(err)
		s.log.WarnContext(spanCtx, "request cancelled while working", slogfield.Error(err))
		return
	}

	span.SetAttributes(attribute.Int("app.random.value", 1+int(s.random()*100)))

	apphttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Hello from demo app"})
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Service) healthz(w http.ResponseWriter, r *http.Request) {
	apphttp.WriteJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (s *Service) failure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.log.WarnContext(ctx, "Error endpoint hit; generating error span")

	q, err := divide(1, 0)
	if err != nil {
		spanCtx, span := s.tracer.Start(ctx, "error-span")
		defer span.End()

		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
		span.SetStatus(codes.Error, err.Error())

		s.log.ErrorContext(spanCtx, "An error occurred", slogfield.Error(err))

		apphttp.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	apphttp.WriteJSON(w, http.StatusOK, WorkResponse{Result: int64(q)})
}

func (s *Service) work(w http.ResponseWriter, r *http.Request) {
	spanCtx, span := s.tracer.Start(r.Context(), "work-operation")
	defer span.End()

	span.AddEvent("work_started")
	total := work(10000)
	span.AddEvent("work_completed", trace.WithAttributes(attribute.Int64("result", total)))

	s.log.InfoContext(spanCtx, "Work endpoint completed", slogfield.Int64("result", total))

	apphttp.WriteJSON(w, http.StatusOK, WorkResponse{Result: total})
}
