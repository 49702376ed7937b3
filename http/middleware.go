// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/z5labs/o11ydemo/slogfield"
)

// Middleware decorates a [http.Handler].
type Middleware func(http.Handler) http.Handler

// Chain wraps h with the given [Middleware] such that the first
// one given is the first to see a request.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequestRecorder records the outcome of a single request.
type RequestRecorder interface {
	RecordRequest(ctx context.Context, method, path string, elapsed time.Duration)
}

// Metrics records every request with the given [RequestRecorder],
// labelled by method and path. The request is recorded even if the
// wrapped handler panics.
func Metrics(rec RequestRecorder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			defer func() {
				rec.RecordRequest(r.Context(), r.Method, r.URL.Path, time.Since(start))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Recover turns a panicking handler into a logged 500 response.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				logger.ErrorContext(
					r.Context(),
					"recovered from panic in handler",
					slogfield.Endpoint(r.URL.Path),
					slogfield.Method(r.Method),
					slogfield.String("panic", fmt.Sprint(v)),
				)
				if sw.wroteHeader {
					return
				}
				WriteJSON(sw, http.StatusInternalServerError, map[string]string{
					"error": http.StatusText(http.StatusInternalServerError),
				})
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
