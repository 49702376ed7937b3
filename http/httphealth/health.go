// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package httphealth exposes [health.Metric]s over HTTP.
package httphealth

import (
	"context"
	"io"
	"net/http"

	"github.com/z5labs/o11ydemo/health"
	apphttp "github.com/z5labs/o11ydemo/http"
)

// Readiness is the JSON body written by the handler returned from [NewHandler].
type Readiness struct {
	Ready bool `json:"ready"`
}

// NewHandler wraps a health.Metric into an http.Handler.
//
// If m.Healthy returns true, then HTTP status code 200 is
// returned, else, HTTP status code 503 is returned.
func NewHandler(m health.Metric) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Healthy(r.Context()) {
			apphttp.WriteJSON(w, http.StatusOK, Readiness{Ready: true})
			return
		}
		apphttp.WriteJSON(w, http.StatusServiceUnavailable, Readiness{Ready: false})
	})
}

// Dependency reports healthy when a GET request to url succeeds
// with a 2xx status code.
func Dependency(client *http.Client, url string) health.Metric {
	return health.MetricFunc(func(ctx context.Context) bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		return resp.StatusCode >= 200 && resp.StatusCode < 300
	})
}
