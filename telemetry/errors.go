// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"log/slog"

	"github.com/z5labs/o11ydemo/slogfield"

	"go.opentelemetry.io/otel"
)

// ErrorHandler returns an [otel.ErrorHandler] which logs SDK and export
// errors with the given logger. The logger must not be bridged back
// into OpenTelemetry or every failed log export would produce another
// log record to export.
func ErrorHandler(logger *slog.Logger) otel.ErrorHandler {
	return otel.ErrorHandlerFunc(func(err error) {
		logger.Error("opentelemetry error", slogfield.Error(err))
	})
}
