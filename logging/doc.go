// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package logging builds the [slog.Logger] used by the service.
//
// Every record is written as JSON to a local writer, annotated with the
// active trace and span IDs, and also forwarded to an OpenTelemetry
// [log.LoggerProvider] through the contrib otelslog bridge so that it is
// exported next to the traces and metrics of the same request.
package logging
