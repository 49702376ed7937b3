// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package slogfield provides [slog.Attr] constructors for the
// fields logged throughout the service.
package slogfield

import (
	"log/slog"
	"time"
)

// Any returns an slog.Attr for the supplied value.
func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

// Bool returns an slog.Attr for a bool.
func Bool(key string, value bool) slog.Attr {
	return slog.Bool(key, value)
}

// Duration returns an slog.Attr for a time.Duration.
func Duration(key string, d time.Duration) slog.Attr {
	return slog.Duration(key, d)
}

// Error returns an slog.Attr for a error.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// String returns an slog.Attr for a string.
func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Int returns an slog.Attr for a int.
func Int(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Int64 returns an slog.Attr for a int64.
func Int64(key string, n int64) slog.Attr {
	return slog.Int64(key, n)
}

// Uint returns an slog.Attr for a uint.
func Uint(key string, n uint) slog.Attr {
	return slog.Uint64(key, uint64(n))
}

// Float64 returns an slog.Attr for a float64.
func Float64(key string, f float64) slog.Attr {
	return slog.Float64(key, f)
}

// Endpoint returns the attribute identifying which HTTP endpoint logged.
func Endpoint(path string) slog.Attr {
	return slog.String("endpoint", path)
}

// Method returns an slog.Attr for an HTTP request method.
func Method(method string) slog.Attr {
	return slog.String("http.method", method)
}

// StatusCode returns an slog.Attr for an HTTP response status code.
func StatusCode(code int) slog.Attr {
	return slog.Int("http.status_code", code)
}

// URL returns an slog.Attr for a URL.
func URL(url string) slog.Attr {
	return slog.String("url", url)
}
