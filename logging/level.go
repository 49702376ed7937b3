// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logging

import (
	"log/slog"
	"strings"
)

// Level is a [slog.Leveler] which can be decoded from config.
// Unlike [slog.Level], decoding never fails: unrecognized
// names fall back to info.
type Level slog.Level

// Level implements the [slog.Leveler] interface.
func (l Level) Level() slog.Level {
	return slog.Level(l)
}

// String implements the [fmt.Stringer] interface.
func (l Level) String() string {
	return slog.Level(l).String()
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
func (l *Level) UnmarshalText(b []byte) error {
	*l = ParseLevel(string(b))
	return nil
}

// ParseLevel maps a case-insensitive level name to a [Level].
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Level(slog.LevelDebug)
	case "warn", "warning":
		return Level(slog.LevelWarn)
	case "error", "critical", "fatal":
		return Level(slog.LevelError)
	default:
		return Level(slog.LevelInfo)
	}
}
