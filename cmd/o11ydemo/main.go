// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/z5labs/o11ydemo/slogfield"
)

func main() {
	err := newCommand().ExecuteContext(context.Background())
	if err == nil {
		return
	}

	slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to run o11ydemo", slogfield.Error(err))
	os.Exit(1)
}
