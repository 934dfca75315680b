// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vrrbench

import (
	"log/slog"

	"github.com/gogpu/vrrbench/internal/logging"
)

// SetLogger configures the logger for vrrbench and all its sub-packages.
// By default, vrrbench produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by vrrbench:
//   - [slog.LevelDebug]: per-frame drops (no pose, no drawable, command buffer)
//   - [slog.LevelInfo]: lifecycle events (device opened, assets built, session running)
//   - [slog.LevelWarn]: degradations (authorization denied, resampled test image)
//
// Example:
//
//	vrrbench.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by vrrbench.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
