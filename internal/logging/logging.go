// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the application logger.
//
// The TUI owns stdout and stderr while it runs, so all logging goes to a
// rotating file under the config directory. Read-path failures (chat list,
// message list, graph fetches) are logged here rather than surfaced as
// blocking UI errors.
package logging

import (
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// logger defaults to a nop so packages can log unconditionally; tests and
// one-shot CLI paths that never call Init just discard output.
var logger = zap.NewNop()

// Init sets up the rotating file logger. dir is the config directory
// (normally ~/.docchat); the log lands in dir/logs/docchat.log.
func Init(dir string, debug bool) {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(&lumberjack.Logger{
			Filename: filepath.Join(dir, "logs", "docchat.log"),
			MaxSize:  10, // megabytes
			MaxAge:   28, // days
			Compress: true,
		}),
		level,
	)

	logger = zap.New(core)
}

// L returns the application logger.
func L() *zap.Logger {
	return logger
}

// SetLogger replaces the application logger. Tests use this to capture
// output with zaptest or an observer core.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Sync flushes buffered log entries. Called on shutdown.
func Sync() {
	_ = logger.Sync()
}
