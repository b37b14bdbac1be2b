package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var logSink io.Closer

// setupLogger builds the process logger. Logs go to stderr unless a log file
// is configured or rotation is enabled; then they go to a rotating file.
func setupLogger(cfg appConfig, verbose bool) (*slog.Logger, error) {
	levelStr := cfg.Log.Level
	if verbose {
		levelStr = "debug"
	}

	var out io.Writer = os.Stderr
	file := cfg.Log.File
	if file == "" && cfg.Log.Rotate {
		file = filepath.Join(cfg.Home, "wtf.log")
	}
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		logSink = lj
		out = lj
	}

	return newLogger(levelStr, cfg.Log.Format, out), nil
}

// newLogger creates a slog.Logger for the given level and format names.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler

	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	return slog.New(handler)
}

func closeLogger() {
	if logSink != nil {
		_ = logSink.Close()
		logSink = nil
	}
}
