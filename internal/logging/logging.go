// Package logging builds the zap logger. The terminal belongs to the UI,
// so everything goes to a file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vsxbrowse/internal/config"
)

// New opens the log file and returns a logger plus a cleanup that flushes
// and closes it
func New(settings config.LogSettings) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(settings.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	if settings.File == "" {
		return zap.NewNop(), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(settings.File), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(settings.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(f),
		level,
	), zap.AddCaller()).With(zap.Int("pid", os.Getpid()))

	cleanup := func() {
		_ = logger.Sync()
		_ = f.Close()
	}
	return logger, cleanup, nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
