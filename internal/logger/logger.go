// Package logger wraps zap with the level and output settings the client uses.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger holds the process logger. Log is a no-op logger until Init succeeds.
type Logger struct {
	Log *zap.Logger
}

// New returns a Logger with a no-op zap logger.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds a production JSON logger at level writing to outputs.
// With no outputs it writes to stderr. The dashboard passes a file path
// because the terminal belongs to the UI.
func (l *Logger) Init(level string, outputs ...string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if len(outputs) > 0 {
		cfg.OutputPaths = outputs
		cfg.ErrorOutputPaths = outputs
	}

	zl, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	l.Log = zl
	return nil
}
