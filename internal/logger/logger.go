// Package logger builds the zap loggers shared by the binaries.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. format is "json" for machine-read output or
// "console" (the default when empty) for a human-readable one.
func NewLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logger.level: %w", err)
	}

	cfg, err := configFor(format)
	if err != nil {
		return nil, err
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}

func configFor(format string) (zap.Config, error) {
	switch strings.ToLower(format) {
	case "json":
		cfg := zap.NewProductionConfig()
		cfg.Sampling = nil
		return cfg, nil
	case "console", "":
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg, nil
	default:
		return zap.Config{}, fmt.Errorf("logger.format: unknown format %q, want json or console", format)
	}
}

// ForVenue returns a child logger named after the venue and tagged with it.
func ForVenue(l *zap.Logger, venue string) *zap.Logger {
	return l.Named(venue).With(zap.String("venue", venue))
}
