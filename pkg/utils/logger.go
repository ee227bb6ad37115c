package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the program logger: human readable console output or
// JSON lines, at the configured level.
func NewLogger(conf LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(conf.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var zc zap.Config
	switch conf.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console", "":
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zc.DisableCaller = true
		zc.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("unknown log format %q", conf.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
