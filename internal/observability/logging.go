// Package observability provides structured logging for the skirmish runner.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/voltfall/tactics/internal/config"
)

// NewLogger builds the process logger from the logging section of the
// config file. The json format uses zap's production preset, console the
// development one; both stamp ISO8601 times.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// WithRun returns a child logger carrying the identifying fields of one
// encounter run. Every log line of a run can then be correlated by
// scenario and seed.
func WithRun(logger *zap.Logger, scenarioID string, seed int64) *zap.Logger {
	return logger.With(
		zap.String("scenario", scenarioID),
		zap.Int64("seed", seed),
	)
}
