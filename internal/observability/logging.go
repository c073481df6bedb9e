// Package observability wires zap logging for the battle simulator. The
// engine, roller, and AI all receive their logger from here, so every combat
// event carries the same encoding and level.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mimiasei/realmsofeldor-sub003/internal/config"
)

// NewLogger builds the simulator's logger from the logging section of the
// config. The "console" format is the readable one for watching a battle
// play out; "json" is for piping simulation runs elsewhere. Timestamps are
// ISO 8601 in both.
//
// Postcondition: returns a ready zap.Logger, or an error for an unknown
// level or format.
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
