package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds a production zap logger at the given level.
func newLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar(), nil
}

// zapAdapter exposes a SugaredLogger through the simulation's Logger
// interface so packages stay decoupled from the logging backend.
type zapAdapter struct {
	s *zap.SugaredLogger
}

func (z zapAdapter) Debugf(format string, args ...interface{}) { z.s.Debugf(format, args...) }
func (z zapAdapter) Infof(format string, args ...interface{})  { z.s.Infof(format, args...) }
func (z zapAdapter) Warnf(format string, args ...interface{})  { z.s.Warnf(format, args...) }
func (z zapAdapter) Errorf(format string, args ...interface{}) { z.s.Errorf(format, args...) }
