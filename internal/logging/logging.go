// Package logging builds the zap logger shared by the API and the worker.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger for dev and a JSON logger otherwise.
func New(env, service string) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case "dev", "development", "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", service)), nil
}

// Must is New that falls back to a no-op logger instead of failing.
func Must(env, service string) *zap.Logger {
	logger, err := New(env, service)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
