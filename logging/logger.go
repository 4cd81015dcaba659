// Package logging builds the process-wide zap logger.
package logging

import (
	"go.uber.org/zap"
)

// NewLogger returns a development logger when dev is set and a JSON production logger otherwise.
func NewLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopmentConfig().Build()
	}
	return zap.NewProduction()
}

// Must is NewLogger for main packages; it falls back to a no-op logger.
func Must(dev bool) *zap.Logger {
	log, err := NewLogger(dev)
	if err != nil {
		return zap.NewNop()
	}
	return log
}
