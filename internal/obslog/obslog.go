// Package obslog builds the structured logger cmd/plistrc threads through
// the rest of the CLI. The core decoder (internal/karchive) never imports
// this package directly — it only accepts an optional *zap.SugaredLogger
// via karchive.Options, keeping decode a pure function of its input.
package obslog

import (
	"go.uber.org/zap"
)

// New builds a SugaredLogger for CLI use: human-readable console output at
// info level, or debug level when verbose is set.
func New(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
