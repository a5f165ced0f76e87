package logger

import (
	"github.com/google/wire"
)

// ProviderSet is the wire provider set for the logger.
var ProviderSet = wire.NewSet(
	NewBootstrapLogger,
	NewConfiguredLogger,
	wire.Bind(new(Logger), new(*SlogAdapter)),
)

// Config holds the values needed to configure the logger
type Config struct {
	Environment string
	LogLevel    string
	// Version is attached to every record when set
	Version string
}

// NewConfiguredLogger creates the main application logger from config
func NewConfiguredLogger(config Config) *SlogAdapter {
	log := NewSlogAdapter(config.Environment, config.LogLevel)
	if config.Version != "" {
		return log.With("version", config.Version)
	}
	return log
}
