package server

import (
	"github.com/philly/postboard/internal/adapters/rest/middleware"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/posts/application"
)

// Version is reported by the health endpoints
var Version = "1.0.0"

// provideVersion provides the application version
func provideVersion() string {
	return Version
}

// provideLoggerConfig creates logger config from server config
func provideLoggerConfig(config Config) logger.Config {
	return logger.Config{
		Environment: config.Environment,
		LogLevel:    config.LogLevel,
		Version:     Version,
	}
}

func provideFeedConfig(config Config) application.FeedConfig {
	return config.Feed()
}

func provideJWTConfig(config Config) middleware.JWTConfig {
	return config.JWT()
}
