package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/philly/postboard/internal/adapters/mqtt"
	"github.com/philly/postboard/internal/adapters/postgres"
	"github.com/philly/postboard/internal/adapters/rest/middleware"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/platform/validator"
	"github.com/philly/postboard/internal/posts/application"
	"github.com/philly/postboard/internal/posts/ports"
	"github.com/spf13/viper"
)

// Backend kinds accepted by BACKEND
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	ServerAddress  string        `mapstructure:"SERVER_ADDRESS"`
	Environment    string        `mapstructure:"ENVIRONMENT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"` // Logging level (debug, info, warn, error)
	Backend        string        `mapstructure:"BACKEND"`   // postgres or memory
	PostsTable     string        `mapstructure:"POSTS_TABLE"`
	NotifyChannel  string        `mapstructure:"NOTIFY_CHANNEL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	JWKSEndpoint   string        `mapstructure:"JWKS_ENDPOINT"` // Optional, verifies tokens on write routes
	JWTIssuer      string        `mapstructure:"JWT_ISSUER"`
	MQTTBroker     string        `mapstructure:"MQTT_BROKER"` // Optional change relay
	MQTTTopic      string        `mapstructure:"MQTT_TOPIC"`
	MQTTUsername   string        `mapstructure:"MQTT_USERNAME"`
	MQTTPassword   string        `mapstructure:"MQTT_PASSWORD"`
	SeedFile       string        `mapstructure:"SEED_FILE"`
	AutoMigrate    bool          `mapstructure:"AUTO_MIGRATE"`
}

var defaults = map[string]any{
	"DATABASE_URL":    "postgresql://localhost:5432/postboard?sslmode=disable",
	"SERVER_ADDRESS":  ":8080",
	"ENVIRONMENT":     "development",
	"LOG_LEVEL":       "info",
	"BACKEND":         BackendPostgres,
	"POSTS_TABLE":     ports.DefaultPostsTable,
	"NOTIFY_CHANNEL":  postgres.DefaultNotifyChannel,
	"REQUEST_TIMEOUT": "10s",
	"JWKS_ENDPOINT":   "",
	"JWT_ISSUER":      "",
	"MQTT_BROKER":     "",
	"MQTT_TOPIC":      mqtt.DefaultTopic,
	"MQTT_USERNAME":   "",
	"MQTT_PASSWORD":   "",
	"SEED_FILE":       "",
	"AUTO_MIGRATE":    false,
}

func LoadConfig(bootstrapLogger *logger.BootstrapLogger) (Config, error) {
	ctx := context.Background()

	// It's okay if the file doesn't exist - we'll use environment variables
	if err := godotenv.Load(); err != nil {
		bootstrapLogger.Info(ctx, "no .env file found, using environment variables only")
	} else {
		bootstrapLogger.Info(ctx, "loaded .env file")
	}

	v := viper.New()

	// Every key needs a default so Unmarshal picks up its environment variable
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		bootstrapLogger.Error(ctx, "failed to unmarshal configuration", "error", err)
		return Config{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	config.Backend = strings.ToLower(strings.TrimSpace(config.Backend))

	bootstrapLogger.Info(ctx, "configuration loaded",
		"environment", config.Environment,
		"log_level", config.LogLevel,
		"server_address", config.ServerAddress,
		"backend", config.Backend,
		"auth", config.JWT().Enabled(),
		"mqtt", config.MQTTBroker != "",
	)

	if err := config.Validate(); err != nil {
		bootstrapLogger.Error(ctx, "configuration validation failed", "error", err)
		return Config{}, err
	}

	bootstrapLogger.Info(ctx, "configuration validated successfully")
	return config, nil
}

// Validate rejects settings the server cannot start with
func (c Config) Validate() error {
	switch c.Backend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, c.Backend)
	}

	if (c.JWKSEndpoint == "") != (c.JWTIssuer == "") {
		return errors.New("JWKS_ENDPOINT and JWT_ISSUER must be set together")
	}
	if err := validator.ValidateIdentifier(c.PostsTable); err != nil {
		return fmt.Errorf("POSTS_TABLE: %w", err)
	}
	if err := validator.ValidateIdentifier(c.NotifyChannel); err != nil {
		return fmt.Errorf("NOTIFY_CHANNEL: %w", err)
	}
	if c.RequestTimeout < 0 {
		return errors.New("REQUEST_TIMEOUT cannot be negative")
	}
	return nil
}

// Feed returns the settings of the feed store, composer and view
func (c Config) Feed() application.FeedConfig {
	return application.FeedConfig{
		Table:          c.PostsTable,
		RequestTimeout: c.RequestTimeout,
	}
}

// JWT returns the token verification settings
func (c Config) JWT() middleware.JWTConfig {
	return middleware.JWTConfig{
		JWKS:   c.JWKSEndpoint,
		Issuer: c.JWTIssuer,
	}
}

// MQTT returns the relay settings
func (c Config) MQTT() mqtt.Config {
	return mqtt.Config{
		Broker:         c.MQTTBroker,
		Topic:          c.MQTTTopic,
		Username:       c.MQTTUsername,
		Password:       c.MQTTPassword,
		ConnectTimeout: 10 * time.Second,
	}
}

// Realtime returns the LISTEN loop settings
func (c Config) Realtime() postgres.RealtimeConfig {
	return postgres.RealtimeConfig{Channel: c.NotifyChannel}
}
