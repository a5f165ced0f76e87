package middleware

import (
	"context"

	"github.com/google/wire"
	"github.com/philly/postboard/internal/platform/logger"
)

// ProviderSet is the wire provider set for middleware components
var ProviderSet = wire.NewSet(
	ProvideJWTMiddleware,
)

// JWTConfig carries the minimal settings needed to construct the JWT middleware
type JWTConfig struct {
	JWKS   string
	Issuer string
}

// Enabled reports whether token verification is configured
func (c JWTConfig) Enabled() bool {
	return c.JWKS != "" && c.Issuer != ""
}

// ProvideJWTMiddleware creates JWT middleware from JWTConfig. It returns nil
// when verification is not configured.
func ProvideJWTMiddleware(ctx context.Context, cfg JWTConfig, log logger.Logger) (*JWTMiddleware, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	return NewJWTMiddleware(ctx, cfg.JWKS, cfg.Issuer, log)
}
