package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/philly/postboard/internal/platform/apperror"
	"github.com/philly/postboard/internal/platform/logger"
)

var (
	ErrMissingToken   = errors.New("missing authentication token")
	ErrInvalidToken   = errors.New("invalid authentication token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrMissingSubject = errors.New("missing subject in token")
)

// TokenCookie is read when no Authorization header is present, so the web
// page can post with the session the auth UI stored.
const TokenCookie = "access_token"

type jwtContextKey string

const (
	JWTUserIDContextKey    jwtContextKey = "jwt_user_id"
	JWTUserEmailContextKey jwtContextKey = "jwt_email"
)

// KeySource resolves the key set used to verify tokens
type KeySource func(ctx context.Context) (jwk.Set, error)

// JWTMiddleware verifies tokens issued by the backend's auth service
type JWTMiddleware struct {
	keys   KeySource
	issuer string
	logger logger.Logger
}

// NewJWTMiddleware fetches the JWKS once to validate the endpoint and keeps
// it refreshed through a jwk.Cache.
func NewJWTMiddleware(ctx context.Context, jwksEndpoint string, issuer string, log logger.Logger) (*JWTMiddleware, error) {
	cache, err := jwk.NewCache(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	if err := cache.Register(ctx, jwksEndpoint); err != nil {
		return nil, fmt.Errorf("failed to register JWKS URL: %w", err)
	}
	if _, err := cache.Lookup(ctx, jwksEndpoint); err != nil {
		return nil, fmt.Errorf("failed to fetch initial JWKS: %w", err)
	}

	return NewJWTMiddlewareWithKeys(func(ctx context.Context) (jwk.Set, error) {
		return cache.Lookup(ctx, jwksEndpoint)
	}, issuer, log), nil
}

// NewJWTMiddlewareWithKeys creates a middleware over an arbitrary key source
func NewJWTMiddlewareWithKeys(keys KeySource, issuer string, log logger.Logger) *JWTMiddleware {
	return &JWTMiddleware{keys: keys, issuer: issuer, logger: log}
}

func (m *JWTMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := extractToken(r)
		if err != nil {
			WriteJSONError(w, apperror.CodeUnauthorized, apperror.BusinessCodeTokenMissing, err.Error(), http.StatusUnauthorized)
			return
		}

		keySet, err := m.keys(r.Context())
		if err != nil {
			m.logger.Error(r.Context(), "failed to get JWKS", "error", err)
			WriteJSONError(w, apperror.CodeInternalError, apperror.BusinessCodeGeneral, "failed to get JWKS", http.StatusInternalServerError)
			return
		}

		token, err := jwt.ParseString(
			tokenString,
			jwt.WithKeySet(keySet),
			jwt.WithValidate(true),
			jwt.WithIssuer(m.issuer),
		)
		if err != nil {
			m.logger.Debug(r.Context(), "token rejected", "error", err)
			if err.Error() == "exp not satisfied" || strings.Contains(err.Error(), "expired") {
				WriteJSONError(w, apperror.CodeUnauthorized, apperror.BusinessCodeTokenExpired, ErrTokenExpired.Error(), http.StatusUnauthorized)
				return
			}
			WriteJSONError(w, apperror.CodeUnauthorized, apperror.BusinessCodeTokenInvalid, ErrInvalidToken.Error(), http.StatusUnauthorized)
			return
		}

		var subject string
		if err := token.Get("sub", &subject); err != nil || subject == "" {
			WriteJSONError(w, apperror.CodeUnauthorized, apperror.BusinessCodeTokenInvalid, ErrMissingSubject.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), JWTUserIDContextKey, subject)

		// Anonymous sign-ins carry no email
		var email string
		if err := token.Get("email", &email); err == nil && email != "" {
			ctx = context.WithValue(ctx, JWTUserEmailContextKey, email)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return "", errors.New("invalid authorization header format")
		}
		return tokenString, nil
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", ErrMissingToken
}

// GetJWTUserID extracts the user ID from the request context set by JWT middleware
func GetJWTUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(JWTUserIDContextKey).(string)
	return userID, ok
}

// GetJWTUserEmail extracts the user email from the request context set by JWT middleware
func GetJWTUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(JWTUserEmailContextKey).(string)
	return email, ok
}
