package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://auth.example.com"

type signer struct {
	key jwk.Key
	set jwk.Set
}

func newSigner(t *testing.T) signer {
	t.Helper()
	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	key, err := jwk.Import(raw)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, "test-key"))
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.RS256()))

	pub, err := jwk.PublicKeyOf(key)
	require.NoError(t, err)
	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))
	return signer{key: key, set: set}
}

func (s signer) token(t *testing.T, issuer, subject string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewBuilder().
		Issuer(issuer).
		Subject(subject).
		IssuedAt(time.Now().Add(-2 * time.Hour)).
		Expiration(exp).
		Claim("email", "ann@example.com").
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256(), s.key))
	require.NoError(t, err)
	return string(signed)
}

func (s signer) middleware() *JWTMiddleware {
	return NewJWTMiddlewareWithKeys(func(context.Context) (jwk.Set, error) { return s.set, nil }, testIssuer, logger.NewNop())
}

func echoSubject() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, _ := GetJWTUserID(r.Context())
		email, _ := GetJWTUserEmail(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]string{"sub": sub, "email": email})
	})
}

func TestJWTMiddleware(t *testing.T) {
	s := newSigner(t)
	valid := s.token(t, testIssuer, "user-1", time.Now().Add(time.Hour))

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantBiz    string
	}{
		{
			name:       "bearer header",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "session cookie",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: valid}) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing token",
			setup:      func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
			wantBiz:    "TOKEN_MISSING",
		},
		{
			name:       "malformed header",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Token "+valid) },
			wantStatus: http.StatusUnauthorized,
			wantBiz:    "TOKEN_MISSING",
		},
		{
			name: "wrong issuer",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+s.token(t, "https://evil.example.com", "user-1", time.Now().Add(time.Hour)))
			},
			wantStatus: http.StatusUnauthorized,
			wantBiz:    "TOKEN_INVALID",
		},
		{
			name: "foreign key",
			setup: func(r *http.Request) {
				other := newSigner(t)
				r.Header.Set("Authorization", "Bearer "+other.token(t, testIssuer, "user-1", time.Now().Add(time.Hour)))
			},
			wantStatus: http.StatusUnauthorized,
			wantBiz:    "TOKEN_INVALID",
		},
		{
			name: "expired",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+s.token(t, testIssuer, "user-1", time.Now().Add(-time.Hour)))
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			s.middleware().Middleware(echoSubject()).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "user-1", body["sub"])
				assert.Equal(t, "ann@example.com", body["email"])
				return
			}
			assert.Equal(t, "UNAUTHORIZED", body["error"])
			if tt.wantBiz != "" {
				assert.Equal(t, tt.wantBiz, body["business_code"])
			}
		})
	}
}

func TestJWTMiddleware_KeySourceFailure(t *testing.T) {
	m := NewJWTMiddlewareWithKeys(func(context.Context) (jwk.Set, error) {
		return nil, errors.New("jwks unreachable")
	}, testIssuer, logger.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()

	m.Middleware(echoSubject()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestJWTConfig_Enabled(t *testing.T) {
	assert.False(t, JWTConfig{}.Enabled())
	assert.False(t, JWTConfig{JWKS: "https://auth.example.com/jwks"}.Enabled())
	assert.True(t, JWTConfig{JWKS: "https://auth.example.com/jwks", Issuer: testIssuer}.Enabled())

	m, err := ProvideJWTMiddleware(context.Background(), JWTConfig{}, logger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, m)
}
