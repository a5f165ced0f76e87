package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/philly/postboard/internal/platform/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONError(t *testing.T) {
	tests := []struct {
		name    string
		bizCode apperror.BusinessCode
		message string
		want    map[string]any
	}{
		{
			name:    "missing token",
			bizCode: apperror.BusinessCodeTokenMissing,
			message: "missing authentication token",
			want: map[string]any{
				"error":         "UNAUTHORIZED",
				"business_code": "TOKEN_MISSING",
				"message":       "missing authentication token",
			},
		},
		{
			name:    "no business code",
			message: "Authentication required",
			want: map[string]any{
				"error":   "UNAUTHORIZED",
				"message": "Authentication required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			WriteJSONError(w, apperror.CodeUnauthorized, tt.bizCode, tt.message, http.StatusUnauthorized)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var response map[string]any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.want, response)
		})
	}
}

func TestWriteJSONErrorWithDetails(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSONErrorWithDetails(w, apperror.CodeUnauthorized, apperror.BusinessCodeTokenInvalid,
		"invalid authentication token", http.StatusUnauthorized, map[string]any{"issuer": "https://auth.example.com"})

	var response map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "TOKEN_INVALID", response["business_code"])
	assert.Equal(t, map[string]any{"issuer": "https://auth.example.com"}, response["context"])
}
