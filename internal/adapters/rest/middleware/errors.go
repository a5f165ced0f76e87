package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/philly/postboard/internal/platform/apperror"
)

// WriteJSONError writes an error body in the same shape as rest.BaseHandler
func WriteJSONError(w http.ResponseWriter, code apperror.ErrorCode, bizCode apperror.BusinessCode, message string, status int) {
	WriteJSONErrorWithDetails(w, code, bizCode, message, status, nil)
}

// WriteJSONErrorWithDetails writes an error body with a context object
func WriteJSONErrorWithDetails(w http.ResponseWriter, code apperror.ErrorCode, bizCode apperror.BusinessCode, message string, status int, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorResp := map[string]any{
		"error":   string(code),
		"message": message,
	}
	if bizCode != "" {
		errorResp["business_code"] = string(bizCode)
	}
	if len(details) > 0 {
		errorResp["context"] = details
	}

	// Ignore encoding errors here as we're already in error handling
	_ = json.NewEncoder(w).Encode(errorResp)
}
