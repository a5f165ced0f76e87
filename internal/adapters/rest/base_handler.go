package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/philly/postboard/internal/adapters/api"
	"github.com/philly/postboard/internal/platform/apperror"
	"github.com/philly/postboard/internal/platform/logger"
)

// BaseHandler contains common dependencies and helper methods for all handlers
type BaseHandler struct {
	logger logger.Logger
}

// NewBaseHandler creates a new base handler with common dependencies
func NewBaseHandler(logger logger.Logger) *BaseHandler {
	return &BaseHandler{
		logger: logger,
	}
}

// WriteJSONError writes a JSON error response matching OpenAPI spec
func (h *BaseHandler) WriteJSONError(w http.ResponseWriter, r *http.Request, code string, message string, statusCode int) {
	h.writeError(w, r, api.Error{Error: code, Message: message}, statusCode)
}

// WriteJSONResponse writes a successful JSON response
func (h *BaseHandler) WriteJSONResponse(w http.ResponseWriter, r *http.Request, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error(r.Context(), "failed to encode response",
			"error", err,
			"status_code", statusCode,
		)
	}
}

// HandleError renders err. AppErrors keep their status, codes and details;
// anything else becomes a 500 without leaking the cause.
func (h *BaseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		h.logger.Error(r.Context(), "unhandled error", "error", err, "path", r.URL.Path)
		h.WriteJSONError(w, r, string(apperror.CodeInternalError), "internal server error", http.StatusInternalServerError)
		return
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "error", err, "path", r.URL.Path)
	} else {
		h.logger.Debug(r.Context(), "request rejected", "error", err, "path", r.URL.Path)
	}

	body := api.Error{
		Error:   string(appErr.Code),
		Message: appErr.Message,
		Context: appErr.Details,
	}
	if appErr.BusinessCode != "" {
		bizCode := string(appErr.BusinessCode)
		body.BusinessCode = &bizCode
	}
	h.writeError(w, r, body, status)
}

// DecodeJSON reads the request body into dst, answering 400 on failure.
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	if err := dec.Decode(dst); err != nil {
		h.HandleError(w, r, apperror.Wrap(err,
			apperror.CodeValidationFailed,
			apperror.BusinessCodeInvalidFormat,
			"invalid request body",
			http.StatusBadRequest,
		))
		return false
	}
	return true
}

func (h *BaseHandler) writeError(w http.ResponseWriter, r *http.Request, body api.Error, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error(r.Context(), "failed to encode error response",
			"error", err,
			"error_code", body.Error,
			"status_code", statusCode,
		)
	}
}
