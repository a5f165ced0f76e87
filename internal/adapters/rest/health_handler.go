package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/philly/postboard/internal/adapters/api"
	"github.com/philly/postboard/internal/posts/ports"
)

// LiveStatus reports whether push notifications are flowing
type LiveStatus interface {
	Live() bool
}

type HealthHandler struct {
	*BaseHandler
	version  string
	backend  ports.Pinger
	realtime LiveStatus
}

// NewHealthHandler creates the probe handler. backend may be nil when the
// client cannot be pinged.
func NewHealthHandler(base *BaseHandler, version string, backend ports.Pinger, realtime LiveStatus) *HealthHandler {
	return &HealthHandler{
		BaseHandler: base,
		version:     version,
		backend:     backend,
		realtime:    realtime,
	}
}

// GetLiveness implements the liveness probe endpoint
func (h *HealthHandler) GetLiveness(w http.ResponseWriter, r *http.Request) {
	response := api.HealthStatus{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Version:   &h.version,
	}

	h.WriteJSONResponse(w, r, response, http.StatusOK)
}

// GetReadiness checks the backend. A feed without live updates is degraded,
// an unreachable backend is unhealthy.
func (h *HealthHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	status := api.Healthy
	httpStatus := http.StatusOK

	checks := &struct {
		Backend  *api.HealthCheckStatus `json:"backend,omitempty"`
		Realtime *api.HealthCheckStatus `json:"realtime,omitempty"`
	}{}

	if h.backend != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		backendStatus := api.Up
		if err := h.backend.Ping(ctx); err != nil {
			h.logger.Warn(r.Context(), "readiness check failed", "error", err)
			backendStatus = api.Down
			status = api.Unhealthy
			httpStatus = http.StatusServiceUnavailable
		}
		checks.Backend = &backendStatus
	} else {
		status = api.Degraded
	}

	if h.realtime != nil {
		realtimeStatus := api.Up
		if !h.realtime.Live() {
			realtimeStatus = api.Down
			if status == api.Healthy {
				status = api.Degraded
			}
		}
		checks.Realtime = &realtimeStatus
	}

	response := api.HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Version:   &h.version,
		Checks:    checks,
	}

	h.WriteJSONResponse(w, r, response, httpStatus)
}
