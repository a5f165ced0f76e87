package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/philly/postboard/internal/adapters/api"
	"github.com/philly/postboard/internal/adapters/rest/middleware"
	"github.com/philly/postboard/internal/adapters/web"
	"github.com/philly/postboard/internal/platform/logger"
)

// NewHTTPServer creates and configures the HTTP server with all routes
func NewHTTPServer(
	config Config,
	server api.ServerInterface,
	page *web.Handler,
	jwtMiddleware *middleware.JWTMiddleware,
	log logger.Logger,
) *http.Server {
	srv := &http.Server{
		Addr:         config.ServerAddress,
		Handler:      NewRouter(server, page, jwtMiddleware, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	// Event streams never go idle on their own, so Shutdown ends them
	if streams, ok := server.(interface{ CloseStreams() }); ok {
		srv.RegisterOnShutdown(streams.CloseStreams)
	}
	return srv
}

// NewRouter mounts the page and the JSON API. When jwtMiddleware is nil every
// route is public; otherwise requests that write to the board need a token.
func NewRouter(
	server api.ServerInterface,
	page *web.Handler,
	jwtMiddleware *middleware.JWTMiddleware,
	log logger.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer)

	var protected []api.MiddlewareFunc
	if jwtMiddleware != nil {
		protected = append(protected, wrapMiddleware(jwtMiddleware.Middleware))
	}

	protectedPatterns := map[string]bool{
		"POST /api/v1/posts":                true,
		"POST /api/v1/feed/changes/{kind}": true,
	}

	_ = api.HandlerWithOptions(server, api.ChiServerOptions{
		BaseURL:    "/api/v1",
		BaseRouter: r,
		Middlewares: []api.MiddlewareFunc{
			routeAwareChiMiddleware(protectedPatterns, protected),
		},
	})

	pageMiddlewares := make([]func(http.Handler) http.Handler, 0, len(protected))
	for _, mw := range protected {
		pageMiddlewares = append(pageMiddlewares, mw)
	}
	page.Mount(r, pageMiddlewares...)

	return withObservability(r, log)
}

// routeAwareChiMiddleware applies middlewares to the matched chi route
// patterns listed in protected and lets everything else through.
func routeAwareChiMiddleware(protected map[string]bool, middlewares []api.MiddlewareFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(middlewares) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// chi exposes the current route pattern via RouteContext
			routeCtx := chi.RouteContext(r.Context())
			pattern := ""
			if routeCtx != nil {
				pattern = r.Method + " " + routeCtx.RoutePattern()
			}

			if !protected[pattern] {
				next.ServeHTTP(w, r)
				return
			}

			handler := next
			for i := len(middlewares) - 1; i >= 0; i-- {
				handler = middlewares[i](handler)
			}
			handler.ServeHTTP(w, r)
		})
	}
}

// wrapMiddleware converts a standard middleware to oapi-codegen's MiddlewareFunc
func wrapMiddleware(mw func(http.Handler) http.Handler) api.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return mw(next)
	}
}

// withObservability adds request logging
func withObservability(handler http.Handler, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Use chi's response writer wrapper to capture status code and bytes written
		wrr := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		handler.ServeHTTP(wrr, r)

		duration := time.Since(start)

		log.Info(r.Context(), "HTTP request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrr.Status(),
			"bytes", wrr.BytesWritten(),
			"duration_ms", duration.Milliseconds(),
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)
	})
}
