// Package api is the HTTP surface described in openapi.yaml. It follows the
// layout of oapi-codegen's chi server output and is maintained by hand;
// go generate replaces it with the generator's own output.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Defines values for FeedSnapshotState.
const (
	FeedSnapshotStateEmpty       FeedSnapshotState = "empty"
	FeedSnapshotStateLoading     FeedSnapshotState = "loading"
	FeedSnapshotStatePopulated   FeedSnapshotState = "populated"
	FeedSnapshotStateUnavailable FeedSnapshotState = "unavailable"
)

// Defines values for HealthStatusStatus.
const (
	Degraded  HealthStatusStatus = "degraded"
	Healthy   HealthStatusStatus = "healthy"
	Unhealthy HealthStatusStatus = "unhealthy"
)

// Defines values for HealthCheckStatus.
const (
	Down HealthCheckStatus = "down"
	Up   HealthCheckStatus = "up"
)

// Defines values for NotifyFeedChangeParamsKind.
const (
	DELETE NotifyFeedChangeParamsKind = "DELETE"
	INSERT NotifyFeedChangeParamsKind = "INSERT"
	UPDATE NotifyFeedChangeParamsKind = "UPDATE"
)

// CreatePostRequest defines model for CreatePostRequest.
type CreatePostRequest struct {
	Content string `json:"content"`
}

// Error defines model for Error.
type Error struct {
	BusinessCode *string     `json:"business_code,omitempty"`
	Context      interface{} `json:"context,omitempty"`
	Error        string      `json:"error"`
	Message      string      `json:"message"`
}

// FeedSnapshot defines model for FeedSnapshot.
type FeedSnapshot struct {
	// Error Most recent load failure, cleared by the next successful load
	Error *string `json:"error,omitempty"`

	// Live Whether push notifications are currently received
	Live    bool              `json:"live"`
	Posts   []Post            `json:"posts"`
	State   FeedSnapshotState `json:"state"`
	Version int64             `json:"version"`
}

// FeedSnapshotState defines model for FeedSnapshot.State.
type FeedSnapshotState string

// HealthCheckStatus defines model for HealthCheckStatus.
type HealthCheckStatus string

// HealthStatus defines model for HealthStatus.
type HealthStatus struct {
	Checks *struct {
		Backend  *HealthCheckStatus `json:"backend,omitempty"`
		Realtime *HealthCheckStatus `json:"realtime,omitempty"`
	} `json:"checks,omitempty"`
	Status    HealthStatusStatus `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
	Version   *string            `json:"version,omitempty"`
}

// HealthStatusStatus defines model for HealthStatus.Status.
type HealthStatusStatus string

// Post defines model for Post.
type Post struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Id        int64     `json:"id"`
}

// NotifyFeedChangeParamsKind defines parameters for NotifyFeedChange.
type NotifyFeedChangeParamsKind string

// CreatePostJSONRequestBody defines body for CreatePost for application/json ContentType.
type CreatePostJSONRequestBody = CreatePostRequest

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Stream feed snapshots as server-sent events
	// (GET /feed/events)
	StreamFeedEvents(w http.ResponseWriter, r *http.Request)
	// Report a change on the posts table
	// (POST /feed/changes/{kind})
	NotifyFeedChange(w http.ResponseWriter, r *http.Request, kind NotifyFeedChangeParamsKind)
	// Reload the feed
	// (POST /feed/reload)
	ReloadFeed(w http.ResponseWriter, r *http.Request)
	// Liveness probe
	// (GET /health/live)
	GetLiveness(w http.ResponseWriter, r *http.Request)
	// Readiness probe
	// (GET /health/ready)
	GetReadiness(w http.ResponseWriter, r *http.Request)
	// Current feed snapshot
	// (GET /posts)
	ListPosts(w http.ResponseWriter, r *http.Request)
	// Create a post
	// (POST /posts)
	CreatePost(w http.ResponseWriter, r *http.Request)
}

// Unimplemented server implementation that returns http.StatusNotImplemented for each endpoint.

type Unimplemented struct{}

// Stream feed snapshots as server-sent events
// (GET /feed/events)
func (_ Unimplemented) StreamFeedEvents(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

// Report a change on the posts table
// (POST /feed/changes/{kind})
func (_ Unimplemented) NotifyFeedChange(w http.ResponseWriter, r *http.Request, kind NotifyFeedChangeParamsKind) {
	w.WriteHeader(http.StatusNotImplemented)
}

// Reload the feed
// (POST /feed/reload)
func (_ Unimplemented) ReloadFeed(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

// Liveness probe
// (GET /health/live)
func (_ Unimplemented) GetLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

// Readiness probe
// (GET /health/ready)
func (_ Unimplemented) GetReadiness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

// Current feed snapshot
// (GET /posts)
func (_ Unimplemented) ListPosts(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

// Create a post
// (POST /posts)
func (_ Unimplemented) CreatePost(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

// StreamFeedEvents operation middleware
func (siw *ServerInterfaceWrapper) StreamFeedEvents(w http.ResponseWriter, r *http.Request) {

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.StreamFeedEvents(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// NotifyFeedChange operation middleware
func (siw *ServerInterfaceWrapper) NotifyFeedChange(w http.ResponseWriter, r *http.Request) {

	var err error

	// ------------- Path parameter "kind" -------------
	var kind NotifyFeedChangeParamsKind

	err = runtime.BindStyledParameterWithLocation("simple", false, "kind", runtime.ParamLocationPath, chi.URLParam(r, "kind"), &kind)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "kind", Err: err})
		return
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.NotifyFeedChange(w, r, kind)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// ReloadFeed operation middleware
func (siw *ServerInterfaceWrapper) ReloadFeed(w http.ResponseWriter, r *http.Request) {

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ReloadFeed(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// GetLiveness operation middleware
func (siw *ServerInterfaceWrapper) GetLiveness(w http.ResponseWriter, r *http.Request) {

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetLiveness(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// GetReadiness operation middleware
func (siw *ServerInterfaceWrapper) GetReadiness(w http.ResponseWriter, r *http.Request) {

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetReadiness(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// ListPosts operation middleware
func (siw *ServerInterfaceWrapper) ListPosts(w http.ResponseWriter, r *http.Request) {

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListPosts(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// CreatePost operation middleware
func (siw *ServerInterfaceWrapper) CreatePost(w http.ResponseWriter, r *http.Request) {

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreatePost(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching OpenAPI spec based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

func HandlerFromMuxWithBaseURL(si ServerInterface, r chi.Router, baseURL string) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseURL:    baseURL,
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/feed/events", wrapper.StreamFeedEvents)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/feed/changes/{kind}", wrapper.NotifyFeedChange)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/feed/reload", wrapper.ReloadFeed)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health/live", wrapper.GetLiveness)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health/ready", wrapper.GetReadiness)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/posts", wrapper.ListPosts)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/posts", wrapper.CreatePost)
	})

	return r
}
