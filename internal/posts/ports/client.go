package ports

import (
	"context"
	"errors"
	"strings"

	"github.com/philly/postboard/internal/platform/events"
)

// Row is a single record as returned by the backend service, keyed by column.
type Row map[string]any

// Direction is the sort direction of a bulk read.
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// Change is one push notification delivered to a subscriber.
type Change struct {
	Table  string
	Kind   events.ChangeKind
	Record Row
	Source string
}

// ChangeHandler receives push notifications.
type ChangeHandler func(ctx context.Context, change Change)

// Subscription is a live registration on the push channel.
type Subscription interface {
	Unsubscribe() error
}

// Client is the contract of the backend-as-a-service: hosted table storage
// plus a realtime change feed. Implementations are the PostgreSQL adapter and
// the in-memory adapter used for local runs and tests.
type Client interface {
	// FetchOrdered reads every row of table, projected on columns and sorted by orderBy.
	FetchOrdered(ctx context.Context, table string, columns []string, orderBy string, dir Direction) ([]Row, error)

	// InsertRow creates one row and returns it projected on returning,
	// including the values the service assigned (id, created_at).
	InsertRow(ctx context.Context, table string, fields map[string]any, returning []string) (Row, error)

	// SubscribeChanges registers handler for the given kinds of change on table.
	SubscribeChanges(ctx context.Context, table string, kinds []events.ChangeKind, handler ChangeHandler) (Subscription, error)
}

// Pinger is implemented by clients that can report backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServiceError is the error shape clients return for failures reported by
// the service itself. Message is meant to be shown to the user verbatim.
type ServiceError struct {
	Message string
	Code    string
	Inner   error
}

func (e *ServiceError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

func (e *ServiceError) Unwrap() error { return e.Inner }

// UserMessage extracts the message to surface for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}
	return strings.TrimSpace(err.Error())
}
