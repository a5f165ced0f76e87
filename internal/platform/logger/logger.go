package logger

import (
	"context"
)

// Logger defines the interface for logging.
// Every service and adapter in postboard logs through it so the sink can be
// swapped (slog in the server, a file or nothing in the terminal client).
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
}

// Nop discards everything. Useful in tests and wherever the terminal is owned
// by something else.
type Nop struct{}

// NewNop returns a logger that drops every record
func NewNop() Nop { return Nop{} }

func (Nop) Debug(context.Context, string, ...any) {}
func (Nop) Info(context.Context, string, ...any)  {}
func (Nop) Warn(context.Context, string, ...any)  {}
func (Nop) Error(context.Context, string, ...any) {}

var _ Logger = Nop{}
