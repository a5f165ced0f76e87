package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/philly/postboard/internal/platform/eventbus"
)

// ChangeKind is the row-level operation reported by the realtime channel.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeUpdate ChangeKind = "UPDATE"
	ChangeDelete ChangeKind = "DELETE"
)

// AllChangeKinds lists every kind a feed subscribes to.
func AllChangeKinds() []ChangeKind {
	return []ChangeKind{ChangeInsert, ChangeUpdate, ChangeDelete}
}

// IsValid checks if the kind is one of the known operations
func (k ChangeKind) IsValid() bool {
	switch k {
	case ChangeInsert, ChangeUpdate, ChangeDelete:
		return true
	default:
		return false
	}
}

// ParseChangeKind accepts any casing ("insert", "INSERT").
func ParseChangeKind(raw string) (ChangeKind, error) {
	kind := ChangeKind(strings.ToUpper(strings.TrimSpace(raw)))
	if !kind.IsValid() {
		return "", fmt.Errorf("unknown change kind %q", raw)
	}
	return kind, nil
}

// RowChangedEvent is published on the bus whenever the backend reports a
// change on a watched table.
type RowChangedEvent struct {
	Table     string
	Kind      ChangeKind
	Record    map[string]any // new row; nil for DELETE
	OldRecord map[string]any
	// Source names the transport that delivered the change (postgres, mqtt, memory, webhook).
	Source     string
	OccurredAt time.Time
}

// RowChangedTopic is the bus topic carrying changes for one table.
func RowChangedTopic(table string) eventbus.Topic {
	return eventbus.Topic("rows." + table + ".changed")
}
