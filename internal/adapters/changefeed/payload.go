package changefeed

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/philly/postboard/internal/platform/events"
)

// ErrInvalidPayload is returned for notifications that cannot be decoded.
var ErrInvalidPayload = errors.New("invalid change payload")

// Payload is the wire shape of a change notification. The database trigger
// sends the row id alone; MQTT publishers may send whole records instead.
type Payload struct {
	Table           string         `json:"table"`
	Type            string         `json:"type"`
	ID              *int64         `json:"id,omitempty"`
	Record          map[string]any `json:"record"`
	OldRecord       map[string]any `json:"old_record"`
	CommitTimestamp string         `json:"commit_timestamp"`
}

// DecodePayload parses a JSON change notification delivered by source.
func DecodePayload(data []byte, source string) (events.RowChangedEvent, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return events.RowChangedEvent{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p.Table == "" {
		return events.RowChangedEvent{}, fmt.Errorf("%w: missing table", ErrInvalidPayload)
	}
	kind, err := events.ParseChangeKind(p.Type)
	if err != nil {
		return events.RowChangedEvent{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	change := events.RowChangedEvent{
		Table:     p.Table,
		Kind:      kind,
		Record:    p.Record,
		OldRecord: p.OldRecord,
		Source:    source,
	}
	if p.ID != nil {
		key := map[string]any{"id": float64(*p.ID)}
		switch {
		case kind == events.ChangeDelete && change.OldRecord == nil:
			change.OldRecord = key
		case kind != events.ChangeDelete && change.Record == nil:
			change.Record = key
		}
	}
	if p.CommitTimestamp != "" {
		if ts, err := time.Parse(time.RFC3339Nano, p.CommitTimestamp); err == nil {
			change.OccurredAt = ts
		}
	}
	return change, nil
}
