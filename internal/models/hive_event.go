package models

import "time"

// Event types recorded in the hive event log.
const (
	EventFlush     = "FLUSH"
	EventAlert     = "ALERT"
	EventHeartbeat = "HEARTBEAT"
	EventStale     = "STALE"
)

// HiveEvent is a single log entry.
type HiveEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // FLUSH | ALERT | HEARTBEAT | STALE
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
