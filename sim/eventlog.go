package sim

import (
	"time"

	"github.com/google/uuid"
)

// MaxEvents is the number of log entries retained.
const MaxEvents = 100

// SimulationEvent is one human-readable entry of the audit trail.
type SimulationEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// EventLog is an append-only, bounded, newest-first record of simulation events.
// Once full, appending evicts the oldest entry.
type EventLog struct {
	entries []SimulationEvent // newest first
	limit   int
}

// NewEventLog creates an empty log retaining at most limit entries.
// A non-positive limit defaults to MaxEvents.
func NewEventLog(limit int) *EventLog {
	if limit <= 0 {
		limit = MaxEvents
	}
	return &EventLog{entries: make([]SimulationEvent, 0, limit), limit: limit}
}

// Append records message at ts and returns the stored entry. Timestamps never
// go backwards: ts earlier than the newest entry is raised to match it.
func (l *EventLog) Append(ts time.Time, message string) SimulationEvent {
	if len(l.entries) > 0 && ts.Before(l.entries[0].Timestamp) {
		ts = l.entries[0].Timestamp
	}
	ev := SimulationEvent{ID: uuid.NewString(), Timestamp: ts, Message: message}
	if len(l.entries) < l.limit {
		l.entries = append(l.entries, SimulationEvent{})
	}
	// shift right by one, dropping the oldest entry when full
	copy(l.entries[1:], l.entries[:len(l.entries)-1])
	l.entries[0] = ev
	return ev
}

// Clear drops every entry.
func (l *EventLog) Clear() {
	l.entries = l.entries[:0]
}

// Len returns the number of retained entries.
func (l *EventLog) Len() int {
	return len(l.entries)
}

// Latest returns the newest entry, or false if the log is empty.
func (l *EventLog) Latest() (SimulationEvent, bool) {
	if len(l.entries) == 0 {
		return SimulationEvent{}, false
	}
	return l.entries[0], true
}

// Entries returns a newest-first copy of the log.
func (l *EventLog) Entries() []SimulationEvent {
	out := make([]SimulationEvent, len(l.entries))
	copy(out, l.entries)
	return out
}

// Messages returns the messages of all entries, newest first.
func (l *EventLog) Messages() []string {
	out := make([]string, len(l.entries))
	for i, ev := range l.entries {
		out[i] = ev.Message
	}
	return out
}
