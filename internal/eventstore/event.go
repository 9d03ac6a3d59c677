package eventstore

import "time"

// Event represents a recorded pipeline event.
type Event interface {
	// ID returns the ledger row id (zero before the event is stored).
	ID() int64
	// RunID returns the run this event belongs to.
	RunID() string
	// Type returns the event type name.
	Type() string
	// Repository returns the repository the event concerns; empty for run-level events.
	Repository() string
	// Timestamp returns when the event occurred.
	Timestamp() time.Time
	// Payload returns the event data as JSON.
	Payload() []byte
	// Metadata returns optional event metadata.
	Metadata() map[string]string
}

// BaseEvent provides a default implementation of Event.
type BaseEvent struct {
	EventID         int64
	EventRunID      string
	EventType       string
	EventRepository string
	EventTimestamp  time.Time
	EventPayload    []byte
	EventMetadata   map[string]string
}

func (e *BaseEvent) ID() int64                   { return e.EventID }
func (e *BaseEvent) RunID() string               { return e.EventRunID }
func (e *BaseEvent) Type() string                { return e.EventType }
func (e *BaseEvent) Repository() string          { return e.EventRepository }
func (e *BaseEvent) Timestamp() time.Time        { return e.EventTimestamp }
func (e *BaseEvent) Payload() []byte             { return e.EventPayload }
func (e *BaseEvent) Metadata() map[string]string { return e.EventMetadata }
