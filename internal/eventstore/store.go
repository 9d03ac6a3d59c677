package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, e Event) error
	// ByRun retrieves all events of a run in insertion order.
	ByRun(ctx context.Context, runID string) ([]Event, error)
	// Range retrieves events within a time range in insertion order.
	Range(ctx context.Context, start, end time.Time) ([]Event, error)
	// Recent retrieves the newest events, newest first.
	Recent(ctx context.Context, limit int) ([]Event, error)
	// Close closes the store and releases resources.
	Close() error
}

// Recorder is the write side used by the pipeline.
type Recorder interface {
	Append(ctx context.Context, e Event) error
}

// Nop discards events (history disabled).
type Nop struct{}

func (Nop) Append(context.Context, Event) error { return nil }
