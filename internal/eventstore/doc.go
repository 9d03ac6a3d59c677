// Package eventstore keeps an append-only SQLite ledger of pipeline runs.
//
// Every run gets an id; plan, cursor and hand-off events are appended under it
// and can be replayed into a RunHistoryProjection for the history command.
package eventstore
