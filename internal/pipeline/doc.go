// Package pipeline builds per-repository plans of pending documentation files
// and drives a run: sync, plan, hand off, advance cursors.
//
// Planner is the only component that advances a repository cursor, and it
// does so only through MarkProcessed.
package pipeline
