// Package logfields holds canonical slog attribute keys shared across pivot packages.
package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyRepo       = "repository"
	KeyCommit     = "commit"
	KeyCursor     = "cursor"
	KeyBranch     = "branch"
	KeyURL        = "url"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Repository(r string) slog.Attr   { return slog.String(KeyRepo, r) }
func Cursor(c string) slog.Attr       { return slog.String(KeyCursor, ShortCommit(c)) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Commit logs the abbreviated form of a commit identifier.
func Commit(c string) slog.Attr { return slog.String(KeyCommit, ShortCommit(c)) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// ShortCommit abbreviates a commit identifier to eight characters; empty input means "none".
func ShortCommit(c string) string {
	if c == "" {
		return "none"
	}
	if len(c) > 8 {
		return c[:8]
	}
	return c
}
