package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"git.home.luguber.info/inful/pivot/internal/logfields"
)

// Store implements cursor persistence using a single JSON file.
type Store struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	states map[string]RepositoryState
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open loads the state file at path, creating its parent directory if needed.
// A missing file is a fresh start; a malformed one yields a *CorruptError.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:   path,
		logger: slog.Default(),
		states: make(map[string]RepositoryState),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, &IOError{Op: "create directory for", Path: path, Err: err}
	}
	if err := s.loadFromDisk(); err != nil {
		return nil, err
	}
	s.logger.Debug("State loaded", logfields.Path(path), logfields.Count(len(s.states)))
	return s, nil
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// Get returns the state recorded for name, or the never-processed state.
func (s *Store) Get(name string) RepositoryState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[name]
	if !ok {
		return NeverProcessed()
	}
	return st.clone()
}

// Set replaces the state for name and rewrites the backing file before returning.
// The in-memory update stays visible even when the write fails.
func (s *Store) Set(name string, st RepositoryState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[name] = st.clone()
	if err := s.saveToDiskUnsafe(); err != nil {
		s.logger.Error("Failed to persist state", logfields.Repository(name), logfields.Path(s.path), logfields.Error(err))
		return err
	}
	s.logger.Debug("State persisted", logfields.Repository(name), logfields.Cursor(st.Commit()))
	return nil
}

// Clear removes all in-memory state and deletes the backing file if present.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = make(map[string]RepositoryState)
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return &IOError{Op: "remove", Path: s.path, Err: err}
	}
	s.logger.Info("State cleared", logfields.Path(s.path))
	return nil
}

// Names returns the recorded repository names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.states))
	for name := range s.states {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadFromDisk reads and validates the state file.
func (s *Store) loadFromDisk() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &IOError{Op: "read", Path: s.path, Err: err}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return &CorruptError{Path: s.path, Reason: "top level must be a JSON object"}
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return &CorruptError{Path: s.path, Reason: "invalid JSON", Err: err}
	}

	for name, value := range raw {
		st, err := decodeRecord(value)
		if err != nil {
			return &CorruptError{Path: s.path, Reason: fmt.Sprintf("entry %q", name), Err: err}
		}
		s.states[name] = st
	}
	return nil
}

// decodeRecord accepts an object whose optional last_synced_commit is a string or null.
func decodeRecord(value json.RawMessage) (RepositoryState, error) {
	v := bytes.TrimSpace(value)
	if len(v) == 0 || v[0] != '{' {
		return RepositoryState{}, fmt.Errorf("record must be an object")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(v, &fields); err != nil {
		return RepositoryState{}, err
	}
	commitRaw, ok := fields["last_synced_commit"]
	if !ok || bytes.Equal(bytes.TrimSpace(commitRaw), []byte("null")) {
		return NeverProcessed(), nil
	}
	var commit string
	if err := json.Unmarshal(commitRaw, &commit); err != nil {
		return RepositoryState{}, fmt.Errorf("last_synced_commit must be a string or null")
	}
	return RepositoryState{LastSyncedCommit: &commit}, nil
}

// saveToDiskUnsafe writes the full mapping without acquiring the lock.
// Keys are sorted by encoding/json, which keeps diffs of the file reproducible.
func (s *Store) saveToDiskUnsafe() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.states); err != nil {
		return &IOError{Op: "encode", Path: s.path, Err: err}
	}
	return writeAtomic(s.path, buf.Bytes())
}

// writeAtomic writes data to a temporary sibling file and renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return &IOError{Op: "sync", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &IOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return &IOError{Op: "chmod", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return &IOError{Op: "replace", Path: path, Err: err}
	}
	return nil
}
