package config

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the pivot configuration file.
type Config struct {
	WorkDir      string             `yaml:"work_dir"`
	OutputDir    string             `yaml:"output_dir"`
	Repositories []Repository       `yaml:"repositories"`
	Translation  *TranslationConfig `yaml:"translation"`
	Tracking     TrackingConfig     `yaml:"tracking,omitempty"`
	Sync         SyncConfig         `yaml:"sync,omitempty"`
	Watch        WatchConfig        `yaml:"watch,omitempty"`
	Monitoring   MonitoringConfig   `yaml:"monitoring,omitempty"`
	Notify       NotifyConfig       `yaml:"notify,omitempty"`
	History      HistoryConfig      `yaml:"history,omitempty"`
}

// Repository describes one tracked remote repository.
type Repository struct {
	Name     string      `yaml:"name"`
	URL      string      `yaml:"url"`
	Branch   string      `yaml:"branch,omitempty"`
	DocsPath string      `yaml:"docs_path,omitempty"` // relative; "" or "." means repository-wide
	Auth     *AuthConfig `yaml:"auth,omitempty"`
}

// DocsRoot returns the cleaned, slash-separated documentation root ("." for repository-wide).
func (r Repository) DocsRoot() string {
	p := strings.TrimSpace(filepath.ToSlash(r.DocsPath))
	if p == "" {
		return "."
	}
	return path.Clean(p)
}

// RepositoryWide reports whether every path in the repository is in scope.
func (r Repository) RepositoryWide() bool {
	return r.DocsRoot() == "."
}

// AuthConfig holds credentials for cloning and fetching.
type AuthConfig struct {
	Type     AuthType `yaml:"type"`
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	Token    string   `yaml:"token,omitempty"`
	KeyPath  string   `yaml:"key_path,omitempty"`
}

// TranslationConfig configures the translation provider backend consumed by the hand-off stage.
type TranslationConfig struct {
	Provider       string  `yaml:"provider"`
	Model          string  `yaml:"model"`
	BaseURL        string  `yaml:"base_url,omitempty"`
	APIKey         string  `yaml:"api_key,omitempty"`
	APIKeyEnv      string  `yaml:"api_key_env,omitempty"`
	TimeoutSeconds float64 `yaml:"timeout_seconds,omitempty"`
}

// ResolveAPIKey returns the inline key, falling back to the configured environment variable.
func (t *TranslationConfig) ResolveAPIKey() (string, error) {
	if t.APIKey != "" {
		return t.APIKey, nil
	}
	if v := os.Getenv(t.APIKeyEnv); v != "" {
		return v, nil
	}
	return "", configError("environment variable "+t.APIKeyEnv+" is not set or empty", "translation.api_key_env", nil)
}

// Timeout returns the request timeout as a duration.
func (t *TranslationConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds * float64(time.Second))
}

// TrackingConfig selects which files count as documentation. It applies to every repository.
type TrackingConfig struct {
	Suffixes []string `yaml:"suffixes,omitempty"`
}

// RetryBackoffMode selects how internal/retry spaces sync attempts.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// SyncConfig tunes repository synchronization.
type SyncConfig struct {
	MaxRetries        int              `yaml:"max_retries,omitempty"`
	RetryBackoff      RetryBackoffMode `yaml:"retry_backoff,omitempty"`
	RetryInitialDelay string           `yaml:"retry_initial_delay,omitempty"`
	RetryMaxDelay     string           `yaml:"retry_max_delay,omitempty"`
	ShallowDepth      int              `yaml:"shallow_depth,omitempty"`
}

// InitialDelay parses RetryInitialDelay, returning zero when unset or invalid.
func (s SyncConfig) InitialDelay() time.Duration { return parseDuration(s.RetryInitialDelay) }

// MaxDelay parses RetryMaxDelay, returning zero when unset or invalid.
func (s SyncConfig) MaxDelay() time.Duration { return parseDuration(s.RetryMaxDelay) }

// WatchConfig configures the periodic watch mode.
type WatchConfig struct {
	Interval string `yaml:"interval,omitempty"`
}

// IntervalDuration parses Interval.
func (w WatchConfig) IntervalDuration() time.Duration { return parseDuration(w.Interval) }

// MonitoringConfig represents monitoring and observability configuration.
type MonitoringConfig struct {
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint served in watch mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// NotifyConfig configures publishing of plans to the translation stage.
type NotifyConfig struct {
	NATSURL   string `yaml:"nats_url,omitempty"` // empty disables NATS publishing
	Subject   string `yaml:"subject,omitempty"`
	JetStream bool   `yaml:"jetstream,omitempty"`
	Stream    string `yaml:"stream,omitempty"`
}

// Enabled reports whether plans are published to NATS.
func (n NotifyConfig) Enabled() bool { return n.NATSURL != "" }

// HistoryConfig toggles the run history ledger.
type HistoryConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// IsEnabled defaults to true when unset.
func (h HistoryConfig) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// StateFile is where repository cursors are persisted.
func (c *Config) StateFile() string {
	return filepath.Join(c.WorkDir, "state", "repositories.json")
}

// HistoryFile is the SQLite run ledger location.
func (c *Config) HistoryFile() string {
	return filepath.Join(c.WorkDir, "state", "history.db")
}

// RepositoriesDir is where working trees are cloned.
func (c *Config) RepositoriesDir() string {
	return filepath.Join(c.WorkDir, "repositories")
}

// EnsureDirectories creates the work and output directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.WorkDir, c.OutputDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return configError("failed to create directory "+dir, "", err)
		}
	}
	return nil
}

// Repository returns the repository with the given name.
func (c *Config) Repository(name string) (Repository, bool) {
	for _, r := range c.Repositories {
		if r.Name == name {
			return r, true
		}
	}
	return Repository{}, false
}

func parseDuration(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
