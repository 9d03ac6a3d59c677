package config

// DefaultTrackedSuffixes are the documentation file types tracked when none are configured.
var DefaultTrackedSuffixes = []string{".md", ".markdown", ".yaml", ".yml"}

const (
	DefaultBranch          = "main"
	DefaultMaxRetries      = 2
	DefaultRetryInitial    = "1s"
	DefaultRetryMax        = "30s"
	DefaultWatchInterval   = "15m"
	DefaultMetricsAddress  = ":9464"
	DefaultMetricsPath     = "/metrics"
	DefaultNotifySubject   = "pivot.plans"
	DefaultNotifyStream    = "PIVOT_PLANS"
	DefaultTimeoutSeconds  = 60.0
	defaultRepositoryScope = "."
)

// applyDefaults fills unset fields after normalization.
func applyDefaults(c *Config) {
	for i := range c.Repositories {
		r := &c.Repositories[i]
		if r.Branch == "" {
			r.Branch = DefaultBranch
		}
		if r.DocsPath == "" {
			r.DocsPath = defaultRepositoryScope
		}
	}
	if len(c.Tracking.Suffixes) == 0 {
		c.Tracking.Suffixes = append([]string(nil), DefaultTrackedSuffixes...)
	}
	if c.Translation != nil && c.Translation.TimeoutSeconds == 0 {
		c.Translation.TimeoutSeconds = DefaultTimeoutSeconds
	}

	if c.Sync.RetryBackoff == "" {
		c.Sync.RetryBackoff = RetryBackoffLinear
	}
	if c.Sync.MaxRetries == 0 {
		c.Sync.MaxRetries = DefaultMaxRetries
	}
	if c.Sync.RetryInitialDelay == "" {
		c.Sync.RetryInitialDelay = DefaultRetryInitial
	}
	if c.Sync.RetryMaxDelay == "" {
		c.Sync.RetryMaxDelay = DefaultRetryMax
	}

	if c.Watch.Interval == "" {
		c.Watch.Interval = DefaultWatchInterval
	}
	if c.Monitoring.Metrics.Address == "" {
		c.Monitoring.Metrics.Address = DefaultMetricsAddress
	}
	if c.Monitoring.Metrics.Path == "" {
		c.Monitoring.Metrics.Path = DefaultMetricsPath
	}
	if c.Monitoring.Logging.Level == "" {
		c.Monitoring.Logging.Level = LogLevelInfo
	}
	if c.Monitoring.Logging.Format == "" {
		c.Monitoring.Logging.Format = LogFormatText
	}
	if c.Notify.Subject == "" {
		c.Notify.Subject = DefaultNotifySubject
	}
	if c.Notify.JetStream && c.Notify.Stream == "" {
		c.Notify.Stream = DefaultNotifyStream
	}
}
