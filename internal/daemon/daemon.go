package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pivot/internal/config"
	"git.home.luguber.info/inful/pivot/internal/logfields"
)

// DefaultReloadDebounce is how long the config file must be quiet before a reload.
const DefaultReloadDebounce = 2 * time.Second

// RunFunc performs one pipeline run with the given configuration.
type RunFunc func(ctx context.Context, cfg *config.Config) error

// LoadFunc reads the configuration from path.
type LoadFunc func(path string) (*config.Config, error)

// Daemon schedules runs, reloads the configuration and serves metrics.
type Daemon struct {
	configPath string
	run        RunFunc
	load       LoadFunc
	registry   *prom.Registry
	logger     *slog.Logger
	debounce   time.Duration

	mu  sync.RWMutex
	cfg *config.Config

	runMu   sync.Mutex
	runs    atomic.Int64
	skipped atomic.Int64
	lastErr atomic.Value // string
	runCtx  context.Context
	sched   *Scheduler
	watcher *ConfigWatcher
	server  *MetricsServer
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithLogger sets the daemon logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Daemon) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithRegistry sets the registry served when metrics are enabled.
func WithRegistry(reg *prom.Registry) Option {
	return func(d *Daemon) { d.registry = reg }
}

// WithLoader overrides how the configuration file is re-read on change.
func WithLoader(load LoadFunc) Option {
	return func(d *Daemon) {
		if load != nil {
			d.load = load
		}
	}
}

// WithReloadDebounce sets the quiet period before a reload.
func WithReloadDebounce(d time.Duration) Option {
	return func(dm *Daemon) {
		if d > 0 {
			dm.debounce = d
		}
	}
}

// New creates a Daemon. configPath may be empty, which disables reloads.
func New(configPath string, cfg *config.Config, run RunFunc, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires a configuration")
	}
	if run == nil {
		return nil, errors.New("daemon requires a run function")
	}
	d := &Daemon{
		configPath: configPath,
		cfg:        cfg,
		run:        run,
		load:       config.Load,
		logger:     slog.Default(),
		debounce:   DefaultReloadDebounce,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Config returns the active configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Runs returns the number of completed runs.
func (d *Daemon) Runs() int64 { return d.runs.Load() }

// Skipped returns the number of ticks dropped because a run was in progress.
func (d *Daemon) Skipped() int64 { return d.skipped.Load() }

// LastError returns the error message of the most recent run, empty on success.
func (d *Daemon) LastError() string {
	v, _ := d.lastErr.Load().(string)
	return v
}

// Run schedules periodic runs and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	d.runCtx = ctx
	cfg := d.Config()

	sched, err := NewScheduler(d.tick, d.logger)
	if err != nil {
		return err
	}
	d.sched = sched
	if err := sched.Schedule(cfg.Watch.IntervalDuration()); err != nil {
		return err
	}

	if cfg.Monitoring.Metrics.Enabled {
		srv, err := NewMetricsServer(cfg.Monitoring.Metrics, d.registry, d.logger)
		if err != nil {
			return err
		}
		d.server = srv
		srv.Start()
	}

	if d.configPath != "" {
		w, err := NewConfigWatcher(d.configPath, d.debounce, d.Reload, d.logger)
		if err != nil {
			d.shutdown()
			return err
		}
		if err := w.Start(ctx); err != nil {
			_ = w.Stop()
			d.shutdown()
			return err
		}
		d.watcher = w
	}

	sched.Start()
	d.logger.Info("Watch mode started", slog.Duration("interval", sched.Interval()))
	<-ctx.Done()
	d.logger.Info("Watch mode stopping")
	d.shutdown()
	return nil
}

func (d *Daemon) shutdown() {
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			d.logger.Warn("Error closing config watcher", logfields.Error(err))
		}
	}
	if d.sched != nil {
		if err := d.sched.Stop(); err != nil {
			d.logger.Warn("Error stopping scheduler", logfields.Error(err))
		}
	}
	if d.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.server.Stop(ctx); err != nil {
			d.logger.Warn("Error stopping metrics server", logfields.Error(err))
		}
	}
}

// tick is the scheduled job body.
func (d *Daemon) tick() {
	ctx := d.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := d.RunOnce(ctx); err != nil {
		d.logger.Error("Scheduled run failed", logfields.Error(err))
	}
}

// RunOnce performs a run unless one is already in progress, in which case it
// returns false without running.
func (d *Daemon) RunOnce(ctx context.Context) (bool, error) {
	if !d.runMu.TryLock() {
		d.skipped.Add(1)
		d.logger.Warn("Run already in progress, skipping")
		return false, nil
	}
	defer d.runMu.Unlock()
	if err := ctx.Err(); err != nil {
		return false, err
	}

	err := d.run(ctx, d.Config())
	d.runs.Add(1)
	if err != nil {
		d.lastErr.Store(err.Error())
		return true, err
	}
	d.lastErr.Store("")
	return true, nil
}

// Reload re-reads the configuration file and swaps it in for the next run.
// An invalid file keeps the current configuration.
func (d *Daemon) Reload(_ context.Context) error {
	if d.configPath == "" {
		return errors.New("no configuration file to reload")
	}
	next, err := d.load(d.configPath)
	if err != nil {
		return fmt.Errorf("failed to load new configuration: %w", err)
	}
	if err := next.EnsureDirectories(); err != nil {
		return err
	}

	prev := d.Config()
	if prev.Monitoring.Metrics != next.Monitoring.Metrics {
		d.logger.Warn("Metrics endpoint changes take effect after restart")
	}
	if d.sched != nil {
		if err := d.sched.Reschedule(next.Watch.IntervalDuration()); err != nil {
			return err
		}
	}

	d.mu.Lock()
	d.cfg = next
	d.mu.Unlock()
	d.logger.Info("Configuration reloaded", logfields.Count(len(next.Repositories)))
	return nil
}
