package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Scheduler wraps a gocron scheduler holding the single periodic run job.
type Scheduler struct {
	scheduler gocron.Scheduler
	jobID     uuid.UUID
	interval  time.Duration
	task      func()
	logger    *slog.Logger
}

// NewScheduler creates a scheduler that will call task every interval.
func NewScheduler(task func(), logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{scheduler: s, task: task, logger: logger}, nil
}

// Schedule registers the run job, first firing immediately. A running job is
// never started twice; missed ticks are dropped.
func (s *Scheduler) Schedule(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", interval)
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.task),
		gocron.WithName("pivot-run"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create periodic run job: %w", err)
	}
	s.jobID = job.ID()
	s.interval = interval
	s.logger.Info("Scheduled periodic run", slog.Duration("interval", interval))
	return nil
}

// Reschedule changes the interval of the run job. The next run happens after
// the new interval.
func (s *Scheduler) Reschedule(interval time.Duration) error {
	if interval == s.interval {
		return nil
	}
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", interval)
	}
	if _, err := s.scheduler.Update(s.jobID,
		gocron.DurationJob(interval),
		gocron.NewTask(s.task),
		gocron.WithName("pivot-run"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return fmt.Errorf("failed to reschedule run job: %w", err)
	}
	s.logger.Info("Rescheduled periodic run", slog.Duration("from", s.interval), slog.Duration("to", interval))
	s.interval = interval
	return nil
}

// Interval returns the current run interval.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop waits for a running job and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}
