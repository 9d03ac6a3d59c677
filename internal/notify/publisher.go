package notify

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/pivot/internal/config"
	"git.home.luguber.info/inful/pivot/internal/logfields"
)

// Publisher delivers plans to the translation stage.
type Publisher interface {
	Publish(ctx context.Context, msg PlanReady) error
	// Target names the destination for logs and the run ledger.
	Target() string
	Close() error
}

// New returns a NATSPublisher when cfg enables NATS, otherwise a LogPublisher.
func New(cfg config.NotifyConfig, logger *slog.Logger) (Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled() {
		return NewLogPublisher(logger), nil
	}
	return NewNATSPublisher(cfg, logger)
}

// LogPublisher logs each plan instead of sending it anywhere.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, msg PlanReady) error {
	p.logger.Info("Plan ready for translation",
		logfields.RunID(msg.RunID),
		logfields.Repository(msg.Repository),
		logfields.Commit(msg.HeadCommit),
		logfields.Count(len(msg.PendingFiles)),
		slog.Any("files", msg.PendingFiles))
	return nil
}

func (p *LogPublisher) Target() string { return "log" }
func (p *LogPublisher) Close() error   { return nil }
