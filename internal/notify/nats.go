package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/pivot/internal/config"
	"git.home.luguber.info/inful/pivot/internal/foundation/errors"
	"git.home.luguber.info/inful/pivot/internal/logfields"
)

const publishTimeout = 5 * time.Second

// NATSPublisher publishes plans on a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream // nil for core NATS
	subject string
	logger  *slog.Logger
}

// NewNATSPublisher connects to cfg.NATSURL. With JetStream enabled the
// configured stream is created or updated to capture the subject.
func NewNATSPublisher(cfg config.NotifyConfig, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("pivot"),
		nats.Timeout(publishTimeout),
		nats.MaxReconnects(5),
	)
	if err != nil {
		return nil, errors.NotifyError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", cfg.NATSURL).
			Build()
	}
	p := &NATSPublisher{conn: conn, subject: cfg.Subject, logger: logger}

	if cfg.JetStream {
		js, err := jetstream.New(conn)
		if err != nil {
			conn.Close()
			return nil, errors.NotifyError("failed to create JetStream context").WithCause(err).Build()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:        cfg.Stream,
			Description: "Documentation plans awaiting translation",
			Subjects:    []string{cfg.Subject},
			Duplicates:  time.Hour,
		})
		if err != nil {
			conn.Close()
			return nil, errors.NotifyError("failed to initialize JetStream stream").
				WithCause(err).
				WithContext("stream", cfg.Stream).
				Build()
		}
		p.js = js
	}

	logger.Info("NATS publisher initialized",
		logfields.URL(cfg.NATSURL),
		slog.String("subject", cfg.Subject),
		slog.Bool("jetstream", cfg.JetStream))
	return p, nil
}

// Publish sends msg as JSON. JetStream publishes carry msg.MessageID for de-duplication.
func (p *NATSPublisher) Publish(ctx context.Context, msg PlanReady) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.NotifyError("failed to marshal plan message").WithCause(err).Build()
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if p.js != nil {
		_, err = p.js.Publish(ctx, p.subject, data, jetstream.WithMsgID(msg.MessageID()))
	} else if err = p.conn.Publish(p.subject, data); err == nil {
		err = p.conn.FlushWithContext(ctx)
	}
	if err != nil {
		return errors.NotifyError("failed to publish plan").
			WithCause(err).
			WithContext("subject", p.subject).
			WithContext("repository", msg.Repository).
			Build()
	}

	p.logger.Debug("Published plan",
		logfields.RunID(msg.RunID),
		logfields.Repository(msg.Repository),
		logfields.Commit(msg.HeadCommit),
		logfields.Count(len(msg.PendingFiles)))
	return nil
}

// Target returns the subject plans are published on.
func (p *NATSPublisher) Target() string { return "nats:" + p.subject }

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
