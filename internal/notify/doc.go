// Package notify hands repository plans to the translation stage.
//
// Plans are published as PlanReady JSON messages on a NATS subject, optionally
// through JetStream. Without a NATS URL the LogPublisher only logs them.
package notify
