// Package services holds the thin orchestration between the store and
// its optional collaborators.
package services

import (
	"context"
	"log/slog"

	"pocket/internal/amqp"
)

// EventPublisher announces applied mutations on AMQP so external
// consumers (the mirror worker) can react. Publishing is best-effort: a
// broker outage must never fail the mutation that already succeeded.
type EventPublisher struct {
	client *amqp.Client
}

// NewEventPublisher wraps the AMQP client; a nil client disables
// publishing entirely.
func NewEventPublisher(client *amqp.Client) *EventPublisher {
	return &EventPublisher{client: client}
}

// Publish emits one mutation event. Failures are logged and swallowed.
func (p *EventPublisher) Publish(ctx context.Context, entity, op, id string) {
	if p == nil || p.client == nil {
		return
	}
	msg := amqp.NewMutationMessage(entity, op, id)
	if err := p.client.PublishMutation(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish mutation event",
			"entity", entity,
			"op", op,
			"id", id,
			"error", err)
	}
}

// Close releases the underlying AMQP connection.
func (p *EventPublisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
