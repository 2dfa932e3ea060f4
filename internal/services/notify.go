package services

import (
	"context"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

// ChangeNotifier is told after every committed write which summaries it
// may have affected.
type ChangeNotifier interface {
	PeriodChanged(ctx context.Context, p core.Period, reason string)
	AllChanged(ctx context.Context, reason string)
}

// Notifiers fans a change out to every member.
type Notifiers []ChangeNotifier

func (n Notifiers) PeriodChanged(ctx context.Context, p core.Period, reason string) {
	for _, c := range n {
		if c != nil {
			c.PeriodChanged(ctx, p, reason)
		}
	}
}

func (n Notifiers) AllChanged(ctx context.Context, reason string) {
	for _, c := range n {
		if c != nil {
			c.AllChanged(ctx, reason)
		}
	}
}

// EventPublisher is implemented by amqp.Client.
type EventPublisher interface {
	PublishPeriodChanged(ctx context.Context, year, month int, reason string) error
	PublishAllChanged(ctx context.Context, reason string) error
}

// EventNotifier forwards changes to a message broker. Publish failures are
// logged and swallowed: the write has already been committed.
type EventNotifier struct {
	publisher EventPublisher
}

func NewEventNotifier(publisher EventPublisher) *EventNotifier {
	return &EventNotifier{publisher: publisher}
}

func (n *EventNotifier) PeriodChanged(ctx context.Context, p core.Period, reason string) {
	if n == nil || n.publisher == nil {
		return
	}
	if err := n.publisher.PublishPeriodChanged(ctx, p.Year, p.Month, reason); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentAMQP).ErrorContext(ctx, "Failed to publish period changed event",
			log.NewFields().WithPeriod(p.Key()).WithOperation(log.OpPublish).WithError(err).ToSlice()...)
	}
}

func (n *EventNotifier) AllChanged(ctx context.Context, reason string) {
	if n == nil || n.publisher == nil {
		return
	}
	if err := n.publisher.PublishAllChanged(ctx, reason); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentAMQP).ErrorContext(ctx, "Failed to publish all changed event",
			log.FieldReason, reason, log.FieldError, err.Error())
	}
}
