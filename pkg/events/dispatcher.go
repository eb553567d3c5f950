package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/eventbus"
	"github.com/taskdesk/taskdesk/pkg/metrics"
	"github.com/taskdesk/taskdesk/pkg/model"
)

// Notifier turns an event into notification records.
type Notifier interface {
	Route(ctx context.Context, ev Event) ([]model.Notification, error)
}

// Auditor appends an audit entry for an event.
type Auditor interface {
	HandleEvent(ctx context.Context, ev Event)
}

// Publisher pushes an event onto a pub/sub channel for live listeners.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Outbox records an event for the relay to drain.
type Outbox interface {
	Append(ctx context.Context, ev Event) error
}

// Dispatcher fans domain events out to its consumers after the primary
// transaction has committed. Every consumer is best-effort: a failure is
// logged and swallowed, never propagated to the caller. Lost side effects
// are an accepted failure mode; a rolled-back primary mutation is not.
type Dispatcher struct {
	notifier Notifier
	auditor  Auditor
	bus      Publisher
	outbox   Outbox
	logger   *zap.Logger
}

func NewDispatcher(notifier Notifier, auditor Auditor, bus Publisher, outbox Outbox, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, auditor: auditor, bus: bus, outbox: outbox, logger: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, evts ...Event) {
	for _, ev := range evts {
		metrics.EventsDispatchedTotal.WithLabelValues(string(ev.Type)).Inc()

		if d.notifier != nil {
			if _, err := d.notifier.Route(ctx, ev); err != nil {
				d.logger.Warn("notification routing failed",
					zap.String("event", string(ev.Type)), zap.Error(err))
			}
		}
		if d.auditor != nil {
			d.auditor.HandleEvent(ctx, ev)
		}
		if d.bus != nil {
			if err := d.bus.Publish(ctx, ev); err != nil {
				d.logger.Warn("event publish failed",
					zap.String("event", string(ev.Type)), zap.Error(err))
			}
		}
		if d.outbox != nil {
			if err := d.outbox.Append(ctx, ev); err != nil {
				d.logger.Warn("outbox append failed",
					zap.String("event", string(ev.Type)), zap.Error(err))
			}
		}
	}
}

// BusPublisher adapts the redis bus to the Publisher interface.
type BusPublisher struct {
	bus *eventbus.Bus
}

func NewBusPublisher(bus *eventbus.Bus) *BusPublisher {
	return &BusPublisher{bus: bus}
}

func (p *BusPublisher) Publish(ctx context.Context, ev Event) error {
	env, err := eventbus.NewEnvelope(string(ev.Type), ev)
	if err != nil {
		return err
	}
	return p.bus.Publish(ctx, eventbus.ChannelWorkflow, env)
}
