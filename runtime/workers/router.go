package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"collabhub/contract"
	"collabhub/domain/event"
	"collabhub/errors"
)

var _ contract.Worker = (*RouterWorker)(nil)

// RouterWorker fans each sanitized event out to the members of its project
// channel plus the permanent sinks (persistence, search index).
//
// A single router goroutine drains one FIFO event channel, so messages from
// the same sender reach every member in the order they were issued. Delivery
// is fire-and-forget per member: one unreachable transport is logged, the
// offending session is evicted, and the remaining members still receive the
// event. Routing to an empty channel is a no-op, not an error.
type RouterWorker struct {
	log             *slog.Logger
	registry        contract.IRegistry
	permanentSinks  []contract.EventSink
	events          chan event.DomainEvent
	deliveryTimeout time.Duration
}

func NewRouterWorker(log *slog.Logger, registry contract.IRegistry,
	permanentSinks []contract.EventSink, events chan event.DomainEvent,
	deliveryTimeout time.Duration) *RouterWorker {
	return &RouterWorker{
		log:             log,
		registry:        registry,
		permanentSinks:  permanentSinks,
		events:          events,
		deliveryTimeout: deliveryTimeout,
	}
}

func (w *RouterWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping router")
			return ctx.Err()
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			w.Route(ctx, evt)
		}
	}
}

// Route delivers one event to the membership snapshot taken now. Members
// joining after the snapshot do not receive it; members who left before do
// not either.
func (w *RouterWorker) Route(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.permanentSinks {
		if err := sink.Consume(ctx, evt); err != nil {
			w.log.Error("Permanent sink rejected event",
				"project_id", evt.ProjectID(), "error", err)
		}
	}

	members := w.registry.MembersOf(evt.ProjectID())
	if len(members) == 0 {
		if m, ok := evt.(event.ChatMessage); ok && m.Sender.IsSystem() {
			// Late assistant result for a channel everyone left.
			w.log.Info("Dropping result for empty channel",
				"project_id", m.Project,
				"correlation_id", m.CorrelationID)
		}
		return
	}

	for _, member := range members {
		w.deliver(ctx, member, evt)
	}
}

func (w *RouterWorker) deliver(ctx context.Context, member contract.Member, evt event.DomainEvent) {
	deliveryCtx, cancel := context.WithTimeout(ctx, w.deliveryTimeout)
	defer cancel()

	if err := member.Sink.Consume(deliveryCtx, evt); err != nil {
		w.log.Warn("Member delivery failed, evicting session",
			"project_id", evt.ProjectID(),
			"session_id", member.Session.ID,
			"identity", member.Session.Identity,
			"error", fmt.Errorf("%w: %w", errors.ErrDeliveryFailure, err))
		w.registry.Leave(member.Session.Project, member.Session.ID)
	}
}
