package ws

import (
	"context"

	"collabhub/domain/event"
)

// Sink buffers routed events for one connected session. The router calls
// Consume under its delivery timeout; a client that cannot drain its buffer
// within that window reports a delivery failure and gets evicted.
type Sink struct {
	Events chan event.DomainEvent
}

func NewSink(bufferSize int) *Sink {
	return &Sink{Events: make(chan event.DomainEvent, bufferSize)}
}

// Consume is called by the router during fan-out.
// It hands the event to the write loop that owns the connection.
func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
