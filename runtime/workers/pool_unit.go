package workers

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"collabhub/contract"
	"collabhub/domain"
	"collabhub/domain/event"
)

// Ensure *PoolUnitWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*PoolUnitWorker)(nil)

// PoolUnitWorker converts inbound commands into raw events. Each unit drains
// its own command shard, so all commands of a project are converted by one
// goroutine in issue order and per-sender ordering survives the pool.
type PoolUnitWorker struct {
	commands chan domain.Command
	events   chan event.DomainEvent
	log      *slog.Logger
}

func NewPoolUnitWorker(
	commands chan domain.Command,
	events chan event.DomainEvent,
	log *slog.Logger) *PoolUnitWorker {
	return &PoolUnitWorker{
		commands: commands,
		events:   events,
		log:      log,
	}
}

func (w *PoolUnitWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			evt := toEvent(cmd)
			if evt == nil {
				w.log.Warn("Unknown command dropped", "project_id", cmd.ProjectID())
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case w.events <- evt:
			}
		}
	}
}

func toEvent(cmd domain.Command) event.DomainEvent {
	switch c := cmd.(type) {
	case domain.PostMessageCommand:
		return event.MessagePosted{
			ID:            uuid.New(),
			Project:       c.Project,
			Sender:        c.Sender,
			Body:          c.Body,
			At:            c.CreatedAt,
			CorrelationID: c.CorrelationID,
		}
	case domain.PostNoticeCommand:
		if c.Severity == domain.SeverityError {
			return event.ErrorNotice{
				Project:       c.Project,
				Code:          c.Code,
				Body:          c.Body,
				At:            c.CreatedAt,
				CorrelationID: c.CorrelationID,
			}
		}
		return event.SystemNotice{
			Project: c.Project,
			Body:    c.Body,
			At:      c.CreatedAt,
		}
	default:
		return nil
	}
}
