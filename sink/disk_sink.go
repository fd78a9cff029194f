package sink

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"collabhub/domain/event"
	"collabhub/repositories"
)

// DiskSink persists every delivered chat message. Notices are transient and
// skipped.
type DiskSink struct {
	repository repositories.IMessageRepository
	log        *slog.Logger
}

func NewDiskSink(repository repositories.IMessageRepository, log *slog.Logger) DiskSink {
	return DiskSink{repository: repository, log: log}
}

func (d DiskSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.ChatMessage:
		return d.repository.StoreMessage(toDiskMessage(evt))
	default:
		return nil
	}
}

func toDiskMessage(evt event.ChatMessage) repositories.DiskMessage {
	message := repositories.DiskMessage{
		ID:      evt.ID,
		Project: evt.Project.String(),
		Sender:  evt.Sender.String(),
		Body:    evt.Body,
		Lang:    evt.Lang,
		At:      evt.At,
	}
	if evt.CorrelationID != uuid.Nil {
		message.CorrelationID = evt.CorrelationID.String()
	}
	return message
}
