package sink

import (
	"context"
	"log/slog"

	"collabhub/domain/event"
	"collabhub/repositories"
)

// SearchSink feeds delivered chat messages into the full-text index.
type SearchSink struct {
	repository repositories.ISearchRepository
	log        *slog.Logger
}

func NewSearchSink(repository repositories.ISearchRepository, log *slog.Logger) SearchSink {
	return SearchSink{repository: repository, log: log}
}

func (s SearchSink) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.ChatMessage)
	if !ok {
		return nil
	}
	return s.repository.Index(toDiskMessage(evt))
}
