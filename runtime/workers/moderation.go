package workers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"

	"collabhub/domain"
	"collabhub/domain/event"
	"collabhub/moderation"
)

// AssistantMention marks a chat message as a prompt for the assistant.
const AssistantMention = "@ai"

// Invoker hands a prompt to the AI invocation bridge.
type Invoker interface {
	Invoke(projectID domain.ProjectID, requester domain.Identity, prompt string) (uuid.UUID, error)
}

// ModerationWorker sits between raw and deliverable events. It censors
// blocked words, tags the detected language, and hands assistant mentions
// to the bridge. Notices pass through untouched.
type ModerationWorker struct {
	moderator moderation.Moderator
	invoker   Invoker
	rawEvents chan event.DomainEvent
	events    chan event.DomainEvent
	log       *slog.Logger
}

func NewModerationWorker(moderator moderation.Moderator, invoker Invoker,
	rawEvents, events chan event.DomainEvent, log *slog.Logger) *ModerationWorker {
	return &ModerationWorker{
		moderator: moderator,
		invoker:   invoker,
		rawEvents: rawEvents,
		events:    events,
		log:       log,
	}
}

func (w ModerationWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case e, ok := <-w.rawEvents:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			out := e
			if posted, isMessage := e.(event.MessagePosted); isMessage {
				out = w.toChatMessage(posted)
			}
			select {
			case <-ctx.Done():
				w.log.Debug("Stopping worker")
				return ctx.Err()
			case w.events <- out:
			}
		}
	}
}

func (w ModerationWorker) toChatMessage(evt event.MessagePosted) event.ChatMessage {
	info := whatlanggo.Detect(evt.Body)
	langCode := info.Lang.Iso6391()

	sanitized, foundWords := w.moderator.Censor(evt.Body)
	if len(foundWords) > 0 {
		w.log.Info("Message censored",
			"project_id", evt.Project,
			"sender", evt.Sender,
			"words", len(foundWords))
	}

	w.maybeInvokeAssistant(evt)

	return event.ChatMessage{
		ID:            evt.ID,
		Project:       evt.Project,
		Sender:        evt.Sender,
		Body:          sanitized,
		Lang:          langCode,
		CensoredWords: foundWords,
		At:            evt.At,
		CorrelationID: evt.CorrelationID,
	}
}

// maybeInvokeAssistant dispatches the prompt behind an "@ai" mention.
// System-originated messages are skipped so a generated reply can never
// trigger a second invocation.
func (w ModerationWorker) maybeInvokeAssistant(evt event.MessagePosted) {
	if w.invoker == nil || evt.Sender.IsSystem() {
		return
	}
	if !strings.HasPrefix(evt.Body, AssistantMention) {
		return
	}

	prompt := strings.TrimSpace(strings.TrimPrefix(evt.Body, AssistantMention))
	correlationID, err := w.invoker.Invoke(evt.Project, evt.Sender, prompt)
	if err != nil {
		w.log.Warn("Assistant invocation rejected",
			"project_id", evt.Project,
			"sender", evt.Sender,
			"error", err)
		return
	}
	w.log.Debug("Assistant invoked",
		"project_id", evt.Project,
		"correlation_id", correlationID)
}
