package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"collabhub/domain"
	"collabhub/domain/event"
	"collabhub/moderation"
)

type recordingInvoker struct {
	prompts []string
}

func (r *recordingInvoker) Invoke(projectID domain.ProjectID, requester domain.Identity, prompt string) (uuid.UUID, error) {
	r.prompts = append(r.prompts, prompt)
	return uuid.New(), nil
}

func newTestModerationWorker(t *testing.T, invoker Invoker) (*ModerationWorker, chan event.DomainEvent, chan event.DomainEvent) {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	mod, err := moderation.NewModerator([]string{"badger"}, '*')
	req.NoError(err)

	rawEvents := make(chan event.DomainEvent, 1)
	events := make(chan event.DomainEvent, 1)
	worker := NewModerationWorker(mod, invoker, rawEvents, events, log)
	return worker, rawEvents, events
}

func receiveChatMessage(t *testing.T, events chan event.DomainEvent) event.ChatMessage {
	t.Helper()
	select {
	case evt := <-events:
		message, ok := evt.(event.ChatMessage)
		require.True(t, ok)
		return message
	case <-time.After(1 * time.Second):
		t.Fatal("No event received at time")
		return event.ChatMessage{}
	}
}

func TestModerationWorker_Censors_And_Tags_Language(t *testing.T) {
	req := require.New(t)
	worker, rawEvents, events := newTestModerationWorker(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	rawEvents <- event.MessagePosted{
		ID:      uuid.New(),
		Project: "alpha",
		Sender:  "alice",
		Body:    "this badger speaks english fluently",
		At:      time.Now().UTC(),
	}

	message := receiveChatMessage(t, events)
	req.Equal("this ****** speaks english fluently", message.Body)
	req.Equal([]string{"badger"}, message.CensoredWords)
	req.Equal("en", message.Lang)
}

func TestModerationWorker_Passes_Notices_Through(t *testing.T) {
	req := require.New(t)
	worker, rawEvents, events := newTestModerationWorker(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	notice := event.SystemNotice{Project: "alpha", Body: "alice joined the channel"}
	rawEvents <- notice

	select {
	case evt := <-events:
		req.Equal(notice, evt)
	case <-time.After(1 * time.Second):
		req.Fail("No event received at time")
	}
}

func TestModerationWorker_Invokes_Assistant_On_Mention(t *testing.T) {
	req := require.New(t)
	invoker := &recordingInvoker{}
	worker, rawEvents, events := newTestModerationWorker(t, invoker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	rawEvents <- event.MessagePosted{
		ID:      uuid.New(),
		Project: "alpha",
		Sender:  "alice",
		Body:    "@ai summarize the last meeting",
		At:      time.Now().UTC(),
	}

	message := receiveChatMessage(t, events)
	// The mention itself is still delivered to the channel
	req.Equal("@ai summarize the last meeting", message.Body)
	req.Equal([]string{"summarize the last meeting"}, invoker.prompts)
}

func TestModerationWorker_Skips_Mention_From_System_Sender(t *testing.T) {
	req := require.New(t)
	invoker := &recordingInvoker{}
	worker, rawEvents, events := newTestModerationWorker(t, invoker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	// A generated reply quoting the mention must not trigger a new invocation
	rawEvents <- event.MessagePosted{
		ID:      uuid.New(),
		Project: "alpha",
		Sender:  domain.SystemIdentity,
		Body:    "@ai is the way to summon me",
		At:      time.Now().UTC(),
	}

	receiveChatMessage(t, events)
	req.Empty(invoker.prompts)
}
