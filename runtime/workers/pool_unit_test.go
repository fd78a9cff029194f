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
)

func TestPoolUnitWorker_Converts_Message_Command(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	commands := make(chan domain.Command, 1)
	events := make(chan event.DomainEvent, 1)

	worker := NewPoolUnitWorker(commands, events, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	at := time.Now().UTC()
	commands <- domain.PostMessageCommand{
		Project:   "alpha",
		Sender:    "alice",
		Body:      "hello there",
		CreatedAt: at,
	}

	select {
	case evt := <-events:
		posted, ok := evt.(event.MessagePosted)
		req.True(ok)
		req.NotEqual(uuid.Nil, posted.ID)
		req.Equal(domain.ProjectID("alpha"), posted.Project)
		req.Equal(domain.Identity("alice"), posted.Sender)
		req.Equal("hello there", posted.Body)
		req.Equal(at, posted.At)
	case <-time.After(1 * time.Second):
		req.Fail("No event received at time")
	}
}

func TestPoolUnitWorker_Converts_Notice_Commands(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	commands := make(chan domain.Command, 2)
	events := make(chan event.DomainEvent, 2)

	worker := NewPoolUnitWorker(commands, events, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	correlationID := uuid.New()
	commands <- domain.PostNoticeCommand{
		Project:  "alpha",
		Severity: domain.SeveritySystem,
		Body:     "alice joined the channel",
	}
	commands <- domain.PostNoticeCommand{
		Project:       "alpha",
		Severity:      domain.SeverityError,
		Code:          "GENERATION_ERROR",
		Body:          "the assistant could not answer",
		CorrelationID: correlationID,
	}

	first := <-events
	notice, ok := first.(event.SystemNotice)
	req.True(ok)
	req.Equal("alice joined the channel", notice.Body)

	second := <-events
	failure, ok := second.(event.ErrorNotice)
	req.True(ok)
	req.Equal("GENERATION_ERROR", failure.Code)
	req.Equal(correlationID, failure.CorrelationID)
}

func TestPoolUnitWorker_Stops_On_Closed_Channel(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	commands := make(chan domain.Command)
	events := make(chan event.DomainEvent, 1)

	worker := NewPoolUnitWorker(commands, events, log)

	done := make(chan error, 1)
	go func() {
		done <- worker.Run(context.Background())
	}()

	close(commands)

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(1 * time.Second):
		req.Fail("Worker did not stop at time")
	}
}
