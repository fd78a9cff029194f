package ai

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"collabhub/domain"
	"collabhub/errors"
	"collabhub/mocks"
)

// capturingDispatcher records every re-injected command.
type capturingDispatcher struct {
	commands chan domain.Command
}

func newCapturingDispatcher() *capturingDispatcher {
	return &capturingDispatcher{commands: make(chan domain.Command, 8)}
}

func (d *capturingDispatcher) Dispatch(cmd domain.Command) {
	d.commands <- cmd
}

func (d *capturingDispatcher) next(t *testing.T) domain.Command {
	t.Helper()
	select {
	case cmd := <-d.commands:
		return cmd
	case <-time.After(1 * time.Second):
		t.Fatal("No command dispatched at time")
		return nil
	}
}

func TestBridge_Empty_Prompt_Fails_Fast(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	generator := mocks.NewMockGenerator(ctrl)
	// The upstream must never be contacted
	generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Times(0)

	bridge := NewBridge(log, generator, newCapturingDispatcher(), 1*time.Second)

	for _, prompt := range []string{"", "   ", "\t\n"} {
		correlationID, err := bridge.Invoke("alpha", "alice", prompt)
		req.ErrorIs(err, errors.ErrEmptyPrompt)
		req.Equal(uuid.Nil, correlationID)
	}
}

func TestBridge_Success_Reenters_As_System_Message(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	generator := mocks.NewMockGenerator(ctrl)
	generator.EXPECT().
		Generate(gomock.Any(), "summarize the meeting").
		Return("Here is the summary.", nil).
		Times(1)

	dispatcher := newCapturingDispatcher()
	bridge := NewBridge(log, generator, dispatcher, 1*time.Second)

	correlationID, err := bridge.Invoke("alpha", "alice", "summarize the meeting")
	req.NoError(err)
	req.NotEqual(uuid.Nil, correlationID)

	cmd := dispatcher.next(t)
	message, ok := cmd.(domain.PostMessageCommand)
	req.True(ok)
	req.Equal(domain.ProjectID("alpha"), message.Project)
	req.Equal(domain.SystemIdentity, message.Sender)
	req.Equal("Here is the summary.", message.Body)
	req.Equal(correlationID, message.CorrelationID)

	// The ticket is destroyed once the result re-entered the pipeline
	bridge.Wait()
	_, known := bridge.State(correlationID)
	req.False(known)
}

func TestBridge_Failure_Reenters_As_Error_Notice(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	generator := mocks.NewMockGenerator(ctrl)
	generator.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return("", errors.ErrGenerationFailed).
		Times(1)

	dispatcher := newCapturingDispatcher()
	bridge := NewBridge(log, generator, dispatcher, 1*time.Second)

	correlationID, err := bridge.Invoke("alpha", "alice", "summarize the meeting")
	req.NoError(err)

	cmd := dispatcher.next(t)
	notice, ok := cmd.(domain.PostNoticeCommand)
	req.True(ok)
	req.Equal(domain.SeverityError, notice.Severity)
	req.Equal("GENERATION_ERROR", notice.Code)
	req.Equal(correlationID, notice.CorrelationID)
	req.NotEmpty(notice.Body)

	// Reporting the failure destroys the ticket too
	bridge.Wait()
	_, known := bridge.State(correlationID)
	req.False(known)
}

func TestBridge_Timeout_Is_Reported_As_Failure(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	generator := mocks.NewMockGenerator(ctrl)
	generator.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, prompt string) (string, error) {
			<-ctx.Done() // Waiting for the bridge timeout
			return "", ctx.Err()
		}).
		Times(1)

	dispatcher := newCapturingDispatcher()
	bridge := NewBridge(log, generator, dispatcher, 20*time.Millisecond)

	correlationID, err := bridge.Invoke("alpha", "alice", "summarize the meeting")
	req.NoError(err)

	// The ticket is tracked while the invocation is in flight
	_, known := bridge.State(correlationID)
	req.True(known)

	cmd := dispatcher.next(t)
	notice, ok := cmd.(domain.PostNoticeCommand)
	req.True(ok)
	req.Equal("GENERATION_ERROR", notice.Code)
	req.Contains(notice.Body, errors.ErrGenerationTimeout.Error())

	bridge.Wait()
	_, known = bridge.State(correlationID)
	req.False(known)
}

func TestBridge_Settled_Tickets_Are_Not_Retained(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	generator := mocks.NewMockGenerator(ctrl)
	generator.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return("ok", nil).
		Times(1000)

	dispatcher := &capturingDispatcher{commands: make(chan domain.Command, 1000)}
	bridge := NewBridge(log, generator, dispatcher, 1*time.Second)
	for i := 0; i < 1000; i++ {
		_, err := bridge.Invoke("alpha", "alice", "ping")
		req.NoError(err)
	}

	bridge.Wait()
	req.Len(dispatcher.commands, 1000)

	bridge.mu.Lock()
	tracked := len(bridge.inflight)
	bridge.mu.Unlock()
	req.Zero(tracked)
}

func TestBridge_Concurrent_Invocations_Are_Independent(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	generator := mocks.NewMockGenerator(ctrl)
	generator.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, prompt string) (string, error) {
			return "answer to " + prompt, nil
		}).
		Times(3)

	dispatcher := newCapturingDispatcher()
	bridge := NewBridge(log, generator, dispatcher, 1*time.Second)

	ids := make(map[uuid.UUID]struct{})
	for _, prompt := range []string{"one", "two", "three"} {
		correlationID, err := bridge.Invoke("alpha", "alice", prompt)
		req.NoError(err)
		ids[correlationID] = struct{}{}
	}
	req.Len(ids, 3)

	bridge.Wait()
	for i := 0; i < 3; i++ {
		cmd := dispatcher.next(t)
		message, ok := cmd.(domain.PostMessageCommand)
		req.True(ok)
		req.Contains(ids, message.CorrelationID)
	}
}
