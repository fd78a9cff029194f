package ai

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"collabhub/contract"
	"collabhub/domain"
	"collabhub/errors"
)

// InvocationState tracks one assistant request through its lifecycle:
// Requested -> Dispatched -> Completed | Failed. Both end states are terminal.
type InvocationState string

const (
	StateRequested  InvocationState = "requested"
	StateDispatched InvocationState = "dispatched"
	StateCompleted  InvocationState = "completed"
	StateFailed     InvocationState = "failed"
)

// Ticket correlates an in-flight generation with the channel that should
// receive its eventual result.
type Ticket struct {
	CorrelationID uuid.UUID
	Project       domain.ProjectID
	Requester     domain.Identity
	Prompt        string
	State         InvocationState
	CreatedAt     time.Time
}

// Dispatcher re-injects bridge completions into the message pipeline.
type Dispatcher interface {
	Dispatch(cmd domain.Command)
}

// Bridge mediates asynchronous calls to the generation collaborator.
// Invoke never blocks on the upstream: the call runs in its own goroutine
// under a bounded timeout, and its outcome re-enters the originating
// project's channel as a system message or an error notice. No automatic
// retry; a fresh prompt is a new, independent invocation.
type Bridge struct {
	mu         sync.Mutex
	log        *slog.Logger
	generator  contract.Generator
	dispatcher Dispatcher
	timeout    time.Duration
	inflight   map[uuid.UUID]*Ticket
	wg         sync.WaitGroup
}

func NewBridge(log *slog.Logger, generator contract.Generator, dispatcher Dispatcher, timeout time.Duration) *Bridge {
	return &Bridge{
		log:        log,
		generator:  generator,
		dispatcher: dispatcher,
		timeout:    timeout,
		inflight:   make(map[uuid.UUID]*Ticket),
	}
}

// Invoke validates the prompt and starts the asynchronous generation.
// An empty prompt fails fast with ErrEmptyPrompt and never contacts the
// upstream. The returned correlation id identifies the invocation in the
// delivered result or failure notice.
func (b *Bridge) Invoke(projectID domain.ProjectID, requester domain.Identity, prompt string) (uuid.UUID, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return uuid.Nil, errors.ErrEmptyPrompt
	}

	ticket := &Ticket{
		CorrelationID: uuid.New(),
		Project:       projectID,
		Requester:     requester,
		Prompt:        prompt,
		State:         StateRequested,
		CreatedAt:     time.Now().UTC(),
	}

	b.mu.Lock()
	b.inflight[ticket.CorrelationID] = ticket
	b.mu.Unlock()

	b.wg.Add(1)
	go b.dispatch(ticket)

	return ticket.CorrelationID, nil
}

// State reports the lifecycle state of an invocation still in flight. A
// ticket is destroyed the moment its result or failure notice re-enters the
// pipeline, so an unknown id means never invoked or already settled.
func (b *Bridge) State(correlationID uuid.UUID) (InvocationState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.inflight[correlationID]
	if !ok {
		return "", false
	}
	return t.State, true
}

// Wait blocks until every in-flight invocation reached a terminal state.
// Used on shutdown so pending results are either delivered or reported.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

// dispatch runs the upstream call. It deliberately detaches from the
// requester's connection context: a disconnect cancels nothing, the result
// is still routed and the router drops it if the channel emptied meanwhile.
func (b *Bridge) dispatch(ticket *Ticket) {
	defer b.wg.Done()
	defer b.forget(ticket.CorrelationID)

	b.setState(ticket, StateDispatched)

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	started := time.Now()
	result, err := b.generator.Generate(ctx, ticket.Prompt)
	elapsed := time.Since(started)

	if err != nil {
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = errors.ErrGenerationTimeout
		}
		b.setState(ticket, StateFailed)
		b.log.Warn("Generation failed",
			"correlation_id", ticket.CorrelationID,
			"project_id", ticket.Project,
			"elapsed", elapsed,
			"error", err)
		b.dispatcher.Dispatch(domain.PostNoticeCommand{
			Project:       ticket.Project,
			Severity:      domain.SeverityError,
			Code:          "GENERATION_ERROR",
			Body:          "The assistant could not answer: " + err.Error(),
			CreatedAt:     time.Now().UTC(),
			CorrelationID: ticket.CorrelationID,
		})
		return
	}

	b.setState(ticket, StateCompleted)
	b.log.Info("Generation completed",
		"correlation_id", ticket.CorrelationID,
		"project_id", ticket.Project,
		"elapsed", elapsed)
	b.dispatcher.Dispatch(domain.PostMessageCommand{
		Project:       ticket.Project,
		Sender:        domain.SystemIdentity,
		Body:          result,
		CreatedAt:     time.Now().UTC(),
		CorrelationID: ticket.CorrelationID,
	})
}

func (b *Bridge) setState(ticket *Ticket, state InvocationState) {
	b.mu.Lock()
	ticket.State = state
	b.mu.Unlock()
}

func (b *Bridge) forget(correlationID uuid.UUID) {
	b.mu.Lock()
	delete(b.inflight, correlationID)
	b.mu.Unlock()
}
