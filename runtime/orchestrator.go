// Package runtime handles command intake, event propagation and fan-out.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"collabhub/contract"
	"collabhub/domain"
	"collabhub/domain/event"
	"collabhub/moderation"
	"collabhub/repositories"
	"collabhub/runtime/workers"
	"collabhub/sink"
)

type Orchestrator struct {
	mu                sync.Mutex
	log               *slog.Logger
	numWorkers        int
	supervisor        contract.ISupervisor
	registry          contract.IRegistry
	moderator         moderation.Moderator
	invoker           workers.Invoker
	permanentSinks    []contract.EventSink
	commandShards     []chan domain.Command
	rawEvents         chan event.DomainEvent
	domainEvents      chan event.DomainEvent
	messageRepository repositories.IMessageRepository
	searchRepository  repositories.ISearchRepository
	deliveryTimeout   time.Duration
	telemetryInterval time.Duration
	started           bool
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, moderator moderation.Moderator,
	messageRepository repositories.IMessageRepository,
	searchRepository repositories.ISearchRepository,
	numWorkers, bufferSize int,
	deliveryTimeout, telemetryInterval time.Duration) *Orchestrator {
	if numWorkers < 1 {
		numWorkers = 1
	}
	shards := make([]chan domain.Command, numWorkers)
	for i := range shards {
		shards[i] = make(chan domain.Command, bufferSize)
	}
	return &Orchestrator{
		log:               log,
		numWorkers:        numWorkers,
		supervisor:        supervisor,
		registry:          registry,
		moderator:         moderator,
		commandShards:     shards,
		rawEvents:         make(chan event.DomainEvent, bufferSize),
		domainEvents:      make(chan event.DomainEvent, bufferSize),
		messageRepository: messageRepository,
		searchRepository:  searchRepository,
		deliveryTimeout:   deliveryTimeout,
		telemetryInterval: telemetryInterval,
	}
}

// SetInvoker wires the AI bridge in after construction; the bridge itself
// dispatches completions back through this orchestrator, so the two are
// built in sequence. Must be called before Start.
func (o *Orchestrator) SetInvoker(invoker workers.Invoker) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		o.log.Error("SetInvoker called after Start, ignored")
		return
	}
	o.invoker = invoker
}

// RegisterSinks adds permanent sinks that receive every routed event,
// regardless of channel membership.
func (o *Orchestrator) RegisterSinks(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// Dispatch enqueues a command for the worker pool. Commands are sharded by
// project so everything a project emits flows through a single pool unit in
// issue order. Intake never blocks the caller: when the shard buffer is
// saturated the command is dropped and logged.
func (o *Orchestrator) Dispatch(cmd domain.Command) {
	select {
	case o.shardFor(cmd.ProjectID()) <- cmd:
	default:
		o.log.Warn(fmt.Sprintf("Command shard full for project %s, dropping command", cmd.ProjectID()))
	}
}

func (o *Orchestrator) shardFor(projectID domain.ProjectID) chan domain.Command {
	h := fnv.New32a()
	h.Write([]byte(projectID))
	return o.commandShards[int(h.Sum32())%len(o.commandShards)]
}

// RegisterSession admits an authenticated session into its project channel
// and announces the arrival to the members already present.
func (o *Orchestrator) RegisterSession(session domain.Session, sessionSink contract.EventSink) {
	o.registry.Join(session.Project, session, sessionSink)
	o.Dispatch(domain.PostNoticeCommand{
		Project:   session.Project,
		Severity:  domain.SeveritySystem,
		Body:      fmt.Sprintf("%s joined the project", session.Identity),
		CreatedAt: time.Now().UTC(),
	})
}

// UnregisterSession removes the session from its channel. Called on every
// disconnect path; leaving twice is harmless.
func (o *Orchestrator) UnregisterSession(session domain.Session) {
	o.registry.Leave(session.Project, session.ID)
	o.Dispatch(domain.PostNoticeCommand{
		Project:   session.Project,
		Severity:  domain.SeveritySystem,
		Body:      fmt.Sprintf("%s left the project", session.Identity),
		CreatedAt: time.Now().UTC(),
	})
}

func (o *Orchestrator) GetMessages(projectID domain.ProjectID, cursor *string) ([]repositories.DiskMessage, *string, error) {
	return o.messageRepository.GetMessages(projectID, cursor)
}

func (o *Orchestrator) SearchMessages(ctx context.Context, projectID domain.ProjectID, terms string, limit int) ([]repositories.SearchHit, error) {
	return o.searchRepository.Search(ctx, projectID, terms, limit)
}

// Start assembles the pipeline and runs it under supervision:
// commands -> pool workers -> moderation -> router -> member sinks.
// The supervisor loop runs in its own goroutine; Start returns immediately.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()

	permanentSinks := []contract.EventSink{
		sink.NewDiskSink(o.messageRepository, o.log),
		sink.NewSearchSink(o.searchRepository, o.log),
	}
	permanentSinks = append(permanentSinks, o.permanentSinks...)
	o.permanentSinks = permanentSinks

	for _, shard := range o.commandShards {
		o.supervisor.Add(workers.NewPoolUnitWorker(shard, o.rawEvents, o.log))
	}
	o.supervisor.Add(workers.NewModerationWorker(o.moderator, o.invoker, o.rawEvents, o.domainEvents, o.log))
	o.supervisor.Add(workers.NewRouterWorker(o.log, o.registry, permanentSinks, o.domainEvents, o.deliveryTimeout))
	o.supervisor.Add(workers.NewTelemetryWorker(o.log, o.registry, o.telemetryInterval))

	o.started = true
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	go o.supervisor.Run(ctx)
	return nil
}

// Stop initiates a graceful shutdown of the orchestrator by cancelling the
// supervision context; workers drain on their own.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
