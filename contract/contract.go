//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/google/uuid"

	"collabhub/domain"
	"collabhub/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives one fanned-out event. Client connections, the disk
// writer and the search indexer all sit behind this interface.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Member pairs a live session with its transport sink. The registry hands
// out Member snapshots so the router never touches registry internals.
type Member struct {
	Session domain.Session
	Sink    EventSink
}

type IRegistry interface {
	Join(projectID domain.ProjectID, session domain.Session, sink EventSink)
	Leave(projectID domain.ProjectID, sessionID uuid.UUID)
	MembersOf(projectID domain.ProjectID) []Member
	Size() int
}

type IOrchestrator interface {
	RegisterSinks(sink ...EventSink)
	Dispatch(cmd domain.Command)
	RegisterSession(session domain.Session, sink EventSink)
	UnregisterSession(session domain.Session)
	Start(ctx context.Context) error
	Stop()
}

// Generator is the external AI collaborator: one prompt in, one result out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
