//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"strings"

	"collabhub/contract"
	"collabhub/domain"
	"collabhub/errors"
	"collabhub/repositories"
)

type IChatService interface {
	PostMessage(ctx context.Context, cmd domain.PostMessageCommand) error
	GetMessages(projectID domain.ProjectID, cursor *string) ([]repositories.DiskMessage, *string, error)
	SearchMessages(ctx context.Context, projectID domain.ProjectID, terms string, limit int) ([]repositories.SearchHit, error)
	Join(session domain.Session, sink contract.EventSink)
	Leave(session domain.Session)
}

// Engine is what the service requires from the runtime orchestrator.
type Engine interface {
	contract.IOrchestrator
	GetMessages(projectID domain.ProjectID, cursor *string) ([]repositories.DiskMessage, *string, error)
	SearchMessages(ctx context.Context, projectID domain.ProjectID, terms string, limit int) ([]repositories.SearchHit, error)
}

// ChatService is the single entry point the transport layer talks to.
type ChatService struct {
	orchestrator     Engine
	maxContentLength int
}

func NewChatService(orchestrator Engine, maxContentLength int) *ChatService {
	return &ChatService{orchestrator: orchestrator, maxContentLength: maxContentLength}
}

// PostMessage validates and dispatches a message sending intent. Delivery is
// asynchronous: the sender receives its own message through the fan-out like
// any other member.
func (s *ChatService) PostMessage(_ context.Context, cmd domain.PostMessageCommand) error {
	if strings.TrimSpace(cmd.Body) == "" {
		return fmt.Errorf("%w: empty message body", errors.ErrInvalidRequest)
	}
	if s.maxContentLength > 0 && len(cmd.Body) > s.maxContentLength {
		return fmt.Errorf("%w: body exceeds %d bytes", errors.ErrInvalidRequest, s.maxContentLength)
	}
	s.orchestrator.Dispatch(cmd)
	return nil
}

func (s *ChatService) GetMessages(projectID domain.ProjectID, cursor *string) ([]repositories.DiskMessage, *string, error) {
	return s.orchestrator.GetMessages(projectID, cursor)
}

func (s *ChatService) SearchMessages(ctx context.Context, projectID domain.ProjectID, terms string, limit int) ([]repositories.SearchHit, error) {
	return s.orchestrator.SearchMessages(ctx, projectID, terms, limit)
}

func (s *ChatService) Join(session domain.Session, sink contract.EventSink) {
	s.orchestrator.RegisterSession(session, sink)
}

func (s *ChatService) Leave(session domain.Session) {
	s.orchestrator.UnregisterSession(session)
}
