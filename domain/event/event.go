package event

import (
	"time"

	"github.com/google/uuid"

	"collabhub/domain"
)

// DomainEvent is the closed set of frames the router fans out to a channel.
// The concrete variants are ChatMessage, SystemNotice and ErrorNotice so
// transport handling stays exhaustive.
type DomainEvent interface {
	ProjectID() domain.ProjectID
}

// MessagePosted is the raw, pre-moderation form of a chat message.
// It never reaches a client sink directly.
type MessagePosted struct {
	ID            uuid.UUID
	Project       domain.ProjectID
	Sender        domain.Identity
	Body          string
	At            time.Time
	CorrelationID uuid.UUID
}

func (m MessagePosted) ProjectID() domain.ProjectID {
	return m.Project
}

// ChatMessage is the sanitized, deliverable form of a chat message.
// AI-originated replies carry the reserved system identity and a
// non-zero correlation id.
type ChatMessage struct {
	ID            uuid.UUID
	Project       domain.ProjectID
	Sender        domain.Identity
	Body          string
	Lang          string
	CensoredWords []string
	At            time.Time
	CorrelationID uuid.UUID
}

func (m ChatMessage) ProjectID() domain.ProjectID {
	return m.Project
}

// SystemNotice is an informational channel-wide frame (member joined, left).
type SystemNotice struct {
	Project domain.ProjectID
	Body    string
	At      time.Time
}

func (n SystemNotice) ProjectID() domain.ProjectID {
	return n.Project
}

// ErrorNotice reports a failed action back into the channel, typically an
// assistant invocation that could not complete.
type ErrorNotice struct {
	Project       domain.ProjectID
	Code          string
	Body          string
	At            time.Time
	CorrelationID uuid.UUID
}

func (n ErrorNotice) ProjectID() domain.ProjectID {
	return n.Project
}
