package domain

import (
	"time"

	"github.com/google/uuid"
)

type Command interface {
	ProjectID() ProjectID
}

// PostMessageCommand is the intent of a sender to publish one chat message
// in its project channel. The assistant re-enters the pipeline through the
// same command, with the reserved system identity and a correlation id.
type PostMessageCommand struct {
	Project       ProjectID
	Sender        Identity
	Body          string
	CreatedAt     time.Time
	CorrelationID uuid.UUID // zero unless AI-originated
}

func (c PostMessageCommand) ProjectID() ProjectID {
	return c.Project
}

// NoticeSeverity distinguishes informational notices from failures.
type NoticeSeverity string

const (
	SeveritySystem NoticeSeverity = "system"
	SeverityError  NoticeSeverity = "error"
)

// PostNoticeCommand publishes a system or error notice to a channel,
// e.g. a member join announcement or an assistant failure report.
type PostNoticeCommand struct {
	Project       ProjectID
	Severity      NoticeSeverity
	Code          string
	Body          string
	CreatedAt     time.Time
	CorrelationID uuid.UUID
}

func (c PostNoticeCommand) ProjectID() ProjectID {
	return c.Project
}
