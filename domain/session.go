package domain

import (
	"github.com/google/uuid"
)

// Session is one authenticated, live connection from a client.
// It is bound to exactly one project for its whole lifetime: a user with
// two project views open holds two independent sessions.
type Session struct {
	ID       uuid.UUID
	Identity Identity
	Project  ProjectID
}

func NewSession(identity Identity, project ProjectID) Session {
	return Session{
		ID:       uuid.New(),
		Identity: identity,
		Project:  project,
	}
}
