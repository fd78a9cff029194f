//go:generate go run go.uber.org/mock/mockgen -source=authenticator.go -destination=../mocks/mock_membership.go -package=mocks
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"collabhub/domain"
	"collabhub/errors"
)

// MembershipChecker asks the external project data API whether an identity
// is a recorded collaborator of a project.
type MembershipChecker interface {
	IsCollaborator(ctx context.Context, projectID domain.ProjectID, userID string) (bool, error)
}

// Authenticator resolves a connecting client's credential into a Session
// before any channel admission. No token, no connection; invalid token, no
// connection. When a MembershipChecker is configured, admission is further
// gated on recorded project membership.
type Authenticator struct {
	tokens     *TokenManager
	membership MembershipChecker
	log        *slog.Logger
}

func NewAuthenticator(tokens *TokenManager, membership MembershipChecker, log *slog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, membership: membership, log: log}
}

// Authenticate validates the bearer token and, if the membership gate is
// active, the caller's collaborator status on the target project.
// On success it returns a Session ready for registry admission; the session
// has no channel side effects yet.
func (a *Authenticator) Authenticate(ctx context.Context, token string, projectID domain.ProjectID) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, errors.ErrUnauthorized
	}

	claims, err := a.tokens.Validate(token)
	if err != nil {
		a.log.Debug("Token rejected", "project_id", projectID, "error", err)
		return domain.Session{}, fmt.Errorf("%w: %v", errors.ErrUnauthorized, err)
	}

	if a.membership != nil {
		ok, err := a.membership.IsCollaborator(ctx, projectID, claims.UserID)
		if err != nil {
			return domain.Session{}, fmt.Errorf("membership lookup: %w", err)
		}
		if !ok {
			return domain.Session{}, fmt.Errorf("%w: %s on %s",
				errors.ErrNotCollaborator, claims.UserID, projectID)
		}
	}

	return domain.NewSession(domain.Identity(claims.UserID), projectID), nil
}
