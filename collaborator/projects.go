// Package collaborator talks to the external project data API. Project and
// user CRUD live entirely on that side; the hub only reads membership and
// registers additions.
package collaborator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samber/lo"

	"collabhub/domain"
)

type User struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

type Project struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Users []User `json:"users"`
}

type Client struct {
	http *resty.Client
	log  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		log: log,
	}
}

// GetProject fetches the current project record, collaborator list included.
func (c *Client) GetProject(ctx context.Context, projectID domain.ProjectID) (Project, error) {
	var project Project
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&project).
		Get("/projects/" + projectID.String())
	if err != nil {
		return Project{}, fmt.Errorf("project lookup: %w", err)
	}
	if resp.IsError() {
		return Project{}, fmt.Errorf("project lookup: status %d", resp.StatusCode())
	}
	return project, nil
}

// AddCollaborators registers users on the project record.
func (c *Client) AddCollaborators(ctx context.Context, projectID domain.ProjectID, userIDs []string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"users": userIDs}).
		Put("/projects/" + projectID.String() + "/users")
	if err != nil {
		return fmt.Errorf("add collaborators: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("add collaborators: status %d", resp.StatusCode())
	}
	return nil
}

// IsCollaborator reports whether the identity is recorded on the project.
// Identities are user ids in the token claims, but older records carry
// emails, so both are accepted.
func (c *Client) IsCollaborator(ctx context.Context, projectID domain.ProjectID, userID string) (bool, error) {
	project, err := c.GetProject(ctx, projectID)
	if err != nil {
		return false, err
	}
	return lo.ContainsBy(project.Users, func(u User) bool {
		return u.ID == userID || u.Email == userID
	}), nil
}
