package runtime

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"collabhub/domain"
	"collabhub/domain/event"
)

type Sink struct {
}

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestRegistry_Join_One_Project_One_Member(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	projectID := domain.ProjectID("alpha")
	session := domain.NewSession("alice", projectID)
	sink := Sink{}

	// Given no one is connected
	req.Zero(registry.Size())
	req.Nil(registry.MembersOf(projectID))

	// When a session joins a project
	registry.Join(projectID, session, sink)

	// Then
	req.Equal(1, registry.Size())
	members := registry.MembersOf(projectID)
	req.Len(members, 1)
	req.Equal(session, members[0].Session)
	req.Equal(sink, members[0].Sink)
}

func TestRegistry_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	projectID := domain.ProjectID("alpha")
	session := domain.NewSession("alice", projectID)

	// When the same session joins twice
	registry.Join(projectID, session, Sink{})
	registry.Join(projectID, session, Sink{})

	// Then the member set holds it once
	req.Equal(1, registry.Size())
	req.Len(registry.MembersOf(projectID), 1)
}

func TestRegistry_Join_One_Project_Multiple_Members(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	projectID := domain.ProjectID("alpha")
	session1 := domain.NewSession("alice", projectID)
	session2 := domain.NewSession("bob", projectID)

	registry.Join(projectID, session1, Sink{})
	registry.Join(projectID, session2, Sink{})

	req.Equal(2, registry.Size())
	req.Len(registry.MembersOf(projectID), 2)
}

func TestRegistry_Projects_Are_Isolated(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alpha := domain.ProjectID("alpha")
	beta := domain.ProjectID("beta")

	registry.Join(alpha, domain.NewSession("alice", alpha), Sink{})
	registry.Join(beta, domain.NewSession("bob", beta), Sink{})

	req.Equal(2, registry.Size())
	req.Len(registry.MembersOf(alpha), 1)
	req.Len(registry.MembersOf(beta), 1)
}

func TestRegistry_Leave_One_Project_One_Member(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	projectID := domain.ProjectID("alpha")
	session := domain.NewSession("alice", projectID)

	// Given a connected session
	registry.Join(projectID, session, Sink{})

	// When it leaves
	registry.Leave(projectID, session.ID)

	// Then no member is left and the channel is gone
	req.Zero(registry.Size())
	req.Nil(registry.MembersOf(projectID))
}

func TestRegistry_Leave_One_Project_Multiple_Members(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	projectID := domain.ProjectID("alpha")
	session1 := domain.NewSession("alice", projectID)
	session2 := domain.NewSession("bob", projectID)

	registry.Join(projectID, session1, Sink{})
	registry.Join(projectID, session2, Sink{})

	registry.Leave(projectID, session1.ID)

	req.Equal(1, registry.Size())
	members := registry.MembersOf(projectID)
	req.Len(members, 1)
	req.Equal(session2, members[0].Session)
}

func TestRegistry_Leave_Unknown_Session_Is_NoOp(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	projectID := domain.ProjectID("alpha")
	session := domain.NewSession("alice", projectID)

	registry.Join(projectID, session, Sink{})

	// Leaving with an unknown id or project must not disturb anyone
	registry.Leave(projectID, uuid.New())
	registry.Leave(domain.ProjectID("ghost"), session.ID)

	req.Equal(1, registry.Size())
}

func TestRegistry_MembersOf_Is_A_Snapshot(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	projectID := domain.ProjectID("alpha")
	session1 := domain.NewSession("alice", projectID)
	session2 := domain.NewSession("bob", projectID)

	registry.Join(projectID, session1, Sink{})
	registry.Join(projectID, session2, Sink{})

	snapshot := registry.MembersOf(projectID)
	req.Len(snapshot, 2)

	// Mutations after the snapshot must not be visible in it
	registry.Leave(projectID, session1.ID)
	registry.Leave(projectID, session2.ID)

	req.Len(snapshot, 2)
	req.Nil(registry.MembersOf(projectID))
}

func TestRegistry_Join_Racing_Last_Leave_Stays_Reachable(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	projectID := domain.ProjectID("alpha")

	for i := 0; i < 2000; i++ {
		alice := domain.NewSession("alice", projectID)
		bob := domain.NewSession("bob", projectID)
		registry.Join(projectID, alice, Sink{})

		// The last member leaves while a new one joins; whatever the
		// interleaving, the joiner must end up reachable by fan-out.
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			registry.Leave(projectID, alice.ID)
		}()
		go func() {
			defer wg.Done()
			registry.Join(projectID, bob, Sink{})
		}()
		wg.Wait()

		members := registry.MembersOf(projectID)
		req.Len(members, 1, "iteration %d", i)
		req.Equal(bob, members[0].Session)
		registry.Leave(projectID, bob.ID)
	}

	req.Zero(registry.Size())
}

func TestRegistry_Concurrent_Churn(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	projectID := domain.ProjectID("alpha")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session := domain.NewSession("user", projectID)
			registry.Join(projectID, session, Sink{})
			registry.MembersOf(projectID)
			registry.Leave(projectID, session.ID)
		}()
	}
	wg.Wait()

	req.Zero(registry.Size())
	req.Nil(registry.MembersOf(projectID))
}
