package runtime

import (
	"sync"

	"github.com/google/uuid"

	"collabhub/contract"
	"collabhub/domain"
)

// channel is the member set of one project. Each channel carries its own
// lock so snapshots and leaves on one project never serialize another.
type channel struct {
	mu      sync.Mutex
	members map[uuid.UUID]contract.Member
}

// Registry maps project identifiers to the set of currently connected
// sessions. It is the single shared mutable resource of the core: joins,
// leaves and snapshots on the same project are serialized per channel.
type Registry struct {
	mu       sync.RWMutex
	channels map[domain.ProjectID]*channel
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[domain.ProjectID]*channel)}
}

// Join admits a session into the project's member set, creating the channel
// lazily on first join. Joining twice with the same session is a no-op, so
// reconnect races cannot duplicate fan-out.
//
// The insert happens under the registry lock. A channel looked up outside it
// could be purged before the member lands in it, leaving a connected session
// that no snapshot can reach.
func (r *Registry) Join(projectID domain.ProjectID, session domain.Session, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.channels[projectID]
	if !ok {
		ch = &channel{members: make(map[uuid.UUID]contract.Member)}
		r.channels[projectID] = ch
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	if _, ok := ch.members[session.ID]; ok {
		return
	}
	ch.members[session.ID] = contract.Member{Session: session, Sink: sink}
}

// Leave removes a session from the project's member set; a no-op if the
// session is absent. Every disconnect path must end up here, otherwise the
// member set grows without bound and dead sinks keep receiving fan-out.
func (r *Registry) Leave(projectID domain.ProjectID, sessionID uuid.UUID) {
	r.mu.RLock()
	ch, ok := r.channels[projectID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	ch.mu.Lock()
	delete(ch.members, sessionID)
	empty := len(ch.members) == 0
	ch.mu.Unlock()

	if empty {
		r.purgeIfEmpty(projectID)
	}
}

// MembersOf returns a copy-on-read snapshot of the current member set.
// The snapshot reflects membership at call time and stays valid while
// concurrent joins and leaves mutate the channel.
func (r *Registry) MembersOf(projectID domain.ProjectID) []contract.Member {
	r.mu.RLock()
	ch, ok := r.channels[projectID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	if len(ch.members) == 0 {
		return nil
	}
	snapshot := make([]contract.Member, 0, len(ch.members))
	for _, m := range ch.members {
		snapshot = append(snapshot, m)
	}
	return snapshot
}

// Size reports the total number of connected sessions across all channels.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, ch := range r.channels {
		ch.mu.Lock()
		total += len(ch.members)
		ch.mu.Unlock()
	}
	return total
}

// purgeIfEmpty drops the channel entry once its last member left, so the
// map doesn't accumulate entries for dead projects. Join also holds r.mu,
// so the channel cannot gain a member between the check and the delete.
func (r *Registry) purgeIfEmpty(projectID domain.ProjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.channels[projectID]
	if !ok {
		return
	}
	ch.mu.Lock()
	empty := len(ch.members) == 0
	ch.mu.Unlock()
	if empty {
		delete(r.channels, projectID)
	}
}
