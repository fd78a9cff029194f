// Package domain contains core concepts of the collaboration hub.
// No runtime, network, or UI logic should be added here.
package domain

// Identity is the resolved user behind a session, as carried by the
// credential claims. The assistant posts under a reserved identity so
// clients can distinguish generated replies from human traffic.
type Identity string

// SystemIdentity is the reserved sender used for AI-originated messages.
const SystemIdentity Identity = "@assistant"

func (i Identity) IsSystem() bool {
	return i == SystemIdentity
}

func (i Identity) String() string {
	return string(i)
}
