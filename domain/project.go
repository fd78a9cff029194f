package domain

// ProjectID identifies one project, and therefore one fan-out channel.
type ProjectID string

func (p ProjectID) String() string {
	return string(p)
}
