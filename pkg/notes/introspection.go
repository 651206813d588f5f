package notes

import (
	"github.com/aretw0/introspection"
)

// SynchronizerState exposes internal state for observability.
type SynchronizerState struct {
	State        string `json:"state"`
	Revision     uint64 `json:"revision"`
	Notes        int    `json:"notes"`
	Subscription string `json:"subscription"`
	Delivered    uint64 `json:"delivered"`
}

// State implements introspection.Introspectable.
func (s *Synchronizer) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SynchronizerState{
		State:        s.view.State.String(),
		Revision:     s.view.Rev,
		Notes:        len(s.view.Notes),
		Subscription: s.sub.ID(),
		Delivered:    s.sub.Delivered(),
	}
}

// ComponentType implements introspection.Component.
func (s *Synchronizer) ComponentType() string {
	return "synchronizer"
}

var _ introspection.Introspectable = (*Synchronizer)(nil)
var _ introspection.Component = (*Synchronizer)(nil)
