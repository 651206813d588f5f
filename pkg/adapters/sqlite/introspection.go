package sqlite

import (
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/lanote/pkg/core"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path          string           `json:"path"`
	Revision      uint64           `json:"revision"`
	Notes         int              `json:"notes"`
	ReadOnly      bool             `json:"read_only"`
	WatcherActive bool             `json:"watcher_active"`
	LastReload    *time.Time       `json:"last_reload,omitempty"`
	Broker        core.BrokerState `json:"broker"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.Lock()
	notes := len(s.last.Notes)
	s.mu.Unlock()

	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	broker, _ := s.broker.State().(core.BrokerState)
	return StoreState{
		Path:          s.config.Path,
		Revision:      s.rev.Load(),
		Notes:         notes,
		ReadOnly:      s.config.ReadOnly,
		WatcherActive: s.watcherActive,
		LastReload:    s.lastReload,
		Broker:        broker,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "sqlite-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

func (s *Store) setWatcherActive(active bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.watcherActive = active
}

func (s *Store) reportError(err error) {
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
		return
	}
	s.config.Logger.Error("note store background error", "error", err)
}
