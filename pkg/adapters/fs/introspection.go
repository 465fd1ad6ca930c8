package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path          string     `json:"path"`
	SystemDir     string     `json:"system_dir"`
	Ext           string     `json:"ext"`
	Gitless       bool       `json:"gitless"`
	ReadOnly      bool       `json:"read_only"`
	Watchers      int        `json:"watchers"`
	LastWrite     *time.Time `json:"last_write,omitempty"`
	LastReconcile *time.Time `json:"last_reconcile,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreState{
		Path:          s.Path,
		SystemDir:     s.config.SystemDir,
		Ext:           s.config.Ext,
		Gitless:       s.config.Gitless,
		ReadOnly:      s.config.ReadOnly,
		Watchers:      s.watchers,
		LastWrite:     s.lastWrite,
		LastReconcile: s.lastReconcile,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "fs-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

func (s *Store) addWatcher(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers += delta
}

func (s *Store) recordReconcile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastReconcile = &now
}
