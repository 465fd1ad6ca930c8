package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/wiki/pkg/core"
)

const debounceWindow = 50 * time.Millisecond

// Watch reports changes to slot files whose key matches pattern (doublestar
// syntax, e.g. "*" or "WIKIS"). Each event carries the slot key in
// Collection. Bursts are coalesced into one event per key, and events are
// held back while git holds its index lock. The channel is closed when ctx
// is done.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(s.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Path, err)
	}

	gitDir := filepath.Join(s.Path, ".git")
	if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
		_ = watcher.Add(gitDir)
	}

	events := make(chan core.Event, 16)
	s.addWatcher(1)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer s.addWatcher(-1)
		defer watcher.Close()
		return s.watchLoop(ctx, watcher, pattern, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.reportError(fmt.Errorf("watcher failed: %w", err))
	}))

	return events, nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pattern string, out chan<- core.Event) error {
	pending := make(map[string]core.EventType)
	timer := time.NewTimer(debounceWindow)
	timer.Stop()
	defer timer.Stop()

	var gitLocked bool

	flush := func() bool {
		for key, eType := range pending {
			select {
			case out <- core.Event{Type: eType, Collection: key, Timestamp: time.Now().Unix()}:
			case <-ctx.Done():
				return false
			}
			delete(pending, key)
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-timer.C:
			if gitLocked {
				continue
			}
			if !flush() {
				return nil
			}

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}

			if isGitIndexLock(event.Name) {
				switch {
				case event.Has(fsnotify.Create):
					gitLocked = true
					s.debug("git operations detected, pausing watcher")
				case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
					gitLocked = false
					s.debug("git operations finished, reconciling")
					s.reconcile(pattern, pending)
					timer.Reset(debounceWindow)
				}
				continue
			}

			key, ok := s.keyFor(event.Name)
			if !ok {
				continue
			}
			if match, _ := doublestar.Match(pattern, key); !match {
				continue
			}

			eType := mapEventType(event)
			if eType == "" {
				continue
			}

			s.debug("slot changed", "key", key, "op", event.Op.String())
			pending[key] = eType
			timer.Reset(debounceWindow)

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			s.reportError(wErr)
		}
	}
}

// reconcile queues a MODIFY for every slot file present, covering events
// dropped while git held its lock (checkout, pull, rebase).
func (s *Store) reconcile(pattern string, pending map[string]core.EventType) {
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		s.reportError(fmt.Errorf("reconcile failed: %w", err))
		return
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		key, ok := s.keyFor(filepath.Join(s.Path, e.Name()))
		if !ok {
			continue
		}
		if match, _ := doublestar.Match(pattern, key); match {
			pending[key] = core.EventModify
		}
	}
	s.recordReconcile()
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		return core.EventDelete
	}
	return ""
}

func isGitIndexLock(name string) bool {
	return filepath.Base(name) == "index.lock" && filepath.Base(filepath.Dir(name)) == ".git"
}

func (s *Store) reportError(err error) {
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
		return
	}
	if s.config.Logger != nil {
		s.config.Logger.Error("watcher error", "error", err)
	}
}

func (s *Store) debug(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, args...)
	}
}
