// Package fs stores collection slots as files in a directory (the vault),
// optionally versioning every write with git.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/wiki/pkg/core"
	"github.com/aretw0/wiki/pkg/git"
)

// DefaultSystemDir holds the lock file and other private state.
const DefaultSystemDir = ".wiki"

// Store implements core.Store using one file per slot.
type Store struct {
	Path   string
	git    *git.Client
	config Config

	mu            sync.RWMutex
	watchers      int
	lastWrite     *time.Time
	lastReconcile *time.Time
}

// Config holds the configuration for the filesystem store.
type Config struct {
	Path      string
	AutoInit  bool
	Gitless   bool
	MustExist bool
	ReadOnly  bool
	Logger    *slog.Logger
	SystemDir string // e.g. ".wiki"
	Ext       string // slot file extension, e.g. ".json" or ".yaml"

	// ErrorHandler receives errors from background watchers.
	ErrorHandler func(error)
}

// NewStore creates a new filesystem-backed store.
func NewStore(config Config) *Store {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Ext == "" {
		config.Ext = ".json"
	}
	if !strings.HasPrefix(config.Ext, ".") {
		config.Ext = "." + config.Ext
	}

	return &Store{
		Path:   config.Path,
		git:    git.NewClient(config.Path, filepath.Join(config.SystemDir, "wiki.lock"), config.Logger),
		config: config,
	}
}

// Initialize performs the necessary setup for the vault (mkdir, git init).
func (s *Store) Initialize(ctx context.Context) error {
	// 1. Directory Initialization
	if s.config.MustExist {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", s.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat vault: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", s.Path)
		}
	} else if !s.config.ReadOnly {
		if err := os.MkdirAll(filepath.Join(s.Path, s.config.SystemDir), 0755); err != nil {
			return fmt.Errorf("failed to create vault directory: %w", err)
		}
	}

	if s.config.Gitless || s.config.ReadOnly {
		return nil
	}

	// 2. Git Initialization
	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}

	wasNewRepo := false
	if !s.git.IsRepo() {
		if !s.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", s.Path)
		}
		if err := s.git.Init(); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
		wasNewRepo = true
	}

	// Ensure .gitignore has the system directory
	mod, err := s.ensureIgnore()
	if err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}

	if mod && wasNewRepo {
		if err := s.git.Add(".gitignore"); err != nil {
			return fmt.Errorf("failed to add .gitignore: %w", err)
		}
		if err := s.git.Commit(fmt.Sprintf("chore: configure %s ignore", s.config.SystemDir)); err != nil {
			return fmt.Errorf("failed to commit .gitignore: %w", err)
		}
	}

	return nil
}

func (s *Store) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(s.Path, ".gitignore")
	ignoreEntry := s.config.SystemDir + "/"

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == ignoreEntry {
			return false, nil
		}
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}

	if _, err := f.WriteString(ignoreEntry + "\n"); err != nil {
		return false, err
	}

	return true, nil
}

// Filename returns the file (relative to the vault) holding key.
func (s *Store) Filename(key string) string {
	return strings.ToLower(key) + s.config.Ext
}

// keyFor maps a vault file back to its slot key. ok is false for files that
// are not slots (temp files, other extensions, nested paths).
func (s *Store) keyFor(path string) (key string, ok bool) {
	rel, err := filepath.Rel(s.Path, path)
	if err != nil || strings.ContainsRune(rel, filepath.Separator) {
		return "", false
	}
	if filepath.Ext(rel) != s.config.Ext || strings.HasPrefix(rel, ".") {
		return "", false
	}
	return strings.ToUpper(strings.TrimSuffix(rel, s.config.Ext)), true
}

// Get reads the slot file. A missing file yields core.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.Path, s.Filename(key)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set writes the slot file atomically and, unless gitless, commits it.
// The commit message is taken from core.ChangeReasonKey when present.
// When versioning fails the previous file content and index entry are
// restored, so a failed Set leaves the vault as it was.
func (s *Store) Set(ctx context.Context, key string, data []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}

	filename := s.Filename(key)
	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}

	if s.config.Gitless {
		return s.write(filename, data)
	}

	unlock, err := s.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	previous, err := os.ReadFile(filepath.Join(s.Path, filename))
	existed := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	if err := s.write(filename, data); err != nil {
		return err
	}

	if err := s.commit(ctx, filename); err != nil {
		if rbErr := s.rollback(filename, previous, existed); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back %s: %w", filename, rbErr))
		}
		return err
	}
	return nil
}

// commit stages filename and commits it unless nothing changed.
func (s *Store) commit(ctx context.Context, filename string) error {
	if err := s.git.Add(filename); err != nil {
		return fmt.Errorf("failed to git add: %w", err)
	}

	// Identical bytes leave nothing to commit.
	if !s.git.HasStagedChanges() {
		return nil
	}

	msg := "update " + filename
	if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
		msg = val
	}

	if err := s.git.Commit(msg); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	return nil
}

// rollback restores the slot file to its state before a failed Set.
func (s *Store) rollback(filename string, previous []byte, existed bool) error {
	path := filepath.Join(s.Path, filename)
	if existed {
		if err := writeFileAtomic(path, previous, 0644); err != nil {
			return err
		}
	} else if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	s.debug("slot write rolled back", "file", filename)
	return s.git.Unstage(filename)
}

func (s *Store) write(filename string, data []byte) error {
	if err := writeFileAtomic(filepath.Join(s.Path, filename), data, 0644); err != nil {
		return err
	}

	now := time.Now()
	s.mu.Lock()
	s.lastWrite = &now
	s.mu.Unlock()

	if s.config.Logger != nil {
		s.config.Logger.Debug("slot written", "file", filename, "bytes", len(data))
	}
	return nil
}

// Sync synchronizes the vault with its git remote.
func (s *Store) Sync(ctx context.Context) error {
	if s.config.Gitless {
		return fmt.Errorf("cannot sync in gitless mode")
	}

	if !s.git.IsRepo() {
		return fmt.Errorf("path is not a git repository: %s", s.Path)
	}

	unlock, err := s.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	return s.git.Sync()
}

var (
	_ core.Store     = (*Store)(nil)
	_ core.Syncable  = (*Store)(nil)
	_ core.Watchable = (*Store)(nil)
)
