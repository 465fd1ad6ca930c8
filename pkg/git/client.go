package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoRemote is returned by Sync when the repository has no remote configured.
var ErrNoRemote = errors.New("no git remote configured")

// DefaultLockName is the lock file used when none is given.
const DefaultLockName = ".wiki.lock"

// Client wraps git command execution with a global file-based lock for process safety.
type Client struct {
	WorkDir  string
	Logger   *slog.Logger
	lockPath string
}

// NewClient creates a new git client for the given working directory.
// lockName is relative to workDir; empty means DefaultLockName.
func NewClient(workDir, lockName string, logger *slog.Logger) *Client {
	if lockName == "" {
		lockName = DefaultLockName
	}
	return &Client{
		WorkDir:  workDir,
		Logger:   logger,
		lockPath: lockName,
	}
}

// IsInstalled reports whether a git binary is on PATH.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Lock acquires a file-based lock. It blocks until the lock is acquired or
// ctx is done.
func (c *Client) Lock(ctx context.Context) (func(), error) {
	fullLockPath := filepath.Join(c.WorkDir, c.lockPath)
	if err := os.MkdirAll(filepath.Dir(fullLockPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	for {
		// Try to create lock file atomically
		f, err := os.OpenFile(fullLockPath, os.O_CREATE|os.O_EXCL, 0666)
		if err == nil {
			f.Close()
			return func() {
				os.Remove(fullLockPath)
			}, nil
		}

		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to acquire lock: %w", ctx.Err())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Run executes a raw git command in the working directory.
// NOTE: It does NOT acquire the lock automatically. The caller must manage safety via Client.Lock().
func (c *Client) Run(args ...string) (string, error) {
	if c.Logger != nil {
		c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)
	}

	cmd := exec.Command("git", args...)
	cmd.Dir = c.WorkDir

	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, output)
	}

	return strings.TrimSpace(output), nil
}

// IsRepo reports whether WorkDir is inside a git work tree.
func (c *Client) IsRepo() bool {
	out, err := c.Run("rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Init initializes a new git repository. Re-running it is safe.
func (c *Client) Init() error {
	_, err := c.Run("init")
	return err
}

// Add adds files to the stage.
func (c *Client) Add(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"add"}, files...)
	_, err := c.Run(args...)
	return err
}

// HasStagedChanges reports whether the index differs from HEAD.
func (c *Client) HasStagedChanges() bool {
	_, err := c.Run("diff", "--cached", "--quiet")
	return err != nil
}

// Commit records changes to the repository.
func (c *Client) Commit(msg string) error {
	_, err := c.Run("commit", "-m", msg)
	return err
}

// Unstage resets the index entries of files to HEAD. In a repository
// without commits the entries are dropped from the index instead.
func (c *Client) Unstage(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	if _, err := c.Run("rev-parse", "--verify", "--quiet", "HEAD"); err != nil {
		_, err := c.Run(append([]string{"rm", "--cached", "--quiet", "--ignore-unmatch", "--"}, files...)...)
		return err
	}
	_, err := c.Run(append([]string{"reset", "--quiet", "--"}, files...)...)
	return err
}

// Status returns the porcelain status of the repo.
func (c *Client) Status() (string, error) {
	return c.Run("status", "--porcelain")
}

// Sync pulls (rebasing local commits) and pushes to the default remote.
func (c *Client) Sync() error {
	remotes, err := c.Run("remote")
	if err != nil {
		return err
	}
	if remotes == "" {
		return ErrNoRemote
	}

	if _, err := c.Run("pull", "--rebase"); err != nil {
		return fmt.Errorf("failed to pull: %w", err)
	}
	if _, err := c.Run("push"); err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}
