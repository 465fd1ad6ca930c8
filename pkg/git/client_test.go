package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if !IsInstalled() {
		t.Skip("git not installed")
	}
	t.Setenv("GIT_AUTHOR_NAME", "Wiki Test")
	t.Setenv("GIT_AUTHOR_EMAIL", "wiki@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Wiki Test")
	t.Setenv("GIT_COMMITTER_EMAIL", "wiki@example.com")
}

func TestClient_Lock(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, ".wiki/wiki.lock", nil)

	unlock, err := client.Lock(context.Background())
	require.NoError(t, err)

	lockPath := filepath.Join(tmpDir, ".wiki", "wiki.lock")
	assert.FileExists(t, lockPath)

	// A second acquisition gives up when its context expires.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.NoFileExists(t, lockPath)
}

func TestClient_DefaultLockName(t *testing.T) {
	client := NewClient(t.TempDir(), "", nil)
	assert.Equal(t, DefaultLockName, client.lockPath)
}

func TestClient_InitAddCommit(t *testing.T) {
	requireGit(t)
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, "", nil)

	assert.False(t, client.IsRepo())
	require.NoError(t, client.Init())
	assert.True(t, client.IsRepo())
	assert.DirExists(t, filepath.Join(tmpDir, ".git"))

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "tags.json"), []byte("[]"), 0644))
	require.NoError(t, client.Add("tags.json"))
	assert.True(t, client.HasStagedChanges())
	require.NoError(t, client.Commit("add tags"))
	assert.False(t, client.HasStagedChanges())

	status, err := client.Status()
	require.NoError(t, err)
	assert.Empty(t, status)

	assert.ErrorIs(t, client.Sync(), ErrNoRemote)
}

func TestClient_Unstage(t *testing.T) {
	requireGit(t)
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, "", nil)
	require.NoError(t, client.Init())

	path := filepath.Join(tmpDir, "tags.json")

	// No commits yet: the entry is dropped from the index.
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))
	require.NoError(t, client.Add("tags.json"))
	require.NoError(t, client.Unstage("tags.json"))
	assert.False(t, client.HasStagedChanges())

	require.NoError(t, client.Add("tags.json"))
	require.NoError(t, client.Commit("add tags"))

	// With HEAD: the entry goes back to the committed version.
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"t1"}]`), 0644))
	require.NoError(t, client.Add("tags.json"))
	require.True(t, client.HasStagedChanges())
	require.NoError(t, client.Unstage("tags.json"))
	assert.False(t, client.HasStagedChanges())
}
