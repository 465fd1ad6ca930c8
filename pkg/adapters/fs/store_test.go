package fs_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wiki/pkg/adapters/fs"
	"github.com/aretw0/wiki/pkg/core"
	"github.com/aretw0/wiki/pkg/git"
)

func requireGit(t *testing.T) {
	t.Helper()
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	t.Setenv("GIT_AUTHOR_NAME", "Wiki Test")
	t.Setenv("GIT_AUTHOR_EMAIL", "wiki@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Wiki Test")
	t.Setenv("GIT_COMMITTER_EMAIL", "wiki@example.com")
}

func gitLog(t *testing.T, dir string) []string {
	t.Helper()
	cmd := exec.Command("git", "log", "--format=%s")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(out)), "\n")
}

func TestStore_Gitless(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := fs.NewStore(fs.Config{Path: dir, Gitless: true})
	require.NoError(t, store.Initialize(ctx))

	_, err := store.Get(ctx, core.KeyTags)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, store.Set(ctx, core.KeyTags, []byte(`[{"id":"t1","label":"go"}]`)))

	path := filepath.Join(dir, "tags.json")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	got, err := store.Get(ctx, core.KeyTags)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"t1","label":"go"}]`, string(got))

	assert.DirExists(t, filepath.Join(dir, fs.DefaultSystemDir))
	assert.NoDirExists(t, filepath.Join(dir, ".git"))
	assert.Error(t, store.Sync(ctx))
}

func TestStore_Filename(t *testing.T) {
	assert.Equal(t, "wikis.json", fs.NewStore(fs.Config{Path: "."}).Filename(core.KeyNotes))
	assert.Equal(t, "wikis.yaml", fs.NewStore(fs.Config{Path: ".", Ext: "yaml"}).Filename(core.KeyNotes))
}

func TestStore_ReadOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wikis.json"), []byte(`[]`), 0644))

	store := fs.NewStore(fs.Config{Path: dir, ReadOnly: true})
	require.NoError(t, store.Initialize(ctx))

	got, err := store.Get(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	assert.ErrorIs(t, store.Set(ctx, core.KeyNotes, []byte(`[{}]`)), core.ErrReadOnly)
}

func TestStore_MustExist(t *testing.T) {
	store := fs.NewStore(fs.Config{Path: filepath.Join(t.TempDir(), "missing"), MustExist: true, Gitless: true})
	assert.Error(t, store.Initialize(context.Background()))
}

func TestStore_GitVersioning(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	dir := t.TempDir()

	store := fs.NewStore(fs.Config{Path: dir, AutoInit: true})
	require.NoError(t, store.Initialize(ctx))

	ignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(ignore), ".wiki/")

	reasonCtx := context.WithValue(ctx, core.ChangeReasonKey, "add tag go")
	require.NoError(t, store.Set(reasonCtx, core.KeyTags, []byte(`[{"id":"t1","label":"go"}]`)))

	// Same bytes again: nothing to commit, no error.
	require.NoError(t, store.Set(ctx, core.KeyTags, []byte(`[{"id":"t1","label":"go"}]`)))

	require.NoError(t, store.Set(ctx, core.KeyNotes, []byte(`[]`)))

	assert.Equal(t, []string{"update wikis.json", "add tag go", "chore: configure .wiki ignore"}, gitLog(t, dir))

	// Second initialization is idempotent.
	require.NoError(t, fs.NewStore(fs.Config{Path: dir}).Initialize(ctx))
	assert.Len(t, gitLog(t, dir), 3)
}

// rejectCommits installs a pre-commit hook that fails every commit.
func rejectCommits(t *testing.T, dir string) {
	t.Helper()
	hook := filepath.Join(dir, ".git", "hooks", "pre-commit")
	require.NoError(t, os.MkdirAll(filepath.Dir(hook), 0755))
	require.NoError(t, os.WriteFile(hook, []byte("#!/bin/sh\nexit 1\n"), 0755))
}

func gitStatus(t *testing.T, dir string) string {
	t.Helper()
	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return strings.TrimSpace(string(out))
}

func TestStore_FailedCommitRestoresSlot(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	dir := t.TempDir()

	store := fs.NewStore(fs.Config{Path: dir, AutoInit: true})
	require.NoError(t, store.Initialize(ctx))
	require.NoError(t, store.Set(ctx, core.KeyTags, []byte(`[{"id":"t1","label":"go"}]`)))

	rejectCommits(t, dir)

	t.Run("existing slot keeps previous bytes", func(t *testing.T) {
		err := store.Set(ctx, core.KeyTags, []byte(`[{"id":"t1","label":"go"},{"id":"t2","label":"sql"}]`))
		require.Error(t, err)

		got, err := store.Get(ctx, core.KeyTags)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"t1","label":"go"}]`, string(got))
		assert.Empty(t, gitStatus(t, dir))
	})

	t.Run("new slot is removed", func(t *testing.T) {
		require.Error(t, store.Set(ctx, core.KeyNotes, []byte(`[]`)))

		_, err := store.Get(ctx, core.KeyNotes)
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.Empty(t, gitStatus(t, dir))
	})

	assert.Len(t, gitLog(t, dir), 2)
}

func TestService_FailedCommitLeavesVaultUnchanged(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	dir := t.TempDir()

	store := fs.NewStore(fs.Config{Path: dir, AutoInit: true})
	require.NoError(t, store.Initialize(ctx))
	rejectCommits(t, dir)

	svc := core.NewService(ctx, store)
	_, err := svc.CreateNote(ctx, core.CreateNoteRequest{Title: "Intro", Markdown: "# Hi"})
	require.Error(t, err)
	assert.Empty(t, svc.Notes())

	reopened := core.NewService(ctx, fs.NewStore(fs.Config{Path: dir}))
	assert.Empty(t, reopened.Notes())
}

func TestStore_NotARepo(t *testing.T) {
	requireGit(t)
	store := fs.NewStore(fs.Config{Path: t.TempDir()})
	assert.Error(t, store.Initialize(context.Background()))
}

func TestStore_Introspection(t *testing.T) {
	store := fs.NewStore(fs.Config{Path: t.TempDir(), Gitless: true})
	require.NoError(t, store.Set(context.Background(), core.KeyTags, []byte(`[]`)))

	st, ok := store.State().(fs.StoreState)
	require.True(t, ok)
	assert.True(t, st.Gitless)
	assert.Equal(t, ".json", st.Ext)
	assert.NotNil(t, st.LastWrite)
	assert.Equal(t, "fs-store", store.ComponentType())
}
