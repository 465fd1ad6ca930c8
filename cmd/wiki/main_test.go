package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wiki"
	"github.com/aretw0/wiki/pkg/core"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "wiki %s", strings.Join(args, " "))
	return out
}

func newVault(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mustRun(t, "init", "-C", dir, "--no-versioning")
	return dir
}

func TestCLI_Init(t *testing.T) {
	dir := t.TempDir()
	out := mustRun(t, "init", "-C", dir, "--no-versioning")
	assert.Contains(t, out, "Initialized wiki vault in")
	assert.DirExists(t, filepath.Join(dir, ".wiki"))
}

func TestCLI_NoteLifecycle(t *testing.T) {
	dir := newVault(t)

	goID := strings.TrimSpace(mustRun(t, "tag", "add", "go", "-C", dir))
	require.NotEmpty(t, goID)

	id := strings.TrimSpace(mustRun(t, "note", "create", "-C", dir,
		"--title", "Intro", "--body", "# Hi\n\nFirst note.", "--tag", "go", "--tag", "db"))
	require.NotEmpty(t, id)

	// "db" was registered on the fly.
	var tags []tagUsage
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "tag", "list", "--json", "-C", dir)), &tags))
	require.Len(t, tags, 2)
	assert.Equal(t, "go", tags[0].Label)
	assert.Equal(t, "db", tags[1].Label)
	assert.Equal(t, 1, tags[0].Notes)

	var note core.NoteWithTags
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "note", "show", id, "--json", "-C", dir)), &note))
	assert.Equal(t, "Intro", note.Title)
	assert.Equal(t, []core.Tag{{ID: goID, Label: "go"}, tags[1].Tag}, note.Tags)

	show := mustRun(t, "note", "show", id, "-C", dir)
	assert.Contains(t, show, "Intro\n"+id+"\n[go] [db]\n\n# Hi")

	list := mustRun(t, "note", "list", "--long", "-C", dir)
	assert.Equal(t, id+"  Intro  [go] [db]\n    Hi First note.\n", list)

	mustRun(t, "note", "edit", id, "--title", "Intro v2", "--tag", "go", "-C", dir)
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "note", "show", id, "--json", "-C", dir)), &note))
	assert.Equal(t, "Intro v2", note.Title)
	assert.Equal(t, "# Hi\n\nFirst note.", note.Markdown)
	assert.Equal(t, []core.Tag{{ID: goID, Label: "go"}}, note.Tags)

	mustRun(t, "note", "delete", id, "-C", dir)
	_, err := run(t, "note", "show", id, "-C", dir)
	assert.ErrorIs(t, err, errNotFound)
}

func TestCLI_TagDeleteKeepsNote(t *testing.T) {
	dir := newVault(t)

	id := strings.TrimSpace(mustRun(t, "note", "create", "-C", dir, "--title", "Intro", "--body", "# Hi", "--tag", "go"))
	mustRun(t, "tag", "delete", "go", "-C", dir)

	var note core.NoteWithTags
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "note", "show", id, "--json", "-C", dir)), &note))
	assert.Empty(t, note.Tags)

	// The persisted note still references the deleted tag.
	svc, err := wiki.New(dir)
	require.NoError(t, err)
	require.Len(t, svc.Notes(), 1)
	assert.Len(t, svc.Notes()[0].TagIDs, 1)
}

func TestCLI_ListFilters(t *testing.T) {
	dir := newVault(t)

	mustRun(t, "note", "create", "-C", dir, "--title", "Go basics", "--body", "x", "--tag", "go")
	mustRun(t, "note", "create", "-C", dir, "--title", "Go and SQL", "--body", "x", "--tag", "go", "--tag", "db")
	mustRun(t, "note", "create", "-C", dir, "--title", "Postgres", "--body", "x", "--tag", "db")

	titles := func(args ...string) []string {
		var notes []core.NoteWithTags
		out := mustRun(t, append([]string{"note", "list", "--json", "-C", dir}, args...)...)
		require.NoError(t, json.Unmarshal([]byte(out), &notes))
		result := []string{}
		for _, n := range notes {
			result = append(result, n.Title)
		}
		return result
	}

	assert.Equal(t, []string{"Go basics", "Go and SQL", "Postgres"}, titles())
	assert.Equal(t, []string{"Go basics", "Go and SQL"}, titles("--title", "GO"))
	assert.Equal(t, []string{"Go and SQL"}, titles("--tag", "go", "--tag", "db"))
	assert.Empty(t, titles("--tag", "missing"))
}

func TestCLI_TagRename(t *testing.T) {
	dir := newVault(t)

	id := strings.TrimSpace(mustRun(t, "tag", "add", "golang", "-C", dir))
	mustRun(t, "tag", "rename", "golang", "go", "-C", dir)

	out := mustRun(t, "tag", "list", "-C", dir)
	assert.Equal(t, id+"  go  (0)\n", out)

	_, err := run(t, "tag", "rename", "nope", "x", "-C", dir)
	assert.ErrorIs(t, err, errNotFound)
}

func TestCLI_Validation(t *testing.T) {
	dir := newVault(t)

	_, err := run(t, "note", "create", "-C", dir, "--title", "Empty")
	assert.ErrorIs(t, err, core.ErrInvalidRequest)

	// Title falls back to the first heading.
	id := strings.TrimSpace(mustRun(t, "note", "create", "-C", dir, "--body", "## From heading\n\ntext"))
	var note core.NoteWithTags
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "note", "show", id, "--json", "-C", dir)), &note))
	assert.Equal(t, "From heading", note.Title)

	// Explicit tag ids must be unused.
	assert.Equal(t, "lang", strings.TrimSpace(mustRun(t, "tag", "add", "go", "--id", "lang", "-C", dir)))
	_, err = run(t, "tag", "add", "rust", "--id", "lang", "-C", dir)
	assert.ErrorIs(t, err, core.ErrInvalidRequest)
}

func TestCLI_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, wiki.ConfigFilename), []byte("format = \"yaml\"\nversioning = false\n"), 0644))

	mustRun(t, "init", "-C", dir)
	mustRun(t, "tag", "add", "go", "-C", dir)

	assert.FileExists(t, filepath.Join(dir, "tags.yaml"))
	assert.NoDirExists(t, filepath.Join(dir, ".git"))

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`adapter = "redis"`), 0644))
	_, err := run(t, "tag", "list", "-C", dir, "--config", bad)
	assert.Error(t, err)
}

func TestCLI_SyncWithoutGit(t *testing.T) {
	dir := newVault(t)
	_, err := run(t, "sync", "-C", dir)
	assert.Error(t, err)
}

func TestCLI_Version(t *testing.T) {
	out := mustRun(t, "version")
	assert.Equal(t, "wiki version "+wiki.Version+"\n", out)
}
