package platform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wiki/internal/platform"
)

func TestFindRoot(t *testing.T) {
	// base/
	//   vault/ (.wiki)
	//     notes/deep/
	//     readme.md
	//   configured/ (wiki.toml)
	//   repo/ (.git)
	//   loose/
	base := t.TempDir()
	vault := filepath.Join(base, "vault")
	deep := filepath.Join(vault, "notes", "deep")
	configured := filepath.Join(base, "configured")
	repo := filepath.Join(base, "repo")
	loose := filepath.Join(base, "loose")

	for _, dir := range []string{deep, configured, filepath.Join(repo, ".git"), loose, filepath.Join(vault, ".wiki")} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(vault, "readme.md"), []byte("# hi"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(configured, platform.ConfigFilename), nil, 0644))

	tests := []struct {
		name  string
		start string
		want  string
	}{
		{"system dir at start", vault, vault},
		{"system dir above", deep, vault},
		{"file inside vault", filepath.Join(vault, "readme.md"), vault},
		{"config file", configured, configured},
		{"git repository", repo, repo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := platform.FindRoot(tt.start)
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.want), filepath.Clean(got))
		})
	}

	t.Run("no marker", func(t *testing.T) {
		// The temp dir itself may sit inside a marked tree (e.g. a CI checkout),
		// so only assert when the walk really ends empty.
		got, err := platform.FindRoot(loose)
		if err != nil {
			assert.ErrorIs(t, err, platform.ErrRootNotFound)
			return
		}
		assert.NotEqual(t, loose, got)
	})
}
