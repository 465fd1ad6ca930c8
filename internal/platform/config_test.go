package platform_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wiki/internal/platform"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), platform.ConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("WIKI_DB", "/var/lib/wiki/notes.db")

	path := writeConfig(t, `
adapter = "sqlite"
format = "yaml"
versioning = false
system_dir = ".notes"
database = "${WIKI_DB}"
log_level = "debug"
`)

	cfg, err := platform.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Adapter)
	assert.Equal(t, "yaml", cfg.Format)
	require.NotNil(t, cfg.Versioning)
	assert.False(t, *cfg.Versioning)
	assert.Equal(t, ".notes", cfg.SystemDir)
	assert.Equal(t, "/var/lib/wiki/notes.db", cfg.Database)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Len(t, cfg.Options(), 5)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Unknown adapter", `adapter = "redis"`},
		{"Unknown format", `format = "xml"`},
		{"Bad log level", `log_level = "loud"`},
		{"Malformed", `adapter = `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := platform.LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := platform.LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestConfig_Defaults(t *testing.T) {
	cfg, err := platform.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Empty(t, cfg.Options())
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}
