package wiki

import (
	"log/slog"

	"github.com/aretw0/wiki/internal/platform"
	"github.com/aretw0/wiki/pkg/core"
)

// --- Types ---

// Service owns the tag registry and the note collection.
type Service = core.Service

// Tag is a labeled category attachable to many notes.
type Tag = core.Tag

// Note is the persisted form of a wiki entry.
type Note = core.Note

// NoteWithTags is a note with its tag ids resolved.
type NoteWithTags = core.NoteWithTags

// NoteFilter selects notes by title and tags.
type NoteFilter = core.NoteFilter

// Config is the content of a vault's wiki.toml.
type Config = platform.Config

// ConfigFilename is the optional per-vault configuration file.
const ConfigFilename = platform.ConfigFilename

// --- Configuration ---

// Option defines a functional option for configuring the wiki.
type Option = platform.Option

// WithAutoInit enables automatic initialization of the vault (creates directory and git init).
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithVersioning enables or disables version control (e.g. Git).
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly rejects all mutations and skips vault initialization.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the `go run` sandbox.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore allows injecting a custom storage adapter.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithAdapter selects the storage adapter by name ("fs", "sqlite", "memory").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithFormat selects the slot encoding ("json" or "yaml").
func WithFormat(format string) Option {
	return platform.WithFormat(format)
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".wiki").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithDatabase sets the SQLite database file.
func WithDatabase(path string) Option {
	return platform.WithDatabase(path)
}

// WithEventBuffer sets the per-subscriber event buffer size.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithIDGenerator replaces the UUID generator for new notes and tags.
func WithIDGenerator(fn func() string) Option {
	return platform.WithIDGenerator(fn)
}

// WithWatcherErrorHandler registers a callback for background watcher errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New opens (or creates) a vault and returns its service.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// Init initializes a store explicitly.
func Init(path string, opts ...Option) (core.Store, error) {
	return platform.Init(path, opts...)
}

// LoadConfig reads a wiki.toml file.
func LoadConfig(path string) (*Config, error) {
	return platform.LoadConfig(path)
}

// --- Operations ---

// Sync performs a synchronization (pull/push) of the vault.
func Sync(path string, opts ...Option) error {
	return platform.Sync(path, opts...)
}

// --- Safety & Utils ---

// ResolveVaultPath determines the actual path for the vault based on safety rules.
func ResolveVaultPath(userPath string, forceTemp bool) string {
	return platform.ResolveVaultPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindVaultRoot recursively looks upwards for a vault root indicator.
func FindVaultRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// --- Semantic Commits ---

const (
	CommitTypeFeat     = platform.CommitTypeFeat
	CommitTypeFix      = platform.CommitTypeFix
	CommitTypeDocs     = platform.CommitTypeDocs
	CommitTypeStyle    = platform.CommitTypeStyle
	CommitTypeRefactor = platform.CommitTypeRefactor
	CommitTypePerf     = platform.CommitTypePerf
	CommitTypeTest     = platform.CommitTypeTest
	CommitTypeChore    = platform.CommitTypeChore
)

// ChangeReason is a structured Conventional Commit message; see String.
type ChangeReason = platform.ChangeReason

// FormatChangeReason builds a Conventional Commit message.
func FormatChangeReason(ctype, scope, subject, body string) string {
	return platform.FormatChangeReason(ctype, scope, subject, body)
}

// AppendFooter appends the wiki footer to an arbitrary message.
func AppendFooter(msg string) string {
	return platform.AppendFooter(msg)
}
