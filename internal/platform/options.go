package platform

import (
	"log/slog"

	"github.com/aretw0/wiki/pkg/core"
)

// options holds the internal configuration for the wiki service.
type options struct {
	store   core.Store
	logger  *slog.Logger
	adapter string
	format  string
	newID   func() string
	config  map[string]any
}

// Option defines a functional option for configuring the wiki.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter: "fs",
		format:  "json",
		config:  make(map[string]any),
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithAutoInit enables automatic initialization of the vault (creates directory and git init).
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.config["auto_init"] = auto
	}
}

// WithVersioning enables or disables version control (e.g. Git).
// When not set, versioning is detected from the vault (a .git directory).
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.config["gitless"] = !enabled
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithLogger sets the logger for the service and its store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore allows injecting a custom storage adapter.
// If provided, the adapter selected by name is skipped.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAdapter selects the storage adapter by name: "fs" (default), "sqlite" or "memory".
func WithAdapter(name string) Option {
	return func(o *options) {
		if name != "" {
			o.adapter = name
		}
	}
}

// WithFormat selects the slot encoding: "json" (default) or "yaml".
func WithFormat(format string) Option {
	return func(o *options) {
		if format != "" {
			o.format = format
		}
	}
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".wiki").
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.config["system_dir"] = name
	}
}

// WithDatabase sets the SQLite database file. Defaults to <vault>/<system dir>/wiki.db.
func WithDatabase(path string) Option {
	return func(o *options) {
		o.config["database"] = path
	}
}

// WithEventBuffer sets the per-subscriber event buffer size.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.config["event_buffer"] = size
	}
}

// WithIDGenerator replaces the UUID generator used for new notes and tags.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// WithWatcherErrorHandler registers a callback for errors raised by background
// store watchers, which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Mutations return core.ErrReadOnly.
// 2. Initialization (Mkdir, Git Init) is skipped.
// 3. Dev Safety Lock (go run temp dir) is BYPASSED (uses real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithDevSafety controls the sandbox used when running via `go run`.
// By default (true), the vault is re-rooted into a temporary directory.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}
