package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/wiki/pkg/adapters/fs"
	"github.com/aretw0/wiki/pkg/adapters/memory"
	"github.com/aretw0/wiki/pkg/adapters/sqlite"
	"github.com/aretw0/wiki/pkg/core"
	"github.com/aretw0/wiki/pkg/state"
)

// New opens (or creates) a vault and returns the service owning its collections.
//
//	svc, err := wiki.New("./notes", wiki.WithVersioning(false))
//
// The URI argument is the vault directory for every adapter.
func New(uri string, opts ...Option) (*core.Service, error) {
	o := applyOptions(opts)

	codec, ok := state.CodecFor(o.format)
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", o.format)
	}

	store, err := Init(uri, opts...)
	if err != nil {
		return nil, err
	}

	svcOpts := []core.ServiceOption{
		core.WithLogger(o.logger),
		core.WithCodec(codec),
		core.WithIDGenerator(o.newID),
	}
	if size, ok := o.config["event_buffer"].(int); ok {
		svcOpts = append(svcOpts, core.WithEventBuffer(size))
	}

	return core.NewService(context.Background(), store, svcOpts...), nil
}

// Init prepares the store selected by the options and returns it.
func Init(uri string, opts ...Option) (core.Store, error) {
	o := applyOptions(opts)

	// 1. Check for injected store
	if o.store != nil {
		return o.store, nil
	}

	// 2. Initialize based on Adapter
	var store core.Store
	var err error

	switch o.adapter {
	case "fs":
		store, err = initFS(uri, o)
	case "sqlite":
		store, err = initSQLite(uri, o)
	case "memory":
		readOnly, _ := o.config["read_only"].(bool)
		store = memory.New(memory.WithReadOnly(readOnly))
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	if err != nil {
		return nil, err
	}

	// 3. Run Initialization
	if err := store.Initialize(context.Background()); err != nil {
		if c, ok := store.(core.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}

	return store, nil
}

// resolvePath applies dev-run safety to the user path.
func resolvePath(path string, o *options) (resolved string, useTemp bool) {
	tempDir, _ := o.config["temp_dir"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)

	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	// Read-only access and explicit opt-out bypass the sandbox.
	bypassSafety := isReadOnly || !devSafety

	useTemp = tempDir || (IsDevRun() && !bypassSafety)
	resolved = ResolveVaultPath(path, useTemp)

	if IsDevRun() && o.logger != nil {
		if bypassSafety {
			if isReadOnly {
				o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
			} else {
				o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
			}
		} else {
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolved)
		}
	}

	return resolved, useTemp
}

func systemDir(o *options) string {
	if dir, _ := o.config["system_dir"].(string); dir != "" {
		return dir
	}
	return fs.DefaultSystemDir
}

// initFS handles the initialization logic for the filesystem adapter.
func initFS(path string, o *options) (core.Store, error) {
	codec, ok := state.CodecFor(o.format)
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", o.format)
	}

	autoInit, _ := o.config["auto_init"].(bool)
	gitless, _ := o.config["gitless"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))
	sysDir := systemDir(o)

	resolvedPath, useTemp := resolvePath(path, o)

	// Smart Gitless Detection
	// If "gitless" is not explicitly configured, we detect the environment.
	if _, ok := o.config["gitless"]; !ok {
		if hasFile(resolvedPath, ".git") {
			gitless = false
		} else if autoInit {
			// An existing system dir without .git is a gitless vault;
			// a fresh vault defaults to git.
			gitless = hasFile(resolvedPath, sysDir)
		} else {
			gitless = true
		}

		if gitless && o.logger != nil {
			o.logger.Debug("auto-detected gitless mode", "reason", ".git missing")
		}
	}

	if o.logger != nil && useTemp {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolvedPath)
	}

	return fs.NewStore(fs.Config{
		Path:         resolvedPath,
		AutoInit:     autoInit,
		Gitless:      gitless,
		MustExist:    mustExist || (!autoInit && !useTemp),
		ReadOnly:     isReadOnly,
		Logger:       o.logger,
		SystemDir:    sysDir,
		Ext:          codec.Ext(),
		ErrorHandler: errorHandler,
	}), nil
}

// initSQLite opens the database inside the vault system dir unless an
// explicit database path was configured.
func initSQLite(path string, o *options) (core.Store, error) {
	isReadOnly, _ := o.config["read_only"].(bool)
	autoInit, _ := o.config["auto_init"].(bool)
	resolvedPath, _ := resolvePath(path, o)

	dbPath, _ := o.config["database"].(string)
	if dbPath == "" {
		dbPath = filepath.Join(resolvedPath, systemDir(o), sqlite.DefaultFilename)
	}

	if !autoInit {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database does not exist: %s", dbPath)
		}
	}

	return sqlite.NewStore(sqlite.Config{
		Path:     dbPath,
		ReadOnly: isReadOnly,
		Logger:   o.logger,
	})
}

// Sync synchronizes the vault at the given URI with its remote.
func Sync(uri string, opts ...Option) error {
	o := applyOptions(opts)

	var store core.Store
	if o.store != nil {
		store = o.store
	} else {
		var err error
		switch o.adapter {
		case "fs":
			// For Sync, we expect the vault to exist
			o.config["must_exist"] = true
			store, err = initFS(uri, o)
		default:
			return fmt.Errorf("adapter %s does not support synchronization", o.adapter)
		}
		if err != nil {
			return err
		}
	}

	syncable, ok := store.(core.Syncable)
	if !ok {
		return fmt.Errorf("store does not support synchronization")
	}

	return syncable.Sync(context.Background())
}
