package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/wiki"
	"github.com/aretw0/wiki/pkg/core"
)

// app carries global flags and the state resolved from them.
type app struct {
	verbose      bool
	dir          string
	adapter      string
	format       string
	noVersioning bool
	configPath   string
	message      string

	root   string
	config *wiki.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "wiki",
		Short: "Tagged markdown notes persisted in a local vault",
		Long: `wiki keeps a collection of markdown notes and a registry of tags.
Every change is written straight to the vault (files with optional Git
history, or SQLite), so the vault is always the source of truth.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVarP(&a.dir, "dir", "C", "", "Vault directory (default: nearest vault above the working directory)")
	flags.StringVar(&a.adapter, "adapter", "", "Storage adapter: fs, sqlite or memory")
	flags.StringVar(&a.format, "format", "", "Slot encoding for the fs adapter: json or yaml")
	flags.BoolVar(&a.noVersioning, "no-versioning", false, "Disable Git versioning")
	flags.StringVar(&a.configPath, "config", "", "Path to a wiki.toml (default: <vault>/wiki.toml)")
	flags.StringVarP(&a.message, "message", "m", "", "Change reason recorded in the vault history")

	cmd.AddCommand(
		newInitCmd(a),
		newNoteCmd(a),
		newTagCmd(a),
		newSyncCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)

	return cmd
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup resolves the vault root, loads its config and installs the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	root, err := a.vaultRoot()
	if err != nil {
		return err
	}
	a.root = root

	configPath := a.configPath
	if configPath == "" {
		candidate := filepath.Join(root, wiki.ConfigFilename)
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
		}
	}
	if configPath != "" {
		cfg, err := wiki.LoadConfig(configPath)
		if err != nil {
			return err
		}
		a.config = cfg
	}

	level := slog.LevelInfo
	if a.config != nil {
		level = a.config.Level()
	}
	if a.verbose {
		level = slog.LevelDebug
	}

	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)
	return nil
}

func (a *app) vaultRoot() (string, error) {
	if a.dir != "" {
		return filepath.Abs(a.dir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	root, err := wiki.FindVaultRoot(cwd)
	if err != nil {
		return cwd, nil
	}
	return root, nil
}

// options merges wiki.toml values with flags; flags win.
func (a *app) options(extra ...wiki.Option) []wiki.Option {
	var opts []wiki.Option
	if a.config != nil {
		opts = append(opts, a.config.Options()...)
	}
	if a.adapter != "" {
		opts = append(opts, wiki.WithAdapter(a.adapter))
	}
	if a.format != "" {
		opts = append(opts, wiki.WithFormat(a.format))
	}
	if a.noVersioning {
		opts = append(opts, wiki.WithVersioning(false))
	}
	opts = append(opts, wiki.WithLogger(a.logger))
	return append(opts, extra...)
}

func (a *app) open(extra ...wiki.Option) (*core.Service, error) {
	svc, err := wiki.New(a.root, a.options(extra...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}
	return svc, nil
}

// changeContext carries the commit message for versioned stores.
// An explicit --message takes precedence over the generated one.
func (a *app) changeContext(ctx context.Context, scope, subject string) context.Context {
	msg := wiki.FormatChangeReason(wiki.CommitTypeDocs, scope, subject, "")
	if a.message != "" {
		msg = wiki.AppendFooter(a.message)
	}
	return context.WithValue(ctx, core.ChangeReasonKey, msg)
}

var errNotFound = errors.New("not found")
