// Root command for the kbase CLI.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/kbase/internal/logging"
	"github.com/mesh-intelligence/kbase/internal/paths"
	"github.com/mesh-intelligence/kbase/pkg/kbase"
	"github.com/mesh-intelligence/kbase/pkg/storage"
	"github.com/mesh-intelligence/kbase/pkg/types"
)

// app holds global flag values and the state loaded by the root command.
// Each root command owns one app, so tests can build fresh command trees.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool

	cfg    *viper.Viper
	logger *zap.Logger
}

// newRootCmd creates the top-level "kbase" command with global flags and
// all subcommands registered.
func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:     "kbase",
		Short:   "Manage object type schemas in an embedded store",
		Long:    "kbase defines object types (named sets of typed attributes) and\npersists them in an embedded SQLite or in-memory store.",
		Version: kbase.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: ./.kbase or the user config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: ./.kbase-db or the user data dir)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output as JSON")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging in development format")

	root.AddCommand(
		newVersionCmd(a),
		newInitCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newAddAttributeCmd(a),
		newDataTypesCmd(a),
		newSchemaCmd(a),
		newValidateCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newServeCmd(a),
	)
	return root
}

// loadConfig resolves the config directory and reads config.yaml.
func (a *app) loadConfig() error {
	dir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return sysError("resolve config dir: %w", err)
	}
	a.configDir = dir

	cfg, err := loadConfig(dir)
	if err != nil {
		return userError("%w", err)
	}
	a.cfg = cfg
	return nil
}

// resolveDataDir applies --data-dir > config data_dir > KBASE_DATA_DIR >
// default.
func (a *app) resolveDataDir() (string, error) {
	dir, err := paths.ResolveDataDir(a.dataDir, a.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return "", sysError("resolve data dir: %w", err)
	}
	return dir, nil
}

// storeConfig returns the backend configuration for this invocation.
func (a *app) storeConfig() (types.Config, error) {
	backend := a.cfg.GetString(cfgKeyBackend)
	cfg := types.Config{Backend: backend}
	if err := cfg.Validate(); err != nil {
		return cfg, userError("backend %q: %w", backend, err)
	}
	if backend == types.BackendSQLite {
		dir, err := a.resolveDataDir()
		if err != nil {
			return cfg, err
		}
		cfg.DataDir = dir
	}
	return cfg, nil
}

// buildLogger returns the process logger, building it on first use.
func (a *app) buildLogger() (*zap.Logger, error) {
	if a.logger != nil {
		return a.logger, nil
	}
	level := a.cfg.GetString(cfgKeyLogLevel)
	if a.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, a.verbose)
	if err != nil {
		return nil, userError("%s: %w", cfgKeyLogLevel, err)
	}
	a.logger = logger
	return logger, nil
}

// openStore opens the configured backend. The caller must Close the store.
// The engine connects on the first operation.
func (a *app) openStore() (types.Store, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, err
	}
	logger, err := a.buildLogger()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(cfg, logger.Sugar())
	if err != nil {
		return nil, sysError("open store: %w", err)
	}
	return store, nil
}

// storeError classifies an error returned by a Store operation.
func storeError(op string, err error) error {
	if errors.Is(err, types.ErrInvalidName) {
		return userError("%s: %w", op, err)
	}
	return sysError("%s: %w", op, err)
}

// notFound reports a missing object type as a user error.
func notFound(name string) error {
	return userError("object type %q not found", name)
}

// describe formats a one-line summary of an object type.
func describe(ot *types.ObjectType) string {
	return fmt.Sprintf("%s (%d attributes)", ot.Name(), len(ot.Attributes()))
}
