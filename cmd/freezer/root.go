// Root command for the freezer CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/freezer/internal/hosted"
	"github.com/mesh-intelligence/freezer/internal/paths"
	"github.com/mesh-intelligence/freezer/internal/sqlite"
	"github.com/mesh-intelligence/freezer/pkg/freezer"
	"github.com/mesh-intelligence/freezer/pkg/inventory"
	"github.com/mesh-intelligence/freezer/pkg/types"
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
)

// store and controller are initialized by PersistentPreRunE so every
// subcommand runs against an attached backend.
var (
	store      types.Store
	controller *inventory.Controller
)

var rootCmd = &cobra.Command{
	Use:   "freezer",
	Short: "Freezer is a shared freezer inventory manager",
	Long: `Freezer tracks named items and quantities in a shared freezer.

Add stock with "add", take portions out with "eat", and once an item is
gone, confirm its removal with "toss". State lives in an embedded SQLite
database by default, or in a hosted table service for multi-user setups.`,
	Version:            freezer.Version,
	PersistentPreRunE:  openStore,
	PersistentPostRunE: closeStore,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.freezer-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(eatCmd)
	rootCmd.AddCommand(tossCmd)
	rootCmd.AddCommand(listCmd)
}

// openStore loads config and attaches the configured backend.
func openStore(cmd *cobra.Command, args []string) error {
	// Version needs no backend.
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	switch cfg.Backend {
	case types.BackendHosted:
		store = hosted.NewBackend()
	default:
		store = sqlite.NewBackend()
	}

	if err := store.Attach(cfg); err != nil {
		return fmt.Errorf("attach store: %w", err)
	}

	controller = inventory.New(store, cfg.OnDepleted)
	return nil
}

// closeStore detaches the store and releases resources.
func closeStore(cmd *cobra.Command, args []string) error {
	if store != nil {
		return store.Detach()
	}
	return nil
}

// resolveConfig builds the store Config from config.yaml, flags, and env.
func resolveConfig() (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(flagConfigDir)
	if err != nil {
		return types.Config{}, err
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return types.Config{}, err
	}

	dataDir, err := paths.ResolveDataDir(flagDataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, err
	}

	cfg := types.Config{
		Backend:    v.GetString(cfgKeyBackend),
		DataDir:    dataDir,
		Owner:      v.GetString(cfgKeyOwner),
		OnDepleted: v.GetString(cfgKeyOnDepleted),
		Hosted: types.HostedConfig{
			BaseURL: v.GetString(cfgKeyHostedBaseURL),
			Token:   v.GetString(cfgKeyHostedToken),
		},
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
