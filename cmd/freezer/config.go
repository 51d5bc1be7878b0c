// Config loading for the freezer CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys.
	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyOwner         = "owner"
	cfgKeyOnDepleted    = "on_depleted"
	cfgKeyHostedBaseURL = "hosted.base_url"
	cfgKeyHostedToken   = "hosted.token"

	defaultBackend = "sqlite"

	// Env var holding the hosted bearer token, so the credential can stay
	// out of config.yaml.
	envHostedToken = "FREEZER_HOSTED_TOKEN"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Freezer CLI configuration

# Backend selection: sqlite (embedded) or hosted (table service)
backend: sqlite

# Data directory for the sqlite backend (optional; overridable by --data-dir)
# data_dir:

# Owner scoping the inventory; defaults to the shared single-tenant owner
# owner:

# What happens when an item hits zero: retain (keep the row until tossed)
# or delete (remove it immediately)
# on_depleted: retain

# Hosted backend settings; the token can also come from FREEZER_HOSTED_TOKEN
# hosted:
#   base_url:
#   token:
`

// loadConfig reads config.yaml from the resolved config directory using Viper.
// It creates the config directory and a default config.yaml on first run.
// A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	_ = v.BindEnv(cfgKeyHostedToken, envHostedToken)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Missing config.yaml is not an error.
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		// File already exists.
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
