// Init command prepares the configured storage.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the freezer storage",
	Long: `Init creates the configuration directory with a default config.yaml and
initializes the configured storage backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The store is already attached by PersistentPreRunE; just confirm.
		fmt.Println("Freezer initialized successfully")
		return nil
	},
}
