// Toss command removes a depleted item's entry.
package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/freezer/pkg/types"
)

var tossCmd = &cobra.Command{
	Use:   "toss <name>",
	Short: "Remove a depleted item from the list",
	Long: `Toss removes an item's entry from the freezer list. Only depleted items
(zero in stock) can be tossed; eat the remaining stock first.

Example:
  freezer toss pizza
  freezer toss pizza --json`,
	Args: cobra.ExactArgs(1),
	RunE: runToss,
}

func runToss(cmd *cobra.Command, args []string) error {
	name := types.NormalizeName(args[0])

	if err := controller.Delete(name); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("item %q not found", name)
		}
		if errors.Is(err, types.ErrNotDepleted) {
			return fmt.Errorf("toss rejected: %w", err)
		}
		return fmt.Errorf("toss: %w", err)
	}

	if flagJSON {
		result := map[string]string{
			"tossed": name,
			"status": "success",
		}
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Println(string(output))
	} else {
		fmt.Printf("Tossed %s.\n", name)
	}

	return nil
}
