// Eat command takes portions of an item out of the freezer.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/freezer/pkg/types"
)

var eatQty int

var eatCmd = &cobra.Command{
	Use:   "eat <name>",
	Short: "Take items out of the freezer",
	Long: `Eat removes the given quantity of an item from the freezer. The amount
must not exceed what is in stock. When the last portion goes, the item is
marked depleted and restock search links are shown; use "toss" to remove
the entry for good.

Example:
  freezer eat pizza
  freezer eat salmon --qty 2`,
	Args: cobra.ExactArgs(1),
	RunE: runEat,
}

func init() {
	eatCmd.Flags().IntVar(&eatQty, "qty", 1, "quantity to remove (minimum 1)")
}

// eatResult is the JSON shape for eat output.
type eatResult struct {
	Item     *types.Item          `json:"item,omitempty"`
	Depleted *types.DepletedEvent `json:"depleted,omitempty"`
}

func runEat(cmd *cobra.Command, args []string) error {
	item, depleted, err := controller.Remove(args[0], eatQty)
	if err != nil {
		return fmt.Errorf("eat: %w", err)
	}

	if flagJSON {
		output, err := json.MarshalIndent(eatResult{Item: item, Depleted: depleted}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	if depleted == nil {
		fmt.Printf("Ate %d %s(s), %d left.\n", eatQty, item.Name, item.Quantity)
		return nil
	}

	fmt.Printf("The %s is officially gone.\n", depleted.Name)
	fmt.Println("Restock ideas:")
	for _, link := range depleted.SearchLinks {
		fmt.Printf("  %s\n", link)
	}
	if item != nil {
		fmt.Printf("Run \"freezer toss %s\" to remove it from the list.\n", depleted.Name)
	}
	return nil
}
