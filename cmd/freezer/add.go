// Add command puts new stock into the freezer.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var addQty int

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add items to the freezer",
	Long: `Add puts the given quantity of an item into the freezer, creating the
item if it is not there yet. Names are case- and whitespace-insensitive:
"pizza" and "Pizza" are the same item.

Example:
  freezer add pizza
  freezer add "chicken pot pie" --qty 4
  freezer add salmon --qty 2 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().IntVar(&addQty, "qty", 1, "quantity to add (minimum 1)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	event, err := controller.Add(args[0], addQty)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	if flagJSON {
		output, err := json.MarshalIndent(event, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Println(string(output))
	} else {
		fmt.Printf("Added %d %s(s), %d in stock.\n", event.Added, event.Name, event.NewTotal)
	}

	return nil
}
