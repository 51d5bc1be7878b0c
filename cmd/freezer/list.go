// List command shows the current freezer contents.
package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/freezer/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the freezer contents",
	Long: `List shows every item in the freezer, including depleted ones awaiting
a toss.

Example:
  freezer list
  freezer list --json`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	items, err := controller.List()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	if flagJSON {
		output, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal items: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	printItemTable(items)
	return nil
}

// printItemTable prints items in a human-readable table format.
func printItemTable(items []*types.Item) {
	if len(items) == 0 {
		fmt.Println("The freezer is empty. Add something with \"freezer add\".")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "NAME\tQTY\tSTATE\tUPDATED")
	fmt.Fprintln(w, "----\t---\t-----\t-------")
	for _, item := range items {
		// Truncate name if too long
		name := item.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			name,
			item.Quantity,
			item.State(),
			item.UpdatedAt.Format("2006-01-02"),
		)
	}
	w.Flush()

	// Print output, trimming trailing whitespace from each line
	output := sb.String()
	for _, line := range strings.Split(output, "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}

	fmt.Printf("Total: %d item(s)\n", len(items))
}
