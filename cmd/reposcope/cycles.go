package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reposcope/reposcope/internal/cycles"
)

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "Detect circular import dependencies",
	RunE:  runCycles,
}

func runCycles(cmd *cobra.Command, args []string) error {
	g, err := loadGraph()
	if err != nil {
		return err
	}

	result := cycles.Detect(g)
	if jsonOut {
		return printJSON(result)
	}

	fmt.Printf("🔄 Import Cycles\n")
	fmt.Printf("%s\n", strings.Repeat("═", 50))

	if result.TotalCycles == 0 {
		fmt.Printf("\n✅ No import cycles found.\n")
	} else {
		fmt.Printf("\nFound %s affecting %s.\n",
			plural(result.TotalCycles, "cycle"), plural(len(result.AffectedFiles), "file"))
		for i, c := range result.Cycles {
			fmt.Printf("\n%d. [%s] %s\n", i+1, c.Severity, strings.Join(c.Files, " → "))
		}
	}

	fmt.Printf("\n💡 Suggestions:\n")
	for _, s := range result.Suggestions {
		fmt.Printf("  - %s\n", s)
	}
	return nil
}
