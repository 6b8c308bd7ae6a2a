package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-fighter/internal/roster"
)

var flagFetch bool

var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "List all playable characters",
	Long: `Shows every character the engine can load, with the number of
combos and super arts in the move data.

Examples:
  fighter characters
  fighter characters --fetch`,
	Run: runCharacters,
}

func init() {
	charactersCmd.Flags().BoolVar(&flagFetch, "fetch", false, "Fetch move data from the engine instead of using the bundled copy")
	movesCmd.Flags().BoolVar(&flagFetch, "fetch", false, "Fetch move data from the engine instead of using the bundled copy")
}

func runCharacters(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	logger, closeLog := newLogger(cfg, false)
	defer closeLog()
	data := loadMoves(cfg, logger, flagFetch)

	characters := roster.List()

	fmt.Println("Playable characters:")
	fmt.Println()

	// Calculate column widths
	maxNameLen := 4 // "Name" header
	for _, c := range characters {
		if len(c.Name) > maxNameLen {
			maxNameLen = len(c.Name)
		}
	}

	// Print header
	fmt.Printf("  %-3s  %-*s  %-6s  %s\n", "ID", maxNameLen, "Name", "Combos", "Super arts")
	fmt.Printf("  %-3s  %-*s  %-6s  %s\n", "--", maxNameLen, "----", "------", "----------")

	// Print characters
	for _, c := range characters {
		fmt.Printf("  %-3d  %-*s  %-6d  %d\n", c.ID, maxNameLen, c.Name,
			len(data.Combos[c.Name]), len(data.SpecialMoves[c.Name]))
	}

	fmt.Println()
	fmt.Println("Run 'fighter moves <name>' to see a character's moves.")
}
