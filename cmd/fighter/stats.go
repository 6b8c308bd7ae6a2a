package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-fighter/internal/moves"
	"github.com/vovakirdan/tui-fighter/internal/platform/tui"
	"github.com/vovakirdan/tui-fighter/internal/roster"
	"github.com/vovakirdan/tui-fighter/internal/storage"
)

var (
	flagStatsTUI   bool
	flagStatsLimit int
	flagStatsClear bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [character]",
	Short: "Show practice statistics",
	Long: `Display the most used moves and recent matches for a character,
or a summary of every character when none is given.

Examples:
  fighter stats
  fighter stats Ken
  fighter stats Ken --limit 20
  fighter stats --tui
  fighter stats Ken --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&flagStatsTUI, "tui", false, "Browse statistics interactively")
	statsCmd.Flags().IntVar(&flagStatsLimit, "limit", 10, "Number of moves and matches to show")
	statsCmd.Flags().BoolVar(&flagStatsClear, "clear", false, "Delete the character's statistics")
}

func runStats(cmd *cobra.Command, args []string) {
	character := ""
	if len(args) == 1 {
		c, err := roster.Lookup(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Run 'fighter characters' to see playable characters.")
			os.Exit(1)
		}
		character = c.Name
	}

	cfg := loadConfig()

	// Open statistics storage
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening statistics database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case flagStatsClear:
		if character == "" {
			fmt.Fprintln(os.Stderr, "Error: --clear needs a character")
			os.Exit(1)
		}
		if err := store.ClearCharacter(character); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing statistics: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Statistics for %s cleared.\n", character)

	case flagStatsTUI:
		width, height := 80, 24 // Defaults
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		if character == "" {
			character = cfg.Player1.Character
		}
		if err := tui.RunStats(store, character, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error running statistics: %v\n", err)
			os.Exit(1)
		}

	case character == "":
		printSummary(store)

	default:
		printCharacter(store, character, flagStatsLimit)
	}
}

// printSummary prints one line per character with recorded history.
func printSummary(store *storage.Store) {
	stats, err := store.AllCharacterStats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving statistics: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Practice statistics")
	fmt.Println()

	if len(stats) == 0 {
		fmt.Println("No statistics recorded yet.")
		fmt.Println()
		fmt.Println("Play 'fighter play' and land a combo to start!")
		return
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	// Print header
	fmt.Printf("  %-10s  %-6s  %-7s  %-4s  %s\n", "Character", "Moves", "Matches", "Wins", "Last played")
	fmt.Printf("  %-10s  %-6s  %-7s  %-4s  %s\n", "---------", "-----", "-------", "----", "-----------")

	for _, name := range names {
		st := stats[name]
		fmt.Printf("  %-10s  %-6d  %-7d  %-4d  %s\n", name, st.Detections, st.Matches, st.Wins,
			st.LastPlayed.Local().Format("2006-01-02 15:04"))
	}
}

// printCharacter prints the most used moves and the recent matches of one
// character.
func printCharacter(store *storage.Store, character string, limit int) {
	top, err := store.TopMoves(character, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving moves: %v\n", err)
		os.Exit(1)
	}
	matches, err := store.RecentMatches(character, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving matches: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Practice statistics - %s\n", character)
	fmt.Println()

	if len(top) == 0 && len(matches) == 0 {
		fmt.Println("No statistics recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'fighter play --character %s' to start!\n", character)
		return
	}

	if len(top) > 0 {
		fmt.Println("Most used moves:")
		fmt.Printf("  %-4s  %-24s  %-9s  %-5s  %s\n", "Rank", "Move", "Type", "Count", "Last used")
		fmt.Printf("  %-4s  %-24s  %-9s  %-5s  %s\n", "----", "----", "----", "-----", "---------")
		for i, mc := range top {
			fmt.Printf("  %-4d  %-24s  %-9s  %-5d  %s\n", i+1, moves.DisplayName(mc.MoveName), mc.MoveType,
				mc.Count, mc.LastUsed.Local().Format("2006-01-02 15:04"))
		}
		fmt.Println()
	}

	if len(matches) > 0 {
		fmt.Println("Recent matches:")
		fmt.Printf("  %-10s  %-6s  %-7s  %s\n", "Opponent", "Result", "Score", "Date")
		fmt.Printf("  %-10s  %-6s  %-7s  %s\n", "--------", "------", "-----", "----")
		for _, m := range matches {
			result := "Lost"
			if m.Won {
				result = "Won"
			}
			fmt.Printf("  %-10s  %-6s  %-7s  %s\n", m.Opponent, result,
				fmt.Sprintf("%d-%d", m.Score1, m.Score2), m.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
	}
}
