package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-fighter/internal/core"
	"github.com/vovakirdan/tui-fighter/internal/moves"
	"github.com/vovakirdan/tui-fighter/internal/platform/tui"
	"github.com/vovakirdan/tui-fighter/internal/roster"
)

var (
	flagListSuperArt int
	flagListFacing   string
	flagListGamepad  bool
)

var movesCmd = &cobra.Command{
	Use:   "moves <character>",
	Short: "Show a character's move list",
	Long: `Display the super arts and combos the recognizer detects for a
character, with the input sequence for each.

Only super arts for the selected slot are listed, plus the Max variants.

Examples:
  fighter moves Ken
  fighter moves Gouki --super-art 2
  fighter moves Ryu --facing left --gamepad`,
	Args: cobra.ExactArgs(1),
	Run:  runMoves,
}

func init() {
	movesCmd.Flags().IntVar(&flagListSuperArt, "super-art", 1, "Super art slot (1-3)")
	movesCmd.Flags().StringVar(&flagListFacing, "facing", "right", "Facing direction: right or left")
	movesCmd.Flags().BoolVar(&flagListGamepad, "gamepad", false, "Show gamepad button names")
}

func runMoves(cmd *cobra.Command, args []string) {
	c, err := roster.Lookup(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'fighter characters' to see playable characters.")
		os.Exit(1)
	}
	if !roster.ValidSuperArt(flagListSuperArt) {
		fmt.Fprintf(os.Stderr, "Error: super art must be between 1 and %d\n", roster.MaxSuperArt)
		os.Exit(1)
	}

	facing, err := core.ParseFacing(flagListFacing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := loadConfig()
	logger, closeLog := newLogger(cfg, false)
	defer closeLog()
	data := loadMoves(cfg, logger, flagFetch)

	fmt.Println(tui.RenderListing(moves.BuildListing(c.Name, data, facing, flagListSuperArt), flagListGamepad))
}
