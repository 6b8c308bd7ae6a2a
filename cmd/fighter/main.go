// fighter is a terminal client for an LLM-driven fighting game engine.
// It recognizes special moves and combos from keyboard or gamepad input
// and streams every action to the engine.
//
// Usage:
//
//	fighter characters          - List playable characters
//	fighter moves <character>   - Show a character's move list
//	fighter play                - Pick a loadout and fight
//	fighter serve               - Start SSH server for remote play
//	fighter stats [character]   - Show practice statistics
//
// Global flags:
//
//	--config <path>     - Client config YAML (default: ~/.fighter/config.yaml)
//	--db <path>         - Statistics database path
//	--moves <path>      - Load move data from a JSON or YAML file
//	--log-level <level> - debug, info, warn or error
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-fighter/internal/config"
	"github.com/vovakirdan/tui-fighter/internal/movedata"
	"github.com/vovakirdan/tui-fighter/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagMoves    string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fighter",
	Short: "TUI Fighter - Fight an LLM from your terminal",
	Long: `TUI Fighter is a terminal client for the fighting game engine.
It turns keyboard or gamepad input into engine actions and recognizes
special moves, super arts and combos as you play.

Available commands:
  characters - Show all playable characters
  moves      - Show a character's move list
  play       - Pick a loadout and fight
  serve      - Start SSH server for remote play
  stats      - View practice statistics

Examples:
  fighter characters
  fighter moves Ken --super-art 3
  fighter play --character Ryu
  fighter play --offline
  fighter serve --ssh :2222
  fighter stats Ken`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to client config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to statistics database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagMoves, "moves", "", "Load move data from a JSON or YAML file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(charactersCmd)
	rootCmd.AddCommand(movesCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
}

// loadConfig loads the client config and applies global flag overrides.
func loadConfig() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
		cfg.Storage.Enabled = true
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg
}

// newLogger builds the process logger. Full-screen commands log to the
// configured file since stderr output would corrupt the alt screen.
func newLogger(cfg config.Config, toFile bool) (*log.Logger, func()) {
	var w io.Writer = os.Stderr
	closeFn := func() {}

	if toFile {
		w = io.Discard
		if cfg.Log.File != "" {
			path := config.ExpandHome(cfg.Log.File)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
				if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
					w = f
					closeFn = func() { f.Close() }
				}
			}
		}
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "fighter",
	})
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger, closeFn
}

// loadMoves returns the move data from --moves, the engine's HTTP
// endpoint, or the bundled defaults, in that order. Malformed entries are
// dropped with a warning.
func loadMoves(cfg config.Config, logger *log.Logger, online bool) *movedata.ExtraMoves {
	var (
		data *movedata.ExtraMoves
		err  error
	)

	switch {
	case flagMoves != "":
		data, err = movedata.LoadFile(flagMoves)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case online && cfg.Server.MovesURL != "":
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.DialTimeout)
		data, err = movedata.Fetch(ctx, nil, cfg.Server.MovesURL)
		cancel()
		if err != nil {
			logger.Warn("using bundled move data", "error", err)
			data = nil
		}
	}

	if data == nil {
		data, err = movedata.Default()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading bundled move data: %v\n", err)
			os.Exit(1)
		}
	}
	return movedata.Sanitize(data, logger)
}

// openStore opens the statistics database. It returns nil when statistics
// are disabled or the database cannot be opened; play continues without it.
func openStore(cfg config.Config, logger *log.Logger) *storage.Store {
	if !cfg.Storage.Enabled || cfg.Storage.Path == "" {
		return nil
	}
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Warn("statistics disabled", "error", err)
		return nil
	}
	return store
}
