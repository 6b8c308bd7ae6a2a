package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-fighter/internal/config"
	"github.com/vovakirdan/tui-fighter/internal/input"
	"github.com/vovakirdan/tui-fighter/internal/platform/tui"
	"github.com/vovakirdan/tui-fighter/internal/roster"
	"github.com/vovakirdan/tui-fighter/internal/session"
)

var (
	flagServer      string
	flagOffline     bool
	flagCharacter   string
	flagSuperArt    int
	flagGamepadFeed string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Pick a loadout and fight",
	Long: `Open the character select screen, then fight the engine.

Controls:
  W/A/S/D      - Up/Left/Down/Right
  J/K/L        - Light/Medium/Heavy punch
  U/I/O        - Light/Medium/Heavy kick
  ?            - Show move list
  F            - Flip facing
  Enter        - Restart the match
  Esc          - Back to character select
  Ctrl+C       - Quit

Without an engine connection the client runs offline: moves are still
recognized and shown, nothing is sent.

Gamepad input is read from --gamepad-feed, a file or FIFO carrying one
JSON state per line, e.g.
  {"connected":true,"axes":[0,0],"buttons":[true,false,...]}

Examples:
  fighter play
  fighter play --character Ryu --super-art 3
  fighter play --server ws://game.local:8000/ws
  fighter play --offline
  fighter play --gamepad-feed /tmp/pad.fifo`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagServer, "server", "", "Engine WebSocket URL (overrides config)")
	playCmd.Flags().BoolVar(&flagOffline, "offline", false, "Practice without an engine connection")
	playCmd.Flags().StringVar(&flagCharacter, "character", "", "Player 1 character (overrides config)")
	playCmd.Flags().IntVar(&flagSuperArt, "super-art", 0, "Player 1 super art slot (overrides config)")
	playCmd.Flags().StringVar(&flagGamepadFeed, "gamepad-feed", "", "Read gamepad states from this file or FIFO")
}

// sessionSettings converts the configured loadout to session settings.
func sessionSettings(cfg config.Config) session.Settings {
	return session.Settings{
		Player1:    cfg.Player1.Settings(),
		Player2:    cfg.Player2.Settings(),
		Difficulty: string(cfg.Difficulty),
		HumanVsLLM: cfg.HumanVsLLM,
	}
}

func runPlay(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if flagServer != "" {
		cfg.Server.URL = flagServer
	}
	if flagCharacter != "" {
		c, err := roster.Lookup(flagCharacter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Run 'fighter characters' to see playable characters.")
			os.Exit(1)
		}
		cfg.Player1.Character = c.Name
	}
	if flagSuperArt != 0 {
		cfg.Player1.SuperArt = flagSuperArt
	}

	logger, closeLog := newLogger(cfg, true)
	defer closeLog()

	// Get terminal size early for the select screen
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	online := !flagOffline && cfg.Server.URL != ""
	data := loadMoves(cfg, logger, online)

	// Open statistics storage; play still works without it
	store := openStore(cfg, logger)

	opts := session.Options{
		Moves:        data,
		Settings:     sessionSettings(cfg),
		ComboTimeout: cfg.Input.ComboTimeout,
		HistoryLimit: cfg.Input.HistoryLimit,
		Logger:       logger,
	}
	if store != nil {
		opts.Recorder = store
	}

	sess, err := session.New(opts)
	if err != nil {
		if store != nil {
			store.Close()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if online {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.DialTimeout)
		if _, dialErr := sess.Dial(ctx, cfg.Server.URL); dialErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: engine unavailable, practicing offline: %v\n", dialErr)
			logger.Warn("engine unavailable", "url", cfg.Server.URL, "error", dialErr)
		}
		cancel()
	}

	if flagGamepadFeed != "" {
		if err := startGamepad(sess, cfg, flagGamepadFeed, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: gamepad disabled: %v\n", err)
		}
	}

	// Run the client
	runErr := tui.Run(sess, store, tui.SessionModelOptions{
		Keys:   cfg.Input.KeyTiming(),
		Width:  width,
		Height: height,
	})

	// Close session and store before potential exit
	sess.Close()
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running client: %v\n", runErr)
		os.Exit(1)
	}
}

// startGamepad polls the gamepad feed at path until the session closes.
func startGamepad(sess *session.Session, cfg config.Config, path string, logger *log.Logger) error {
	f, err := os.Open(config.ExpandHome(path))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		src := input.NewStreamSource(f)
		if err := sess.Dispatcher().PollGamepad(ctx, src, cfg.Input.GamepadPoll, cfg.Input.GamepadThreshold); err != nil {
			logger.Warn("gamepad feed ended", "path", path, "error", err)
		}
	}()
	sess.OnClose(func() {
		cancel()
		f.Close()
		<-done
	})
	return nil
}
