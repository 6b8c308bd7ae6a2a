package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-fighter/internal/platform/tui"
	"github.com/vovakirdan/tui-fighter/internal/session"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagEngine      string
	flagNoEngine    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the fighter SSH server",
	Long: `Start an SSH server that lets users connect and fight from any terminal.

Each SSH connection gets its own session: its own loadout, move
recognizer and engine connection. Statistics are stored per server.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.fighter/host_key

Examples:
  fighter serve                           # Listen on :23234 with auto-generated key
  fighter serve --ssh :2222               # Listen on port 2222
  fighter serve --host-key ./my_host_key  # Use specific host key
  fighter serve --engine ws://game:8000/ws
  fighter serve --no-engine               # Offline practice only

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, overrides config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes before disconnecting (overrides config)")
	serveCmd.Flags().StringVar(&flagEngine, "engine", "", "Engine WebSocket URL each session dials (overrides config)")
	serveCmd.Flags().BoolVar(&flagNoEngine, "no-engine", false, "Do not dial the engine; sessions practice offline")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	logger, closeLog := newLogger(cfg, false)
	defer closeLog()

	srvCfg := tui.DefaultSSHServerConfig()
	srvCfg.Address = cfg.Server.SSH.Address
	srvCfg.HostKeyPath = cfg.Server.SSH.HostKeyPath
	srvCfg.IdleTimeout = cfg.Server.SSH.IdleTimeout
	srvCfg.EngineURL = cfg.Server.URL
	srvCfg.DialTimeout = cfg.Server.DialTimeout
	srvCfg.Keys = cfg.Input.KeyTiming()
	srvCfg.Session = session.Options{
		Settings:     sessionSettings(cfg),
		ComboTimeout: cfg.Input.ComboTimeout,
		HistoryLimit: cfg.Input.HistoryLimit,
	}

	if flagSSHAddr != "" {
		srvCfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		srvCfg.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		srvCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	}
	if flagEngine != "" {
		srvCfg.EngineURL = flagEngine
	}
	if flagNoEngine {
		srvCfg.EngineURL = ""
	}

	data := loadMoves(cfg, logger, srvCfg.EngineURL != "")

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	server, err := tui.NewSSHServer(srvCfg, data, store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting fighter SSH server on %s\n", server.Addr())
	fmt.Printf("Connect with: ssh localhost -p %s\n", portOf(server.Addr()))
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// portOf returns the port part of a host:port address.
func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
