// Package tui provides terminal UI components including SSH server support via Wish.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-fighter/internal/input"
	"github.com/vovakirdan/tui-fighter/internal/movedata"
	"github.com/vovakirdan/tui-fighter/internal/session"
	"github.com/vovakirdan/tui-fighter/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.fighter/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// EngineURL is dialed once per SSH session. Empty means offline practice.
	EngineURL   string
	DialTimeout time.Duration

	// Session is the template for every SSH session's settings and timing.
	Session session.Options

	// Keys is the keyboard release emulation.
	Keys input.KeyTiming
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		DialTimeout: 5 * time.Second,
	}
}

// SSHServer wraps a Wish SSH server. Every SSH session gets its own
// session.Session.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	store    *storage.Store
	data     *movedata.ExtraMoves
	sessions *session.Registry
	logger   *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
// store may be nil.
func NewSSHServer(cfg SSHServerConfig, data *movedata.ExtraMoves, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "fighter-ssh",
		})
	}

	srv := &SSHServer{
		config:   cfg,
		store:    store,
		data:     data,
		sessions: session.NewRegistry(),
		logger:   logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("tui: cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".fighter", "host_key")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a session and a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	opts := s.config.Session
	opts.ID = ""
	opts.Moves = s.data
	opts.Logger = s.logger.With("user", sshSession.User())
	if s.store != nil {
		opts.Recorder = s.store
	}

	sess, err := session.New(opts)
	if err != nil {
		s.logger.Error("cannot create session", "user", sshSession.User(), "error", err)
		return nil, nil
	}

	if s.config.EngineURL != "" {
		ctx, cancel := context.WithTimeout(sshSession.Context(), s.config.DialTimeout)
		if _, err := sess.Dial(ctx, s.config.EngineURL); err != nil {
			s.logger.Warn("engine unavailable, practicing offline", "user", sshSession.User(), "error", err)
		}
		cancel()
	}

	s.sessions.Register(sess)
	go func() {
		<-sshSession.Context().Done()
		s.sessions.Unregister(sess.ID())
		sess.Close()
	}()

	model := NewSessionModel(sess, s.store, SessionModelOptions{
		Keys:   s.config.Keys,
		Width:  pty.Window.Width,
		Height: pty.Window.Height,
	})

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...", "sessions", s.sessions.Count())
	return s.Shutdown()
}

// Shutdown gracefully stops the server and closes every live session.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.sessions.CloseAll()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// Sessions returns the number of live SSH sessions.
func (s *SSHServer) Sessions() int {
	return s.sessions.Count()
}

// screen is the SessionModel's active view.
type screen int

const (
	screenSelect screen = iota
	screenFight
	screenStats
)

// SessionModelOptions configures a SessionModel.
type SessionModelOptions struct {
	Keys   input.KeyTiming
	Width  int
	Height int
}

// SessionModel manages the full client flow: menu -> fight -> menu.
// This is the top-level model for both local play and SSH sessions.
type SessionModel struct {
	sess     *session.Session
	store    *storage.Store
	opts     SessionModelOptions
	screen   screen
	menu     SelectModel
	fight    FightModel
	stats    StatsModel
	fightSeq int
	quitting bool
}

// NewSessionModel creates a new session model. store may be nil.
func NewSessionModel(sess *session.Session, store *storage.Store, opts SessionModelOptions) SessionModel {
	return SessionModel{
		sess:  sess,
		store: store,
		opts:  opts,
		menu:  NewSelectModel(sess, opts.Width, opts.Height),
		fight: NewFightModel(sess, opts.Keys, 0, opts.Width, opts.Height),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return tea.Batch(m.menu.Init(), waitForEvent(m.sess))
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Every screen tracks the size
		m.opts.Width, m.opts.Height = msg.Width, msg.Height
		menu, _ := m.menu.Update(msg)
		m.menu = menu.(SelectModel)
		fight, _ := m.fight.Update(msg)
		m.fight = fight.(FightModel)
		if m.screen == screenStats {
			stats, _ := m.stats.Update(msg)
			m.stats = stats.(StatsModel)
		}
		return m, nil

	case session.Event:
		// The fight screen keeps its state while the menu is shown
		m.fight = m.fight.ApplyEvent(msg)
		return m, waitForEvent(m.sess)
	}

	switch m.screen {
	case screenFight:
		return m.updateFight(msg)
	case screenStats:
		return m.updateStats(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	m.menu = newMenu.(SelectModel)

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.Started():
		m.menu.started = false
		m.fightSeq++
		m.fight = NewFightModel(m.sess, m.opts.Keys, m.fightSeq, m.opts.Width, m.opts.Height)
		if err := m.sess.StartGame(); err != nil {
			m.menu.err = err
			return m, nil
		}
		m.screen = screenFight
		return m, m.fight.Init()

	case m.menu.WantsStats():
		m.menu.wantStats = false
		m.stats = NewStatsModel(m.store, m.sess.Settings().Player1.Character, m.opts.Width, m.opts.Height)
		m.screen = screenStats
		return m, m.stats.Init()
	}

	return m, cmd
}

// updateFight handles updates when in fight mode.
func (m SessionModel) updateFight(msg tea.Msg) (tea.Model, tea.Cmd) {
	newFight, cmd := m.fight.Update(msg)
	m.fight = newFight.(FightModel)

	if m.fight.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.fight.BackToMenu() {
		m.fight.backToMenu = false
		// Stop the tick loop
		m.fightSeq++
		m.fight.seq = m.fightSeq
		m.screen = screenSelect
		return m, nil
	}
	return m, cmd
}

// updateStats handles updates when on the statistics screen.
func (m SessionModel) updateStats(msg tea.Msg) (tea.Model, tea.Cmd) {
	newStats, cmd := m.stats.Update(msg)
	m.stats = newStats.(StatsModel)

	if m.stats.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.stats.IsGoingBack() {
		m.screen = screenSelect
		return m, nil
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenFight:
		return m.fight.View()
	case screenStats:
		return m.stats.View()
	default:
		return m.menu.View()
	}
}

// Run starts the Bubble Tea program for a local session.
func Run(sess *session.Session, store *storage.Store, opts SessionModelOptions) error {
	p := tea.NewProgram(
		NewSessionModel(sess, store, opts),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
