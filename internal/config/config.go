// Package config provides YAML-based client configuration loading and
// difficulty presets for the fighter client.
package config

import (
	"fmt"
	"time"

	"github.com/vovakirdan/tui-fighter/internal/core"
	"github.com/vovakirdan/tui-fighter/internal/input"
	"github.com/vovakirdan/tui-fighter/internal/roster"
)

// Config contains all configuration for the client.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Input      InputConfig      `yaml:"input"`
	Player1    PlayerConfig     `yaml:"player1"`
	Player2    PlayerConfig     `yaml:"player2"`
	Difficulty DifficultyPreset `yaml:"difficulty"`
	HumanVsLLM bool             `yaml:"human_vs_llm"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig defines where the game engine and the SSH front end live.
type ServerConfig struct {
	URL         string        `yaml:"url"`       // engine WebSocket endpoint
	MovesURL    string        `yaml:"moves_url"` // extra-moves HTTP endpoint
	DialTimeout time.Duration `yaml:"dial_timeout"`
	SSH         SSHConfig     `yaml:"ssh"`
}

// SSHConfig defines the SSH server used by `serve`.
type SSHConfig struct {
	Address     string        `yaml:"address"`
	HostKeyPath string        `yaml:"host_key"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// InputConfig defines recognizer and input device parameters.
type InputConfig struct {
	ComboTimeout     time.Duration `yaml:"combo_timeout"`
	HistoryLimit     int           `yaml:"history_limit"`
	HoldWindow       time.Duration `yaml:"hold_window"`       // release after the last auto-repeat
	FirstHoldWindow  time.Duration `yaml:"first_hold_window"` // release a key that never repeated
	GamepadThreshold float64       `yaml:"gamepad_threshold"` // analog stick dead zone
	GamepadPoll      time.Duration `yaml:"gamepad_poll"`
}

// KeyTiming returns the keyboard release emulation.
func (c InputConfig) KeyTiming() input.KeyTiming {
	return input.KeyTiming{HoldWindow: c.HoldWindow, FirstHoldWindow: c.FirstHoldWindow}
}

// PlayerConfig is a player's loadout.
type PlayerConfig struct {
	Character string `yaml:"character"`
	Outfit    int    `yaml:"outfit"`
	SuperArt  int    `yaml:"super_art"`
}

// Settings converts the loadout to its wire form.
func (p PlayerConfig) Settings() core.PlayerSettings {
	return core.PlayerSettings{Character: p.Character, Outfit: p.Outfit, SuperArt: p.SuperArt}
}

// StorageConfig defines the statistics database.
type StorageConfig struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// LogConfig defines log output.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // TUI log file; stderr corrupts the alt screen
}

// Validate checks values the client cannot run with.
func (c Config) Validate() error {
	for i, p := range []PlayerConfig{c.Player1, c.Player2} {
		if !roster.Exists(p.Character) {
			return fmt.Errorf("config: player%d: unknown character %q", i+1, p.Character)
		}
		if !roster.ValidSuperArt(p.SuperArt) {
			return fmt.Errorf("config: player%d: super_art %d out of range", i+1, p.SuperArt)
		}
		if !roster.ValidOutfit(p.Outfit) {
			return fmt.Errorf("config: player%d: outfit %d out of range", i+1, p.Outfit)
		}
	}
	if !c.Difficulty.Valid() {
		return fmt.Errorf("config: unknown difficulty %q", c.Difficulty)
	}
	if c.Input.ComboTimeout <= 0 {
		return fmt.Errorf("config: combo_timeout must be positive")
	}
	if c.Input.GamepadThreshold <= 0 || c.Input.GamepadThreshold >= 1 {
		return fmt.Errorf("config: gamepad_threshold must be in (0, 1)")
	}
	return nil
}
