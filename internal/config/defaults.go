package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/fighter.yaml
var defaultFighterYAML []byte

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			URL:         "ws://localhost:8000/ws",
			MovesURL:    "http://localhost:8000/api/extra-moves",
			DialTimeout: 5 * time.Second,
			SSH: SSHConfig{
				Address:     ":23234",
				IdleTimeout: 30 * time.Minute,
			},
		},
		Input: InputConfig{
			ComboTimeout:     750 * time.Millisecond,
			HistoryLimit:     20,
			HoldWindow:       90 * time.Millisecond,
			FirstHoldWindow:  500 * time.Millisecond,
			GamepadThreshold: 0.25,
			GamepadPoll:      16 * time.Millisecond,
		},
		Player1:    PlayerConfig{Character: "Ken", Outfit: 1, SuperArt: 1},
		Player2:    PlayerConfig{Character: "Ryu", Outfit: 1, SuperArt: 1},
		Difficulty: DifficultyBasic,
		HumanVsLLM: true,
		Storage: StorageConfig{
			Path:    "~/.fighter/stats.db",
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.fighter/fighter.log",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultFighterYAML
}
