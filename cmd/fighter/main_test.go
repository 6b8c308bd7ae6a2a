package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-fighter/internal/config"
	"github.com/vovakirdan/tui-fighter/internal/session"
)

func TestSessionSettingsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Player1.Character = "Gouki"
	cfg.Player1.SuperArt = 2
	cfg.Difficulty = config.DifficultyExpert
	cfg.HumanVsLLM = false

	st := sessionSettings(cfg)
	assert.Equal(t, "Gouki", st.Player1.Character)
	assert.Equal(t, 2, st.Player1.SuperArt)
	assert.Equal(t, "expert", st.Difficulty)
	assert.False(t, st.HumanVsLLM)

	s, err := session.New(session.Options{Settings: st})
	require.NoError(t, err)
	defer s.Close()
	assert.False(t, s.Settings().HumanVsLLM, "explicit LLM-vs-LLM survives defaults")
}

func TestNewLoggerWritesFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.File = filepath.Join(t.TempDir(), "logs", "fighter.log")
	cfg.Log.Level = "debug"

	logger, closeLog := newLogger(cfg, true)
	defer closeLog()
	assert.Equal(t, log.DebugLevel, logger.GetLevel())
	assert.FileExists(t, cfg.Log.File)
}

func TestLoadMovesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moves.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`combos:
  Ken:
    Target Combo:
      left: [9, 10]
      right: [9, 10]
`), 0o644))

	flagMoves = path
	defer func() { flagMoves = "" }()

	cfg := config.DefaultConfig()
	logger, closeLog := newLogger(cfg, false)
	defer closeLog()

	data := loadMoves(cfg, logger, false)
	require.Len(t, data.Combos["Ken"], 1)
	assert.Equal(t, "Target Combo", data.Combos["Ken"][0].Key)
}

func TestPortOf(t *testing.T) {
	assert.Equal(t, "23234", portOf(":23234"))
	assert.Equal(t, "2222", portOf("0.0.0.0:2222"))
	assert.Equal(t, "nonsense", portOf("nonsense"))
}
