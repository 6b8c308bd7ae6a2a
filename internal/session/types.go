// Package session owns the state of one client: the selected loadout, the
// move recognizer, the engine connection and the practice log. A Session is
// built once per client (per SSH connection when serving) and closed
// explicitly; nothing here is process-global.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-fighter/internal/core"
)

// ID uniquely identifies a client session.
type ID string

// NewID returns a random session ID.
func NewID() ID {
	return ID(uuid.NewString())
}

// Difficulty presets understood by the engine.
var Difficulties = []string{"basic", "advanced", "expert"}

// Settings is the loadout sent with start_game.
type Settings struct {
	Player1    core.PlayerSettings
	Player2    core.PlayerSettings
	Difficulty string
	HumanVsLLM bool
	Facing     core.Facing
}

// DefaultSettings returns Ken vs Ryu on basic difficulty.
func DefaultSettings() Settings {
	return Settings{
		Player1:    core.DefaultPlayerSettings("Ken"),
		Player2:    core.DefaultPlayerSettings("Ryu"),
		Difficulty: Difficulties[0],
		HumanVsLLM: true,
		Facing:     core.FacingRight,
	}
}

// Recorder persists detections and match results.
// This allows the session to log practice data without depending on storage.
type Recorder interface {
	RecordDetection(rec DetectionRecord) error
	RecordMatch(rec MatchRecord) error
}

// DetectionRecord is one recognized move.
type DetectionRecord struct {
	SessionID string
	Character string
	MoveType  string
	MoveName  string
	At        time.Time
}

// MatchRecord is the result of one finished match.
type MatchRecord struct {
	SessionID string
	Character string
	Opponent  string
	Winner    string
	Won       bool
	Score1    int
	Score2    int
	Status    string
}
