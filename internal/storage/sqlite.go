// Package storage provides SQLite-based persistence for move detections
// and match results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-fighter/internal/session"
)

// timeLayout is how timestamps are written. SQLite's CURRENT_TIMESTAMP
// layout is accepted on read as well.
const timeLayout = "2006-01-02 15:04:05.000"

// Store manages the SQLite database connection for practice statistics.
type Store struct {
	db *sql.DB
}

// Detection is one recognized move.
type Detection struct {
	ID        int64
	SessionID string
	Character string
	MoveType  string // "SuperArt" or "Combo"
	MoveName  string
	CreatedAt time.Time
}

// MoveCount aggregates detections of one move.
type MoveCount struct {
	MoveType string
	MoveName string
	Count    int
	LastUsed time.Time
}

// Match is the outcome of one game against the engine.
type Match struct {
	ID        int64
	SessionID string
	Character string
	Opponent  string
	Winner    string
	Won       bool
	Score1    int
	Score2    int
	Status    string
	CreatedAt time.Time
}

// CharacterStats contains aggregated statistics for a character.
type CharacterStats struct {
	Character  string
	Detections int
	Matches    int
	Wins       int
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS detections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			character TEXT NOT NULL,
			move_type TEXT NOT NULL,
			move_name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_detections_character ON detections(character);
		CREATE INDEX IF NOT EXISTS idx_detections_move ON detections(character, move_name);

		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			character TEXT NOT NULL,
			opponent TEXT NOT NULL,
			winner TEXT NOT NULL DEFAULT '',
			won INTEGER NOT NULL DEFAULT 0,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_character ON matches(character);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveDetection records a recognized move.
// A zero CreatedAt is stored as the current time.
// Returns the ID of the inserted record.
func (s *Store) SaveDetection(d Detection) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO detections (session_id, character, move_type, move_name, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		d.SessionID, d.Character, d.MoveType, d.MoveName, formatTime(d.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save detection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopMoves retrieves the most detected moves for the given character.
// Results are ordered by count descending.
func (s *Store) TopMoves(character string, limit int) ([]MoveCount, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT move_type, move_name, COUNT(*) AS n, MAX(created_at)
		 FROM detections
		 WHERE character = ?
		 GROUP BY move_type, move_name
		 ORDER BY n DESC, move_name ASC
		 LIMIT ?`,
		character, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query moves: %w", err)
	}
	defer rows.Close()

	var counts []MoveCount
	for rows.Next() {
		var c MoveCount
		var lastUsed any
		if err := rows.Scan(&c.MoveType, &c.MoveName, &c.Count, &lastUsed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		c.LastUsed = parseTime(lastUsed)
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return counts, nil
}

// RecentDetections retrieves the latest detections for the given
// character, newest first. An empty character matches all.
func (s *Store) RecentDetections(character string, limit int) ([]Detection, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, character, move_type, move_name, created_at
		 FROM detections
		 WHERE ? = '' OR character = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		character, character, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query detections: %w", err)
	}
	defer rows.Close()

	var detections []Detection
	for rows.Next() {
		var d Detection
		var createdAt any
		if err := rows.Scan(&d.ID, &d.SessionID, &d.Character, &d.MoveType, &d.MoveName, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		d.CreatedAt = parseTime(createdAt)
		detections = append(detections, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return detections, nil
}

// SaveMatch records the result of a game against the engine.
// Returns the ID of the inserted record.
func (s *Store) SaveMatch(m Match) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO matches
		 (session_id, character, opponent, winner, won, score1, score2, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.SessionID,
		m.Character,
		m.Opponent,
		m.Winner,
		m.Won,
		m.Score1,
		m.Score2,
		m.Status,
		formatTime(m.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentMatches retrieves the most recent matches, newest first.
// An empty character matches all.
func (s *Store) RecentMatches(character string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, character, opponent, winner, won,
		        score1, score2, status, created_at
		 FROM matches
		 WHERE ? = '' OR character = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		character, character, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var results []Match
	for rows.Next() {
		var m Match
		var createdAt any
		if err := rows.Scan(
			&m.ID,
			&m.SessionID,
			&m.Character,
			&m.Opponent,
			&m.Winner,
			&m.Won,
			&m.Score1,
			&m.Score2,
			&m.Status,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		m.CreatedAt = parseTime(createdAt)
		results = append(results, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// AllCharacterStats retrieves statistics for every character that has
// detections or matches recorded.
func (s *Store) AllCharacterStats() (map[string]*CharacterStats, error) {
	stats := make(map[string]*CharacterStats)
	get := func(name string) *CharacterStats {
		st, ok := stats[name]
		if !ok {
			st = &CharacterStats{Character: name}
			stats[name] = st
		}
		return st
	}

	rows, err := s.db.Query(
		`SELECT character, COUNT(*), MAX(created_at) FROM detections GROUP BY character`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get detection stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var n int
		var last any
		if err := rows.Scan(&name, &n, &last); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st := get(name)
		st.Detections = n
		st.LastPlayed = latest(st.LastPlayed, parseTime(last))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	mrows, err := s.db.Query(
		`SELECT character, COUNT(*), COALESCE(SUM(won), 0), MAX(created_at) FROM matches GROUP BY character`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get match stats: %w", err)
	}
	defer mrows.Close()
	for mrows.Next() {
		var name string
		var n, wins int
		var last any
		if err := mrows.Scan(&name, &n, &wins, &last); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st := get(name)
		st.Matches = n
		st.Wins = wins
		st.LastPlayed = latest(st.LastPlayed, parseTime(last))
	}
	if err := mrows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// GetCharacterStats retrieves statistics for one character. A character
// with no history yields zero counts.
func (s *Store) GetCharacterStats(character string) (*CharacterStats, error) {
	all, err := s.AllCharacterStats()
	if err != nil {
		return nil, err
	}
	if st, ok := all[character]; ok {
		return st, nil
	}
	return &CharacterStats{Character: character}, nil
}

// ClearCharacter deletes all detections and matches for the given character.
func (s *Store) ClearCharacter(character string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM detections WHERE character = ?", character); err != nil {
		return fmt.Errorf("storage: cannot clear detections: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM matches WHERE character = ?", character); err != nil {
		return fmt.Errorf("storage: cannot clear matches: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit: %w", err)
	}
	return nil
}

// RecordDetection implements session.Recorder.
func (s *Store) RecordDetection(rec session.DetectionRecord) error {
	_, err := s.SaveDetection(Detection{
		SessionID: rec.SessionID,
		Character: rec.Character,
		MoveType:  rec.MoveType,
		MoveName:  rec.MoveName,
		CreatedAt: rec.At,
	})
	return err
}

// RecordMatch implements session.Recorder.
func (s *Store) RecordMatch(rec session.MatchRecord) error {
	_, err := s.SaveMatch(Match{
		SessionID: rec.SessionID,
		Character: rec.Character,
		Opponent:  rec.Opponent,
		Winner:    rec.Winner,
		Won:       rec.Won,
		Score1:    rec.Score1,
		Score2:    rec.Score2,
		Status:    rec.Status,
	})
	return err
}

// Ensure Store implements Recorder
var _ session.Recorder = (*Store)(nil)

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

// parseTime handles both time.Time and string column values.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{timeLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
