package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/tui-fighter/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreTopMoves(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	save := func(character, typ, name string, at time.Time) {
		t.Helper()
		if _, err := store.SaveDetection(Detection{
			SessionID: "s1", Character: character, MoveType: typ, MoveName: name, CreatedAt: at,
		}); err != nil {
			t.Fatalf("SaveDetection() failed: %v", err)
		}
	}

	save("Ken", "Combo", "Target Combo", base)
	save("Ken", "Combo", "Target Combo", base.Add(time.Second))
	save("Ken", "Combo", "Target Combo", base.Add(2*time.Second))
	save("Ken", "SuperArt", "1 Shoryu-Reppa", base.Add(3*time.Second))
	save("Ryu", "SuperArt", "1 Shinkuu Hadouken", base)

	moves, err := store.TopMoves("Ken", 10)
	if err != nil {
		t.Fatalf("TopMoves() failed: %v", err)
	}
	if len(moves) != 2 {
		t.Fatalf("Expected 2 Ken moves, got %d", len(moves))
	}
	if moves[0].MoveName != "Target Combo" || moves[0].Count != 3 {
		t.Errorf("Expected Target Combo x3 first, got %+v", moves[0])
	}
	if !moves[0].LastUsed.Equal(base.Add(2 * time.Second)) {
		t.Errorf("Expected last use %v, got %v", base.Add(2*time.Second), moves[0].LastUsed)
	}
	if moves[1].MoveType != "SuperArt" || moves[1].Count != 1 {
		t.Errorf("Unexpected second move: %+v", moves[1])
	}

	limited, err := store.TopMoves("Ken", 1)
	if err != nil {
		t.Fatalf("TopMoves() failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected 1 move with limit, got %d", len(limited))
	}
}

func TestStoreRecentDetections(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"a", "b", "c"} {
		store.SaveDetection(Detection{SessionID: "s", Character: "Ken", MoveType: "Combo", MoveName: name, CreatedAt: base.Add(time.Duration(i) * time.Second)})
	}
	store.SaveDetection(Detection{SessionID: "s", Character: "Ryu", MoveType: "Combo", MoveName: "d", CreatedAt: base})

	recent, err := store.RecentDetections("Ken", 2)
	if err != nil {
		t.Fatalf("RecentDetections() failed: %v", err)
	}
	if len(recent) != 2 || recent[0].MoveName != "c" || recent[1].MoveName != "b" {
		t.Errorf("Expected [c b], got %+v", recent)
	}

	all, err := store.RecentDetections("", 0)
	if err != nil {
		t.Fatalf("RecentDetections() failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Expected 4 detections overall, got %d", len(all))
	}
}

func TestStoreRecorder(t *testing.T) {
	store := openTestStore(t)
	var rec session.Recorder = store

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := rec.RecordDetection(session.DetectionRecord{
		SessionID: "abc", Character: "Ken", MoveType: "Combo", MoveName: "Target Combo", At: at,
	}); err != nil {
		t.Fatalf("RecordDetection() failed: %v", err)
	}
	if err := rec.RecordMatch(session.MatchRecord{
		SessionID: "abc", Character: "Ken", Opponent: "Ryu", Winner: "Player 1 (You)",
		Won: true, Score1: 2, Score2: 1, Status: "finished",
	}); err != nil {
		t.Fatalf("RecordMatch() failed: %v", err)
	}
	if err := rec.RecordMatch(session.MatchRecord{
		SessionID: "abc", Character: "Ken", Opponent: "Ryu", Winner: "Player 2 (LLM)",
		Score1: 0, Score2: 2, Status: "finished",
	}); err != nil {
		t.Fatalf("RecordMatch() failed: %v", err)
	}

	dets, err := store.RecentDetections("Ken", 10)
	if err != nil {
		t.Fatalf("RecentDetections() failed: %v", err)
	}
	if len(dets) != 1 || dets[0].SessionID != "abc" || !dets[0].CreatedAt.Equal(at) {
		t.Errorf("Unexpected detections: %+v", dets)
	}

	matches, err := store.RecentMatches("Ken", 10)
	if err != nil {
		t.Fatalf("RecentMatches() failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	// Same second: newest insert first
	if matches[0].Won || !matches[1].Won {
		t.Errorf("Expected loss then win, got %+v", matches)
	}
	if matches[1].Score1 != 2 || matches[1].Opponent != "Ryu" {
		t.Errorf("Unexpected match row: %+v", matches[1])
	}
}

func TestStoreCharacterStats(t *testing.T) {
	store := openTestStore(t)

	store.SaveDetection(Detection{SessionID: "s", Character: "Ken", MoveType: "Combo", MoveName: "Target Combo"})
	store.SaveDetection(Detection{SessionID: "s", Character: "Ken", MoveType: "Combo", MoveName: "Target Combo"})
	store.SaveMatch(Match{SessionID: "s", Character: "Ken", Opponent: "Ryu", Won: true, Status: "finished"})
	store.SaveMatch(Match{SessionID: "s", Character: "Ken", Opponent: "Ryu", Status: "finished"})
	store.SaveMatch(Match{SessionID: "s", Character: "Yun", Opponent: "Ryu", Won: true, Status: "finished"})

	all, err := store.AllCharacterStats()
	if err != nil {
		t.Fatalf("AllCharacterStats() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected stats for 2 characters, got %d", len(all))
	}
	ken := all["Ken"]
	if ken.Detections != 2 || ken.Matches != 2 || ken.Wins != 1 {
		t.Errorf("Unexpected Ken stats: %+v", ken)
	}
	if ken.LastPlayed.IsZero() {
		t.Error("Expected LastPlayed to be set")
	}
	if all["Yun"].Detections != 0 || all["Yun"].Wins != 1 {
		t.Errorf("Unexpected Yun stats: %+v", all["Yun"])
	}

	empty, err := store.GetCharacterStats("Q")
	if err != nil {
		t.Fatalf("GetCharacterStats() failed: %v", err)
	}
	if empty.Matches != 0 || empty.Character != "Q" {
		t.Errorf("Expected zero stats for Q, got %+v", empty)
	}
}

func TestStoreClearCharacter(t *testing.T) {
	store := openTestStore(t)

	store.SaveDetection(Detection{SessionID: "s", Character: "Ken", MoveType: "Combo", MoveName: "Target Combo"})
	store.SaveMatch(Match{SessionID: "s", Character: "Ken", Opponent: "Ryu", Status: "finished"})
	store.SaveDetection(Detection{SessionID: "s", Character: "Ryu", MoveType: "Combo", MoveName: "x"})

	if err := store.ClearCharacter("Ken"); err != nil {
		t.Fatalf("ClearCharacter() failed: %v", err)
	}

	kenMoves, _ := store.TopMoves("Ken", 10)
	if len(kenMoves) != 0 {
		t.Errorf("Expected 0 Ken moves after clear, got %d", len(kenMoves))
	}
	kenMatches, _ := store.RecentMatches("Ken", 10)
	if len(kenMatches) != 0 {
		t.Errorf("Expected 0 Ken matches after clear, got %d", len(kenMatches))
	}

	ryuMoves, _ := store.TopMoves("Ryu", 10)
	if len(ryuMoves) != 1 {
		t.Errorf("Ryu detections should not be affected by clearing Ken")
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, v := range []any{"2026-03-01 12:00:00.000", "2026-03-01 12:00:00", want} {
		if got := parseTime(v); !got.Equal(want) {
			t.Errorf("parseTime(%v) = %v", v, got)
		}
	}
	if !parseTime(nil).IsZero() {
		t.Error("Expected zero time for nil")
	}
}
