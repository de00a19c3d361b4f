package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/match"
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
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Parent directories and the file are created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	id, err := store.SaveMatch(MatchResult{Mode: "sim", Player1: "CPU", Player2: "CPU", Backend: "box2d"})
	if err != nil {
		t.Fatalf("SaveMatch() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	got, err := store.MatchByID(id)
	if err != nil || got == nil {
		t.Fatalf("MatchByID() = %v, %v after reopen", got, err)
	}
}

func TestSaveMatchAssignsUUID(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveMatch(MatchResult{
		Mode:         "cpu",
		Player1:      "YOU",
		Player2:      "CPU",
		Score1:       3,
		Score2:       5,
		Winner:       2,
		Hits1:        12,
		Hits2:        14,
		LongestRally: 6,
		Duration:     93.5,
		Backend:      "box2d",
		Seed:         42,
		EndReason:    EndCompleted,
	})
	if err != nil {
		t.Fatalf("SaveMatch() failed: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("match id %q is not a UUID: %v", id, err)
	}

	got, err := store.MatchByID(id)
	if err != nil {
		t.Fatalf("MatchByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("MatchByID() returned nil")
	}
	if got.Score1 != 3 || got.Score2 != 5 || got.Winner != 2 {
		t.Errorf("scores = %d-%d winner %d", got.Score1, got.Score2, got.Winner)
	}
	if got.Duration != 93.5 || got.Seed != 42 || got.Backend != "box2d" {
		t.Errorf("metadata = %v/%d/%q", got.Duration, got.Seed, got.Backend)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestSaveMatchRejectsBadID(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveMatch(MatchResult{MatchID: "not-a-uuid", Mode: "sim"}); err == nil {
		t.Error("SaveMatch() should reject a malformed match id")
	}

	id := uuid.NewString()
	if _, err := store.SaveMatch(MatchResult{MatchID: id, Mode: "sim"}); err != nil {
		t.Fatalf("SaveMatch() failed: %v", err)
	}
	if _, err := store.SaveMatch(MatchResult{MatchID: id, Mode: "sim"}); err == nil {
		t.Error("SaveMatch() should reject a duplicate match id")
	}
}

func TestMatchByIDMissing(t *testing.T) {
	store := openTestStore(t)

	got, err := store.MatchByID(uuid.NewString())
	if err != nil {
		t.Fatalf("MatchByID() failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown match, got %+v", got)
	}
}

func TestRecentMatchesNewestFirst(t *testing.T) {
	store := openTestStore(t)

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := store.SaveMatch(MatchResult{Mode: "sim", Score1: i})
		if err != nil {
			t.Fatalf("SaveMatch() failed: %v", err)
		}
		ids = append(ids, id)
	}

	recent, err := store.RecentMatches(3)
	if err != nil {
		t.Fatalf("RecentMatches() failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(recent))
	}
	if recent[0].MatchID != ids[4] || recent[2].MatchID != ids[2] {
		t.Errorf("unexpected order: %s, %s", recent[0].MatchID, recent[2].MatchID)
	}

	all, err := store.RecentMatches(0)
	if err != nil {
		t.Fatalf("RecentMatches(0) failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("default limit should return all 5, got %d", len(all))
	}
}

func TestTotals(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.Totals()
	if err != nil {
		t.Fatalf("Totals() on empty store failed: %v", err)
	}
	if empty.Matches != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("empty totals = %+v", empty)
	}

	results := []MatchResult{
		{Mode: "cpu", Score1: 5, Score2: 2, Winner: 1, Hits1: 10, Hits2: 8, LongestRally: 4, Duration: 60},
		{Mode: "cpu", Score1: 1, Score2: 5, Winner: 2, Hits1: 3, Hits2: 6, LongestRally: 9, Duration: 40},
		{Mode: "local", Score1: 2, Score2: 2, Hits1: 1, Hits2: 1, LongestRally: 2, Duration: 12.5},
	}
	for _, r := range results {
		if _, err := store.SaveMatch(r); err != nil {
			t.Fatalf("SaveMatch() failed: %v", err)
		}
	}

	got, err := store.Totals()
	if err != nil {
		t.Fatalf("Totals() failed: %v", err)
	}

	want := Totals{Matches: 3, Goals1: 8, Goals2: 9, Wins1: 1, Wins2: 1, Hits: 29, LongestRally: 9, PlayedTime: 112.5}
	got.LastPlayed = want.LastPlayed
	if got != want {
		t.Errorf("Totals() = %+v, expected %+v", got, want)
	}
}

func TestClearMatches(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveMatch(MatchResult{Mode: "sim"}); err != nil {
		t.Fatal(err)
	}
	if err := store.ClearMatches(); err != nil {
		t.Fatalf("ClearMatches() failed: %v", err)
	}

	recent, err := store.RecentMatches(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 0 {
		t.Errorf("expected no matches after clear, got %d", len(recent))
	}
}

func TestFromSummary(t *testing.T) {
	s := match.Summary{
		Score1: 5, Score2: 3, Winner: core.Player1,
		Hits1: 7, Hits2: 6, LongestRally: 4,
		Duration: 30, Backend: "kinematic", Seed: 9,
	}

	r := FromSummary(s, "cpu", "YOU", "CPU")
	if r.EndReason != EndCompleted || r.Winner != 1 {
		t.Errorf("won match: reason %q winner %d", r.EndReason, r.Winner)
	}
	if r.Mode != "cpu" || r.Player2 != "CPU" || r.Backend != "kinematic" || r.Seed != 9 {
		t.Errorf("unexpected result %+v", r)
	}

	s.Winner = core.NoPlayer
	if r := FromSummary(s, "cpu", "YOU", "CPU"); r.EndReason != EndQuit || r.Winner != 0 {
		t.Errorf("unfinished match: reason %q winner %d", r.EndReason, r.Winner)
	}
}
