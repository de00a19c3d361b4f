// Package storage provides SQLite-based persistence for match results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-pong/internal/match"
)

// Store manages the SQLite database connection for match results.
type Store struct {
	db *sql.DB
}

// End reasons.
const (
	EndCompleted = "completed" // A player reached the win score
	EndQuit      = "quit"      // Stopped before a winner
	EndTimeout   = "timeout"   // Simulation ran out of time
	EndLeft      = "left"      // An online player disconnected or left
)

// MatchResult is one finished (or abandoned) match.
type MatchResult struct {
	ID           int64
	MatchID      string // UUID, assigned by SaveMatch when empty
	Mode         string // "local", "cpu", "ssh", "online", "sim"
	Player1      string
	Player2      string
	Score1       int
	Score2       int
	Winner       int // 0 = none, 1 or 2
	Hits1        int
	Hits2        int
	LongestRally int
	Duration     float64 // Simulated seconds
	Backend      string
	Seed         int64
	EndReason    string
	CreatedAt    time.Time
}

// FromSummary builds a result from a match summary.
func FromSummary(s match.Summary, mode, player1, player2 string) MatchResult {
	reason := EndQuit
	if s.Winner.Valid() {
		reason = EndCompleted
	}
	return MatchResult{
		Mode:         mode,
		Player1:      player1,
		Player2:      player2,
		Score1:       s.Score1,
		Score2:       s.Score2,
		Winner:       int(s.Winner),
		Hits1:        s.Hits1,
		Hits2:        s.Hits2,
		LongestRally: s.LongestRally,
		Duration:     s.Duration,
		Backend:      s.Backend,
		Seed:         s.Seed,
		EndReason:    reason,
	}
}

// Totals aggregates every stored match.
type Totals struct {
	Matches      int
	Goals1       int
	Goals2       int
	Wins1        int
	Wins2        int
	Hits         int
	LongestRally int
	PlayedTime   float64
	LastPlayed   time.Time
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

	// Create parent directories
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
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			mode TEXT NOT NULL,
			player1 TEXT NOT NULL,
			player2 TEXT NOT NULL,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			winner INTEGER NOT NULL DEFAULT 0,
			hits1 INTEGER NOT NULL DEFAULT 0,
			hits2 INTEGER NOT NULL DEFAULT 0,
			longest_rally INTEGER NOT NULL DEFAULT 0,
			duration_secs REAL NOT NULL DEFAULT 0,
			backend TEXT NOT NULL,
			seed INTEGER NOT NULL DEFAULT 0,
			end_reason TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_created ON matches(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_matches_mode ON matches(mode);
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

// SaveMatch records a match result and returns its match ID.
func (s *Store) SaveMatch(r MatchResult) (string, error) {
	if r.MatchID == "" {
		r.MatchID = uuid.NewString()
	} else if _, err := uuid.Parse(r.MatchID); err != nil {
		return "", fmt.Errorf("storage: invalid match id %q: %w", r.MatchID, err)
	}
	if r.EndReason == "" {
		r.EndReason = EndQuit
	}

	_, err := s.db.Exec(
		`INSERT INTO matches
		 (match_id, mode, player1, player2, score1, score2, winner, hits1, hits2,
		  longest_rally, duration_secs, backend, seed, end_reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MatchID,
		r.Mode,
		r.Player1,
		r.Player2,
		r.Score1,
		r.Score2,
		r.Winner,
		r.Hits1,
		r.Hits2,
		r.LongestRally,
		r.Duration,
		r.Backend,
		r.Seed,
		r.EndReason,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save match: %w", err)
	}

	return r.MatchID, nil
}

const selectMatch = `SELECT id, match_id, mode, player1, player2, score1, score2, winner,
        hits1, hits2, longest_rally, duration_secs, backend, seed, end_reason, created_at
 FROM matches`

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (MatchResult, error) {
	var r MatchResult
	var createdAt any
	err := row.Scan(
		&r.ID,
		&r.MatchID,
		&r.Mode,
		&r.Player1,
		&r.Player2,
		&r.Score1,
		&r.Score2,
		&r.Winner,
		&r.Hits1,
		&r.Hits2,
		&r.LongestRally,
		&r.Duration,
		&r.Backend,
		&r.Seed,
		&r.EndReason,
		&createdAt,
	)
	r.CreatedAt = parseTime(createdAt)
	return r, err
}

// MatchByID retrieves a match by its match ID.
// Returns nil without an error when no such match exists.
func (s *Store) MatchByID(matchID string) (*MatchResult, error) {
	r, err := scanMatch(s.db.QueryRow(selectMatch+" WHERE match_id = ?", matchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}
	return &r, nil
}

// RecentMatches retrieves the most recent matches, newest first.
func (s *Store) RecentMatches(limit int) ([]MatchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(selectMatch+" ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var results []MatchResult
	for rows.Next() {
		r, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// Totals aggregates all stored matches.
func (s *Store) Totals() (Totals, error) {
	var t Totals
	var lastPlayed any

	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(score1), 0), COALESCE(SUM(score2), 0),
		        COALESCE(SUM(winner = 1), 0), COALESCE(SUM(winner = 2), 0),
		        COALESCE(SUM(hits1 + hits2), 0), COALESCE(MAX(longest_rally), 0),
		        COALESCE(SUM(duration_secs), 0), MAX(created_at)
		 FROM matches`,
	).Scan(&t.Matches, &t.Goals1, &t.Goals2, &t.Wins1, &t.Wins2,
		&t.Hits, &t.LongestRally, &t.PlayedTime, &lastPlayed)
	if err != nil {
		return Totals{}, fmt.Errorf("storage: cannot get totals: %w", err)
	}

	t.LastPlayed = parseTime(lastPlayed)
	return t, nil
}

// ClearMatches deletes every stored match.
func (s *Store) ClearMatches() error {
	if _, err := s.db.Exec("DELETE FROM matches"); err != nil {
		return fmt.Errorf("storage: cannot clear matches: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
