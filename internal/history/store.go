// Package history persists successful usage snapshots to SQLite so the TUI
// can chart recent utilization.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/claudebar/claudebar/internal/monitor"
)

// Store is a thin append-mostly snapshot log. Safe for use from the single
// refresh cycle; reads may come from other goroutines via database/sql's own
// locking.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the parent directory and the schema if needed.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: creating DB dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("history: opening DB: %w", err)
	}

	store := &Store{db: db, now: time.Now}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS usage_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fetched_at TEXT NOT NULL,
			five_hour_utilization REAL NOT NULL,
			five_hour_resets_at TEXT NOT NULL DEFAULT '',
			weekly_utilization REAL NOT NULL,
			weekly_resets_at TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_usage_snapshots_fetched_at
			ON usage_snapshots(fetched_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("history: init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends one snapshot. Implements monitor.Recorder.
func (s *Store) Record(snap monitor.UsageSnapshot) error {
	_, err := s.db.Exec(
		`INSERT INTO usage_snapshots
			(fetched_at, five_hour_utilization, five_hour_resets_at,
			 weekly_utilization, weekly_resets_at)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.FetchedAt.UTC().Format(time.RFC3339),
		snap.FiveHourUtilization,
		snap.FiveHourResetsAt,
		snap.WeeklyUtilization,
		snap.WeeklyResetsAt,
	)
	if err != nil {
		return fmt.Errorf("history: inserting snapshot: %w", err)
	}
	return nil
}

// Point is one charted sample.
type Point struct {
	FetchedAt time.Time
	FiveHour  float64
	Weekly    float64
}

// Recent returns up to limit most recent samples in chronological order.
func (s *Store) Recent(limit int) ([]Point, error) {
	if limit <= 0 {
		limit = 60
	}
	rows, err := s.db.Query(
		`SELECT fetched_at, five_hour_utilization, weekly_utilization
		 FROM usage_snapshots
		 ORDER BY id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: querying recent: %w", err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var (
			raw  string
			p    Point
			when time.Time
		)
		if err := rows.Scan(&raw, &p.FiveHour, &p.Weekly); err != nil {
			return nil, fmt.Errorf("history: scanning row: %w", err)
		}
		if when, err = time.Parse(time.RFC3339, raw); err == nil {
			p.FetchedAt = when
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterating rows: %w", err)
	}

	// Rows arrive newest-first; flip to chronological order for charting.
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// Prune drops samples older than keep. Returns the number of rows removed.
func (s *Store) Prune(keep time.Duration) (int64, error) {
	cutoff := s.now().Add(-keep).UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`DELETE FROM usage_snapshots WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("history: pruning: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// SetNow replaces the time source. Used in tests only.
func (s *Store) SetNow(fn func() time.Time) { s.now = fn }
