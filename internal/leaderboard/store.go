// Package leaderboard stores verified runs in SQLite and ranks them per map.
package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Faultbox/strafe/internal/logger"
)

var (
	// ErrNotFinished is returned when submitting a run that never reached the finish.
	ErrNotFinished = errors.New("run did not finish")
	// ErrDuplicate is returned when the same run is submitted twice.
	ErrDuplicate = errors.New("run already submitted")
)

// Run is a verified run ready for submission.
type Run struct {
	MapID       string
	MapDigest   string
	Player      string
	Seed        uint32
	TickRate    int
	Finished    bool
	FinishTick  uint64
	FinalDigest string
	ReplayPath  string
}

// Time returns the run time.
func (r Run) Time() time.Duration {
	if r.TickRate <= 0 {
		return 0
	}
	return time.Duration(r.FinishTick) * time.Second / time.Duration(r.TickRate)
}

// Entry is one leaderboard row.
type Entry struct {
	Rank        int
	ID          int64
	Player      string
	FinishTick  uint64
	Time        time.Duration
	ReplayPath  string
	SubmittedAt time.Time
}

// Store is a SQLite-backed leaderboard.
type Store struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, log: logger.Named("leaderboard"), now: time.Now}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			map_id TEXT NOT NULL,
			map_digest TEXT NOT NULL,
			player TEXT NOT NULL,
			seed INTEGER NOT NULL,
			tick_rate INTEGER NOT NULL,
			finish_tick INTEGER NOT NULL,
			time_ns INTEGER NOT NULL,
			final_digest TEXT NOT NULL,
			replay_path TEXT NOT NULL,
			submitted_at INTEGER NOT NULL,
			UNIQUE (map_id, final_digest)
		);`,
		`CREATE INDEX IF NOT EXISTS runs_map_time ON runs (map_id, time_ns);`,
		`CREATE INDEX IF NOT EXISTS runs_map_player ON runs (map_id, player, time_ns);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Submit stores a finished run and returns its row ID.
func (s *Store) Submit(ctx context.Context, r Run) (int64, error) {
	if !r.Finished {
		return 0, ErrNotFinished
	}
	if r.MapID == "" || r.Player == "" || r.FinalDigest == "" {
		return 0, fmt.Errorf("run needs map, player and digest")
	}
	if r.TickRate <= 0 {
		return 0, fmt.Errorf("invalid tick rate %d", r.TickRate)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (map_id, map_digest, player, seed, tick_rate, finish_tick, time_ns,
			final_digest, replay_path, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MapID, r.MapDigest, r.Player, int64(r.Seed), r.TickRate, int64(r.FinishTick),
		int64(r.Time()), r.FinalDigest, r.ReplayPath, s.now().UTC().UnixNano(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	s.log.Info("run submitted",
		zap.Int64("id", id),
		zap.String("map", r.MapID),
		zap.String("player", r.Player),
		zap.Duration("time", r.Time()),
	)
	return id, nil
}

// Top returns each player's best run on a map, fastest first.
func (s *Store) Top(ctx context.Context, mapID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player, finish_tick, time_ns, replay_path, submitted_at FROM (
			SELECT *, ROW_NUMBER() OVER (
				PARTITION BY player ORDER BY time_ns, submitted_at, id
			) AS rn
			FROM runs WHERE map_id = ?
		) WHERE rn = 1
		ORDER BY time_ns, submitted_at, id
		LIMIT ?`,
		mapID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying top runs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		e.Rank = len(out) + 1
		out = append(out, e)
	}
	return out, rows.Err()
}

// Best returns a player's best run on a map with its rank among players.
func (s *Store) Best(ctx context.Context, mapID, player string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, player, finish_tick, time_ns, replay_path, submitted_at
		 FROM runs WHERE map_id = ? AND player = ?
		 ORDER BY time_ns, submitted_at, id LIMIT 1`,
		mapID, player,
	)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}

	var faster int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT player) FROM runs WHERE map_id = ? AND time_ns < ?`,
		mapID, int64(e.Time),
	).Scan(&faster); err != nil {
		return Entry{}, false, fmt.Errorf("ranking run: %w", err)
	}
	e.Rank = faster + 1
	return e, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e           Entry
		finishTick  int64
		timeNS      int64
		submittedAt int64
	)
	if err := sc.Scan(&e.ID, &e.Player, &finishTick, &timeNS, &e.ReplayPath, &submittedAt); err != nil {
		return Entry{}, err
	}
	e.FinishTick = uint64(finishTick)
	e.Time = time.Duration(timeNS)
	e.SubmittedAt = time.Unix(0, submittedAt).UTC()
	return e, nil
}
