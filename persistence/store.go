// Package persistence stores player snapshots in a local SQLite database.
// Payloads are zstd-compressed snapshot JSON; the schema carries only the
// columns needed to list and prune history.
package persistence

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/nathoo/runesim/engine/save"
)

// Store is a snapshot store over one SQLite file. Safe for use from a
// single goroutine; the engine's pump owns it.
type Store struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Record describes one stored snapshot without its payload.
type Record struct {
	Seq     int64
	TakenAt time.Time
	Clock   float64
}

// Open creates or opens the snapshot database at path.
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

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, enc: enc, dec: dec}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
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
		`CREATE TABLE IF NOT EXISTS snapshots (
			player_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			taken_at TEXT NOT NULL,
			clock REAL NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (player_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(player_id, taken_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database and codec resources.
func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

// Put stores a snapshot under the next sequence number for its player.
func (s *Store) Put(snap *save.Snapshot) error {
	data, err := save.Encode(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot for %s: %w", snap.Player, err)
	}
	payload := s.enc.EncodeAll(data, nil)

	_, err = s.db.Exec(
		`INSERT INTO snapshots(player_id, seq, taken_at, clock, payload)
		 VALUES(?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM snapshots WHERE player_id = ?), ?, ?, ?)`,
		snap.Player, snap.Player,
		time.Now().UTC().Format(time.RFC3339Nano),
		snap.Clock, payload,
	)
	if err != nil {
		return fmt.Errorf("storing snapshot for %s: %w", snap.Player, err)
	}
	return nil
}

// Latest returns the most recent snapshot for a player, or nil when the
// player has none.
func (s *Store) Latest(playerID string) (*save.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRow(
		`SELECT payload FROM snapshots WHERE player_id = ? ORDER BY seq DESC LIMIT 1`,
		playerID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	data, err := s.dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot for %s: %w", playerID, err)
	}
	snap, err := save.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot for %s: %w", playerID, err)
	}
	return snap, nil
}

// History lists stored snapshots for a player, newest first, up to limit.
// A non-positive limit returns everything.
func (s *Store) History(playerID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT seq, taken_at, clock FROM snapshots WHERE player_id = ? ORDER BY seq DESC LIMIT ?`,
		playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var takenAt string
		if err := rows.Scan(&rec.Seq, &takenAt, &rec.Clock); err != nil {
			return nil, err
		}
		rec.TakenAt, _ = time.Parse(time.RFC3339Nano, takenAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Prune deletes all but the newest keep snapshots for a player.
func (s *Store) Prune(playerID string, keep int) error {
	if keep < 0 {
		keep = 0
	}
	_, err := s.db.Exec(
		`DELETE FROM snapshots WHERE player_id = ? AND seq NOT IN (
			SELECT seq FROM snapshots WHERE player_id = ? ORDER BY seq DESC LIMIT ?
		)`,
		playerID, playerID, keep,
	)
	return err
}

// Players lists every player with at least one stored snapshot.
func (s *Store) Players() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT player_id FROM snapshots ORDER BY player_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		players = append(players, id)
	}
	return players, rows.Err()
}
