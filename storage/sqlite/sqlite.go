// Package sqlite keeps compiled snapshots in a SQLite database.
//
// The database runs in WAL mode so several compilers (say, two amc
// processes sharing a cache) can read and write it at once.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/storage"
	"github.com/streamblocks/cal2am/util"

	_ "modernc.org/sqlite"
)

// Storage is a storage.Storage backed by one SQLite table.
type Storage struct {
	path string
	db   *sql.DB
}

func NewStorage(path string) (*Storage, error) {
	return &Storage{path: path}, nil
}

// Open opens (or creates) the database and initializes the schema.
func (s *Storage) Open(ctx context.Context) error {
	dsn := s.path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s.db = db
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *Storage) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS machines (
		fingerprint TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		states      INTEGER NOT NULL,
		snapshot    TEXT NOT NULL,
		stored_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_machines_name ON machines(name);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Storage) Get(ctx context.Context, key string) (*core.Snapshot, error) {
	util.Logf("SQLite Storage.Get %s", key)
	var js string
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM machines WHERE fingerprint = ?`, key).Scan(&js)
	if err == sql.ErrNoRows {
		return nil, storage.NotFound
	}
	if err != nil {
		return nil, err
	}
	var snap core.Snapshot
	if err = json.Unmarshal([]byte(js), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Put replaces any snapshot already stored under the key.
func (s *Storage) Put(ctx context.Context, key string, snap *core.Snapshot) error {
	util.Logf("SQLite Storage.Put %s %s", key, snap.Name)
	js, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return contention.do(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO machines (fingerprint, name, states, snapshot, stored_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(fingerprint) DO UPDATE SET
			   name = excluded.name,
			   states = excluded.states,
			   snapshot = excluded.snapshot,
			   stored_at = excluded.stored_at`,
			key, snap.Name, len(snap.States), string(js), now)
		return err
	})
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	util.Logf("SQLite Storage.Remove %s", key)
	return contention.do(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM machines WHERE fingerprint = ?`, key)
		return err
	})
}

// Keys returns the stored fingerprints in order.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fingerprint FROM machines ORDER BY fingerprint`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	acc := make([]string, 0, 32)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		acc = append(acc, k)
	}
	return acc, rows.Err()
}

// Machine is a summary row.
type Machine struct {
	Fingerprint string
	Name        string
	States      int
	StoredAt    time.Time
}

// Machines lists what's stored, newest first, optionally only for
// the given actor name.
func (s *Storage) Machines(ctx context.Context, name string) ([]*Machine, error) {
	q := `SELECT fingerprint, name, states, stored_at FROM machines`
	var args []interface{}
	if name != "" {
		q += ` WHERE name = ?`
		args = append(args, name)
	}
	q += ` ORDER BY stored_at DESC, fingerprint`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var acc []*Machine
	for rows.Next() {
		var (
			m  Machine
			at string
		)
		if err := rows.Scan(&m.Fingerprint, &m.Name, &m.States, &at); err != nil {
			return nil, err
		}
		if m.StoredAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, err
		}
		acc = append(acc, &m)
	}
	return acc, rows.Err()
}
