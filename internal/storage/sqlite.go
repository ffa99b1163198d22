//go:build sqlite

package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/san-kum/metaheur/internal/config"
	"github.com/san-kum/metaheur/internal/experiment"
)

// SQLiteStore keeps every run as one row; history, population and reference
// columns hold the same CSV the directory store writes.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			metadata TEXT NOT NULL,
			history TEXT NOT NULL,
			population TEXT NOT NULL,
			reference TEXT NOT NULL
		)`); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, res *experiment.Result, cfg *config.Config) (string, error) {
	db, err := s.getDB()
	if err != nil {
		return "", err
	}

	meta := newMetadata(res, cfg)
	payload, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	dim := len(res.Goals)
	var history, population, reference bytes.Buffer
	if err := errors.Join(
		writeHistory(&history, res.History, dim),
		writePopulation(&population, res.Final, dim),
	); err != nil {
		return "", err
	}
	if len(res.Reference) > 0 {
		if err := writeVectors(&reference, res.Reference, dim); err != nil {
			return "", err
		}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, metadata, history, population, reference)
		VALUES (?, ?, ?, ?, ?, ?)
	`, meta.ID, meta.Timestamp.UnixNano(), string(payload), history.String(), population.String(), reference.String())
	if err != nil {
		return "", fmt.Errorf("insert run %s: %w", meta.ID, err)
	}
	return meta.ID, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]RunMetadata, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT metadata FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var meta RunMetadata
		if err := json.Unmarshal([]byte(payload), &meta); err != nil {
			return nil, err
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*RunMetadata, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var payload string
	err = db.QueryRowContext(ctx, `SELECT metadata FROM runs WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal([]byte(payload), &meta); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &meta, nil
}

func (s *SQLiteStore) LoadResult(ctx context.Context, id string) (*experiment.Result, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var payload, history, population, reference string
	err = db.QueryRowContext(ctx, `SELECT metadata, history, population, reference FROM runs WHERE id = ?`, id).
		Scan(&payload, &history, &population, &reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal([]byte(payload), &meta); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}

	res := meta.result()
	if res.History, err = readHistory(strings.NewReader(history)); err != nil {
		return nil, err
	}
	if res.Final, err = readPopulation(strings.NewReader(population)); err != nil {
		return nil, err
	}
	if res.Reference, err = readVectors(strings.NewReader(reference)); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("sqlite store is not initialized")
	}
	return s.db, nil
}
