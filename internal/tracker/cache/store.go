package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"jira/internal/tracker"
)

const (
	dbName   = "cache.db"
	lockName = "cache.lock"
)

// Store persists project metadata for one tracker server.
type Store struct {
	db     *sql.DB
	path   string
	server string
	lock   *flock.Flock
}

// Open creates dir if needed, opens the cache database, and applies migrations.
// Rows are scoped to server so switching instances never mixes results.
func Open(ctx context.Context, dir, server string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory %q: %w", dir, err)
	}

	dbPath := filepath.Join(dir, dbName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:     db,
		path:   dbPath,
		server: server,
		lock:   flock.New(filepath.Join(dir, lockName)),
	}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Projects returns the cached project list and when it was fetched.
// ok is false when nothing is cached.
func (s *Store) Projects(ctx context.Context) (projects []tracker.Project, fetchedAt time.Time, ok bool, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload, fetched_at FROM projects WHERE server = ? ORDER BY position`, s.server)
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload, stamp string
		if err := rows.Scan(&payload, &stamp); err != nil {
			return nil, time.Time{}, false, fmt.Errorf("scan project: %w", err)
		}
		var project tracker.Project
		if err := json.Unmarshal([]byte(payload), &project); err != nil {
			return nil, time.Time{}, false, fmt.Errorf("decode cached project: %w", err)
		}
		projects = append(projects, project)
		if ts, perr := time.Parse(time.RFC3339Nano, stamp); perr == nil && (fetchedAt.IsZero() || ts.Before(fetchedAt)) {
			fetchedAt = ts
		}
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, fetchedAt, len(projects) > 0, nil
}

// ReplaceProjects swaps the cached project list.
func (s *Store) ReplaceProjects(ctx context.Context, projects []tracker.Project, fetchedAt time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE server = ?`, s.server); err != nil {
			return fmt.Errorf("clear projects: %w", err)
		}
		stamp := fetchedAt.UTC().Format(time.RFC3339Nano)
		for i, project := range projects {
			payload, err := json.Marshal(project)
			if err != nil {
				return fmt.Errorf("encode project %s: %w", project.Key, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO projects (server, key, position, payload, fetched_at) VALUES (?, ?, ?, ?, ?)`,
				s.server, project.Key, i, string(payload), stamp,
			); err != nil {
				return fmt.Errorf("insert project %s: %w", project.Key, err)
			}
		}
		return nil
	})
}

// Project returns one cached project detail record.
func (s *Store) Project(ctx context.Context, key string) (*tracker.Project, time.Time, bool, error) {
	var payload, stamp string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM project_details WHERE server = ? AND key = ?`, s.server, key,
	).Scan(&payload, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("query project %s: %w", key, err)
	}
	var project tracker.Project
	if err := json.Unmarshal([]byte(payload), &project); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("decode cached project %s: %w", key, err)
	}
	fetchedAt, _ := time.Parse(time.RFC3339Nano, stamp)
	return &project, fetchedAt, true, nil
}

// PutProject stores one project detail record.
func (s *Store) PutProject(ctx context.Context, project *tracker.Project, fetchedAt time.Time) error {
	payload, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("encode project %s: %w", project.Key, err)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO project_details (server, key, payload, fetched_at) VALUES (?, ?, ?, ?)
             ON CONFLICT(server, key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
			s.server, project.Key, string(payload), fetchedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("upsert project %s: %w", project.Key, err)
		}
		return nil
	})
}

// Clear drops every cached row for this server.
func (s *Store) Clear(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"projects", "project_details"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE server = ?", s.server); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// withTx runs fn in a transaction while holding the cross-process cache lock.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	locked, err := s.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return errors.New("cache lock busy")
	}
	defer func() {
		_ = s.lock.Unlock()
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache tx: %w", err)
	}
	return nil
}
