// Package sqlitekv persists collections to a single SQLite table as JSON blobs.
package sqlitekv

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/trezcool/scola/core"
)

type Store struct {
	db   *sql.DB
	mu   sync.Mutex // serializes writers
	path string
}

var _ core.KVStore = (*Store)(nil)

// Open opens (creating if needed) the SQLite database at path.
// The `collections` table is created by the goose migrations, see kv.Migrate.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "scola.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, errors.Wrap(err, "creating dirs")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite")
	}
	// a single connection keeps the pragmas & serializes the transactions
	db.SetMaxOpenConns(1)
	if _, err = db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "setting busy_timeout")
	}
	return &Store{db: db, path: path}, nil
}

// DB exposes the underlying sql.DB for migrations.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Path() string { return s.path }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var val []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM collections WHERE key = ?`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "selecting %q", key)
	}
	return val, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return upsert(ctx, s.db, key, value)
}

func (s *Store) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	var val []byte
	err = tx.QueryRowContext(ctx, `SELECT value FROM collections WHERE key = ?`, key).Scan(&val)
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrapf(err, "selecting %q", key)
	}
	newVal, err := fn(val)
	if err != nil {
		return err
	}
	if err = upsert(ctx, tx, key, newVal); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing")
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	q := `DELETE FROM collections WHERE key IN (?` + strings.Repeat(",?", len(keys)-1) + `)`
	_, err := s.db.ExecContext(ctx, q, args...)
	return errors.Wrap(err, "deleting keys")
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx, `SELECT key FROM collections WHERE key LIKE ? ESCAPE '\' ORDER BY key`, likePrefix(prefix),
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting keys")
	}
	defer func() { _ = rows.Close() }()

	keys := make([]string, 0)
	for rows.Next() {
		var k string
		if err = rows.Scan(&k); err != nil {
			return nil, errors.Wrap(err, "scanning key")
		}
		keys = append(keys, k)
	}
	return keys, errors.Wrap(rows.Err(), "iterating keys")
}

func (s *Store) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, key string, value []byte) error {
	_, err := db.ExecContext(
		ctx,
		`INSERT INTO collections(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	return errors.Wrapf(err, "upserting %q", key)
}

func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
