package pgkv

import (
	"bytes"
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
)

type Store struct {
	db *sql.DB
}

var _ core.KVStore = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var val []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM collections WHERE key = $1`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "selecting %q", key)
	}
	return val, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return upsert(ctx, s.db, key, value)
}

// Update locks the row with SELECT ... FOR UPDATE. Missing keys get a `null` placeholder row first,
// which is rolled back with the transaction if fn fails.
func (s *Store) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(
		ctx, `INSERT INTO collections(key, value) VALUES($1, 'null') ON CONFLICT (key) DO NOTHING`, key,
	)
	if err != nil {
		return errors.Wrapf(err, "reserving %q", key)
	}

	var val []byte
	if err = tx.QueryRowContext(ctx, `SELECT value FROM collections WHERE key = $1 FOR UPDATE`, key).Scan(&val); err != nil {
		return errors.Wrapf(err, "locking %q", key)
	}
	if bytes.Equal(val, []byte("null")) {
		val = nil
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
	_, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE key = ANY($1)`, pq.Array(keys))
	return errors.Wrap(err, "deleting keys")
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx, `SELECT key FROM collections WHERE key LIKE $1 ESCAPE '\' ORDER BY key`, likePrefix(prefix),
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
	// lib/pq sends []byte as bytea: pass JSON as text
	_, err := db.ExecContext(
		ctx,
		`INSERT INTO collections(key, value, updated_at) VALUES($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value),
	)
	return errors.Wrapf(err, "upserting %q", key)
}

func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}

func quoteIdent(s string) string {
	return pq.QuoteIdentifier(s)
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
