// Package kv opens the configured core.KVStore backend and migrates it.
package kv

import (
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/fs"
	"github.com/trezcool/scola/storage/kv/inmem"
	"github.com/trezcool/scola/storage/kv/postgres"
	"github.com/trezcool/scola/storage/kv/sqlite"
)

const (
	EngineInMem    = "inmem"
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
)

// SQLStore is a core.KVStore backed by a database/sql database.
type SQLStore interface {
	core.KVStore
	DB() *sql.DB
}

// Open opens the store selected by conf.Database.Engine.
// SQL stores are returned un-migrated: call Migrate (or the admin `migrate` command) next.
func Open(conf *core.Config) (core.KVStore, error) {
	switch conf.Database.Engine {
	case EngineInMem:
		return inmemkv.New(), nil
	case EngineSQLite, "":
		return sqlitekv.Open(conf.Database.Path)
	case EnginePostgres:
		if err := pgkv.CreateIfNotExist(conf); err != nil {
			return nil, errors.Wrap(err, "creating database")
		}
		db, err := pgkv.OpenDB(conf)
		if err != nil {
			return nil, errors.Wrap(err, "opening database")
		}
		return pgkv.NewStore(db), nil
	default:
		return nil, fmt.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}

// MigrationsDir returns the embedded migrations directory & goose dialect of engine.
func MigrationsDir(engine string) (dir, dialect string) {
	if engine == EnginePostgres {
		return "migrations/postgres", "postgres"
	}
	return "migrations/sqlite", "sqlite3"
}

// PrepareGoose points goose at the embedded migrations of engine.
func PrepareGoose(engine string) (string, error) {
	dir, dialect := MigrationsDir(engine)
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return "", errors.Wrap(err, "setting goose dialect")
	}
	return dir, nil
}

// Migrate applies all pending migrations. It is a no-op for non-SQL stores.
func Migrate(store core.KVStore, engine string) error {
	sqlStore, ok := store.(SQLStore)
	if !ok {
		return nil
	}
	dir, err := PrepareGoose(engine)
	if err != nil {
		return err
	}
	if err = goose.Up(sqlStore.DB(), dir); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
