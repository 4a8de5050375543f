package pooldb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/praoslabs/walletd/sqldb"
	"github.com/praoslabs/walletd/wtypes"
)

const (
	// BackendSqlite is the name of the sqlite database backend.
	BackendSqlite = "sqlite"

	// BackendPostgres is the name of the postgres database backend.
	BackendPostgres = "postgres"

	// DefaultDBFileName is the name of the sqlite database file inside
	// the configured directory.
	DefaultDBFileName = "pools.db"

	// DefaultEpochLength is the slots-per-epoch value used when the
	// config doesn't set one.
	DefaultEpochLength = 21600
)

// Config holds the stake pool database configuration.
//
//nolint:ll
type Config struct {
	Backend string `long:"backend" description:"The selected database backend."`

	Dir string `long:"dir" description:"The directory the sqlite database file lives in."`

	EpochLength uint32 `long:"epochlength" description:"The number of slots per epoch of the indexed chain."`

	DestructiveRecovery bool `long:"destructive-recovery" description:"Remove and recreate the sqlite database file if it cannot be opened. All indexed state is lost and will be rebuilt from the chain."`

	Sqlite *sqldb.SqliteConfig `group:"sqlite" namespace:"sqlite" description:"Sqlite settings."`

	Postgres *sqldb.PostgresConfig `group:"postgres" namespace:"postgres" description:"Postgres settings."`
}

// DefaultConfig returns the default stake pool database configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:     BackendSqlite,
		EpochLength: DefaultEpochLength,
		Sqlite:      &sqldb.SqliteConfig{},
		Postgres:    &sqldb.PostgresConfig{},
	}
}

// Validate checks the configuration for impossible combinations.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSqlite:
		if c.Dir == "" {
			return fmt.Errorf("sqlite backend requires a " +
				"database directory")
		}
		if c.Sqlite != nil {
			return c.Sqlite.Validate()
		}

	case BackendPostgres:
		if c.Postgres == nil {
			return fmt.Errorf("postgres backend requires a " +
				"postgres config")
		}
		return c.Postgres.Validate()

	default:
		return fmt.Errorf("unknown database backend %q, must be "+
			"either %q or %q", c.Backend, BackendSqlite,
			BackendPostgres)
	}

	return nil
}

// Open opens the database described by cfg, applying schema migrations as
// needed. For the sqlite backend with DestructiveRecovery set, a database
// file that fails to open is removed and recreated from scratch.
func Open(cfg *Config) (DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	epochLength := wtypes.EpochLength(cfg.EpochLength)
	if epochLength == 0 {
		epochLength = DefaultEpochLength
	}

	var base *sqldb.BaseDB
	switch cfg.Backend {
	case BackendSqlite:
		sqliteCfg := cfg.Sqlite
		if sqliteCfg == nil {
			sqliteCfg = &sqldb.SqliteConfig{}
		}
		dbPath := filepath.Join(cfg.Dir, DefaultDBFileName)

		log.Infof("Opening sqlite database at %s", dbPath)

		store, err := sqldb.NewSqliteStore(sqliteCfg, dbPath)
		if err != nil {
			if !cfg.DestructiveRecovery {
				return nil, err
			}

			log.Warnf("Unable to open database %s: %v; removing "+
				"it for destructive recovery", dbPath, err)

			if err := removeSqliteDB(dbPath); err != nil {
				return nil, err
			}

			store, err = sqldb.NewSqliteStore(sqliteCfg, dbPath)
			if err != nil {
				return nil, err
			}
		}
		base = store.BaseDB

	case BackendPostgres:
		log.Infof("Opening postgres database")

		store, err := sqldb.NewPostgresStore(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		base = store.BaseDB
	}

	executor := sqldb.NewTransactionExecutor(
		base, func(tx *sql.Tx) SQLQueries {
			return base.WithTx(tx)
		},
	)

	return NewSQLStore(
		&SQLStoreConfig{EpochLength: epochLength}, executor,
		WithCloser(base),
	)
}

// removeSqliteDB deletes the database file along with its WAL and shared
// memory side files.
func removeSqliteDB(dbPath string) error {
	sideFiles := []string{dbPath, dbPath + "-wal", dbPath + "-shm"}
	for _, path := range sideFiles {
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}
