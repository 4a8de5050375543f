package sqldb

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"testing"

	pgx_migrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // Register relevant drivers.
	"github.com/stretchr/testify/require"

	"github.com/praoslabs/walletd/sqldb/sqlc"
)

// TestPgDSNEnv is the name of the environment variable that can be set to
// point the test suite at a running Postgres instance. If it is unset,
// Postgres backed tests are skipped.
const TestPgDSNEnv = "WALLETD_TEST_PG_DSN"

var (
	// postgresSchemaReplacements is a map of schema strings that need to
	// be replaced for postgres. This is needed because we write the
	// schemas to work with sqlite primarily but in sqlc's own dialect,
	// and postgres has some differences.
	postgresSchemaReplacements = map[string]string{
		"BLOB":      "BYTEA",
		"TIMESTAMP": "TIMESTAMP WITHOUT TIME ZONE",
	}

	// Make sure PostgresStore implements the MigrationExecutor interface.
	_ MigrationExecutor = (*PostgresStore)(nil)
)

// replacePasswordInDSN takes a DSN string and returns it with the password
// replaced by "***".
func replacePasswordInDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}

	// Check if the URL has a user info part.
	if u.User != nil {
		username := u.User.Username()

		// Reconstruct user info with "***" as password.
		userInfo := username + ":***@"

		// Rebuild the DSN with the modified user info.
		sanitizedDSN := strings.Replace(
			dsn, u.User.String()+"@", userInfo, 1,
		)

		return sanitizedDSN, nil
	}

	// Return the original DSN if no user info is present.
	return dsn, nil
}

// getDatabaseNameFromDSN extracts the database name from a DSN string.
func getDatabaseNameFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}

	// The database name is the last segment of the path. Trim leading
	// slash and return the last segment.
	return path.Base(u.Path), nil
}

// PostgresStore is a database store implementation that uses a Postgres
// backend.
type PostgresStore struct {
	cfg *PostgresConfig

	*BaseDB
}

// NewPostgresStore creates a new store that is backed by a Postgres database
// backend.
func NewPostgresStore(cfg *PostgresConfig) (*PostgresStore, error) {
	sanitizedDSN, err := replacePasswordInDSN(cfg.Dsn)
	if err != nil {
		return nil, err
	}
	log.Infof("Using SQL database '%s'", sanitizedDSN)

	db, err := sql.Open("pgx", cfg.Dsn)
	if err != nil {
		return nil, err
	}

	maxConns := defaultMaxConns
	if cfg.MaxConnections > 0 {
		maxConns = cfg.MaxConnections
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	queries := sqlc.New(db)

	s := &PostgresStore{
		cfg: cfg,
		BaseDB: &BaseDB{
			DB:      db,
			Queries: queries,
		},
	}

	// Now that the database is open, populate the database with our set
	// of schemas based on our embedded in-memory file system.
	if !cfg.SkipMigrations {
		if err := s.ExecuteMigrations(TargetLatest); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("error executing migrations: "+
				"%w", err)
		}
	}

	return s, nil
}

// GetBaseDB returns the underlying BaseDB instance for the Postgres store.
// It is a trivial helper method to comply with the sqldb.DB interface.
func (s *PostgresStore) GetBaseDB() *BaseDB {
	return s.BaseDB
}

// ExecuteMigrations runs migrations for the Postgres database, depending on
// the target given, either all migrations or up to a given version.
func (s *PostgresStore) ExecuteMigrations(target MigrationTarget) error {
	dbName, err := getDatabaseNameFromDSN(s.cfg.Dsn)
	if err != nil {
		return err
	}

	driver, err := pgx_migrate.WithInstance(
		s.DB, &pgx_migrate.Config{},
	)
	if err != nil {
		return fmt.Errorf("error creating postgres migration: %w", err)
	}

	postgresFS := newReplacerFS(sqlSchemas, postgresSchemaReplacements)
	return applyMigrations(
		postgresFS, driver, "sqlc/migrations", dbName, target,
	)
}

// NewTestPostgresDB is a helper function that connects to the Postgres
// instance the WALLETD_TEST_PG_DSN environment variable points at, applies
// all migrations and wipes any previous contents. Tests calling it are
// skipped when the variable is unset.
func NewTestPostgresDB(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv(TestPgDSNEnv)
	if dsn == "" {
		t.Skipf("skipping Postgres test, %s not set", TestPgDSNEnv)
	}

	t.Logf("Creating new Postgres DB for testing")

	pgDB, err := NewPostgresStore(&PostgresConfig{
		Dsn: dsn,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgDB.DB.Close())
	})

	return pgDB
}
