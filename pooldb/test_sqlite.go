//go:build !test_db_postgres

package pooldb

import (
	"database/sql"
	"testing"

	"github.com/praoslabs/walletd/sqldb"
	"github.com/praoslabs/walletd/wtypes"
	"github.com/stretchr/testify/require"
)

// testEpochLength is the slots-per-epoch value test stores run with.
const testEpochLength wtypes.EpochLength = 21600

// NewTestDB is a helper function that creates a sqlite backed store for
// testing.
func NewTestDB(t *testing.T, opts ...StoreOption) *SQLStore {
	base := sqldb.NewTestSqliteDB(t).BaseDB

	executor := sqldb.NewTransactionExecutor(
		base, func(tx *sql.Tx) SQLQueries {
			return base.WithTx(tx)
		},
	)

	store, err := NewSQLStore(
		&SQLStoreConfig{EpochLength: testEpochLength}, executor,
		opts...,
	)
	require.NoError(t, err)

	return store
}
