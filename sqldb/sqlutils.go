package sqldb

import (
	"database/sql"
)

// SQLStr turns a string into the NullString that sql/sqlc uses when a
// string can be permitted to be NULL. The empty string maps to the NULL
// value.
func SQLStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}

	return sql.NullString{
		String: s,
		Valid:  true,
	}
}
