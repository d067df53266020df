package sqlstore

import (
	"errors"
	"regexp"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Driver identifies a supported database backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// Dialect hides the SQL differences between backends. Queries in this package are
// written PostgreSQL-style and passed through Rebind before execution.
type Dialect interface {
	Driver() Driver
	// Rebind converts $1, $2, ... placeholders into the backend's format.
	// Placeholders must appear once each, in ascending order.
	Rebind(query string) string
	// LockClause is appended to a SELECT to take a row lock inside a transaction.
	LockClause() string
	IsUniqueViolation(err error) bool
	Schema() string
}

var pgPlaceholderRe = regexp.MustCompile(`\$\d+`)

type postgresDialect struct{}

// PostgresDialect returns the Dialect for github.com/lib/pq.
func PostgresDialect() Dialect { return postgresDialect{} }

func (postgresDialect) Driver() Driver             { return DriverPostgres }
func (postgresDialect) Rebind(query string) string { return query }
func (postgresDialect) LockClause() string         { return " FOR UPDATE" }
func (postgresDialect) Schema() string             { return postgresSchema }

func (postgresDialect) IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

type sqliteDialect struct{}

// SQLiteDialect returns the Dialect for modernc.org/sqlite.
func SQLiteDialect() Dialect { return sqliteDialect{} }

func (sqliteDialect) Driver() Driver { return DriverSQLite }

func (sqliteDialect) Rebind(query string) string {
	return pgPlaceholderRe.ReplaceAllString(query, "?")
}

// LockClause is empty: sqlite connections are capped at one, so transactions never interleave.
func (sqliteDialect) LockClause() string { return "" }
func (sqliteDialect) Schema() string     { return sqliteSchema }

func (sqliteDialect) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		code := sqErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
