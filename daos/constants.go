// Package daos provides constants used throughout the data access layer.
package daos

// Comparison operators accepted in WHERE conditions, after uppercasing.
const (
	OpEq      = "="
	OpNeq     = "!="
	OpNeqAlt  = "<>"
	OpLt      = "<"
	OpGt      = ">"
	OpLte     = "<="
	OpGte     = ">="
	OpLike    = "LIKE"
	OpNotLike = "NOT LIKE"
	OpIn      = "IN"
	OpNotIn   = "NOT IN"
)

// validOperators is the operator whitelist.
var validOperators = map[string]bool{
	OpEq: true, OpNeq: true, OpNeqAlt: true,
	OpLt: true, OpGt: true, OpLte: true, OpGte: true,
	OpLike: true, OpNotLike: true,
	OpIn: true, OpNotIn: true,
}

// Order directions for ORDER BY clauses.
const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// Select field wildcard.
const AllFields = "*"

// Bound parameter name prefixes.
const (
	paramWhere  = "where"
	paramSet    = "set"
	paramInsert = "val"
)

// On-disk naming.
const (
	DatabaseExt     = ".sqlite"
	BackupInfix     = "_backup_"
	BackupTimestamp = "20060102150405"
	XZSuffix        = ".xz"
)

// SystemTablePrefix marks backend-internal tables excluded from listings.
const SystemTablePrefix = "sqlite_"

// Supported database/sql driver names.
const (
	DriverSQLite3 = "sqlite3" // github.com/mattn/go-sqlite3
	DriverSQLite  = "sqlite"  // modernc.org/sqlite
	DriverLibsql  = "libsql"  // github.com/tursodatabase/libsql-client-go
)
