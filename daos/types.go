package daos

import (
	"context"
	"database/sql"
)

// Executor is an interface that both *sql.DB and *sql.Conn implement.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ColumnDef is a column definition used by CreateTable.
type ColumnDef struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Constraints string `json:"constraints,omitempty"`
}

// ColumnInfo describes a column as reported by backend introspection.
type ColumnInfo struct {
	CID        int64  `json:"cid"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"notnull"`
	Default    any    `json:"dflt_value"`
	PrimaryKey int64  `json:"pk"` // 1-based position in the primary key, 0 if not part of it
}

// Condition is a single WHERE predicate.
// Value is a scalar for every operator except IN and NOT IN, which take a non-empty list.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// OrderBy is a single ORDER BY entry. Direction is ASC unless it equals DESC.
type OrderBy struct {
	Field     string `json:"field"`
	Direction string `json:"direction,omitempty"`
}

// Criteria is the canonical descriptor for select operations.
type Criteria struct {
	Fields  []string    `json:"fields,omitempty"` // nil or ["*"] selects every column
	Where   []Condition `json:"where,omitempty"`  // ANDed together
	OrderBy []OrderBy   `json:"orderBy,omitempty"`
	Limit   *int        `json:"limit,omitempty"`
	Offset  *int        `json:"offset,omitempty"` // only applied with Limit
}

// Record is a row keyed by column name.
type Record map[string]any

// Statement is a compiled query with its bound parameters.
type Statement struct {
	Query string
	Args  []any
}
