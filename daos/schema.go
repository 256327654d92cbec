package daos

import (
	"context"
	"fmt"
	"strings"
)

// Table runs DDL and DML against a single table of the connected database.
type Table struct {
	exec Executor
	name string
	db   string
}

// Name returns the table name.
func (tbl *Table) Name() string {
	return tbl.name
}

// Exists reports whether the table is present in the database.
func (tbl *Table) Exists(ctx context.Context) (bool, error) {
	return tableExists(ctx, tbl.exec, tbl.name)
}

// CreateTable creates the table from the given column definitions.
func (tbl *Table) CreateTable(ctx context.Context, columns []ColumnDef) error {
	if len(columns) == 0 {
		return fmt.Errorf("%w: at least one column is required", ErrInvalidColumn)
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		ddl, err := columnDDL(col)
		if err != nil {
			return err
		}
		defs[i] = ddl
	}

	exists, err := tbl.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return TableExistsErr(tbl.name, tbl.db)
	}

	query := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(tbl.name), strings.Join(defs, ", "))
	logStatement(Statement{Query: query})

	if _, err := tbl.exec.ExecContext(ctx, query); err != nil {
		return BackendErr("create table "+tbl.name, err)
	}

	return nil
}

// DeleteTable drops the table.
func (tbl *Table) DeleteTable(ctx context.Context) error {
	exists, err := tbl.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return TableNotFoundErr(tbl.name, tbl.db)
	}

	if _, err := tbl.exec.ExecContext(ctx, "DROP TABLE "+quoteIdent(tbl.name)); err != nil {
		return BackendErr("drop table "+tbl.name, err)
	}

	return nil
}

// GetTableSchema returns the ordered column descriptors of the table.
// A missing table yields an empty result rather than an error.
func (tbl *Table) GetTableSchema(ctx context.Context) ([]ColumnInfo, error) {
	exists, err := tbl.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []ColumnInfo{}, nil
	}

	return tableInfo(ctx, tbl.exec, tbl.name)
}
