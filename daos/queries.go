package daos

import (
	"context"
	"slices"
)

// Insert adds one row and returns the backend-generated row id.
func (tbl *Table) Insert(ctx context.Context, data Record) (int64, error) {
	stmt, err := buildInsert(tbl.name, data)
	if err != nil {
		return 0, err
	}

	res, err := tbl.exec.ExecContext(ctx, stmt.Query, stmt.Args...)
	if err != nil {
		return 0, BackendErr("insert into "+tbl.name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, BackendErr("insert into "+tbl.name, err)
	}

	return id, nil
}

// Select returns the rows matching criteria. An empty Where selects every row.
func (tbl *Table) Select(ctx context.Context, criteria Criteria) ([]Record, error) {
	stmt, err := buildSelect(tbl.name, criteria)
	if err != nil {
		return nil, err
	}

	rows, err := tbl.exec.QueryContext(ctx, stmt.Query, stmt.Args...)
	if err != nil {
		return nil, BackendErr("query '"+stmt.Query+"'", err)
	}
	defer rows.Close()

	records, err := scanRows(rows)
	if err != nil {
		return nil, BackendErr("query '"+stmt.Query+"'", err)
	}

	return records, nil
}

// Update sets data on every row matching where and returns the affected row count.
// It refuses to run without at least one usable condition.
func (tbl *Table) Update(ctx context.Context, data Record, where []Condition) (int64, error) {
	stmt, err := buildUpdate(tbl.name, data, where)
	if err != nil {
		return 0, err
	}

	return tbl.execAffected(ctx, "update "+tbl.name, stmt)
}

// Delete removes every row matching where and returns the affected row count.
// It refuses to run without at least one usable condition.
func (tbl *Table) Delete(ctx context.Context, where []Condition) (int64, error) {
	stmt, err := buildDelete(tbl.name, where)
	if err != nil {
		return 0, err
	}

	return tbl.execAffected(ctx, "delete from "+tbl.name, stmt)
}

func (tbl *Table) execAffected(ctx context.Context, op string, stmt Statement) (int64, error) {
	res, err := tbl.exec.ExecContext(ctx, stmt.Query, stmt.Args...)
	if err != nil {
		return 0, BackendErr(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, BackendErr(op, err)
	}

	return n, nil
}

func sortedKeys(data Record) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
