package daos

import (
	"context"
	"database/sql"
)

func tableExists(ctx context.Context, exec Executor, name string) (bool, error) {
	var n int
	err := exec.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		return false, BackendErr("look up table "+name, err)
	}
	return n > 0, nil
}

// tableInfo reads PRAGMA table_info for an existing table.
func tableInfo(ctx context.Context, exec Executor, name string) ([]ColumnInfo, error) {
	rows, err := exec.QueryContext(ctx, "SELECT cid, name, type, [notnull], dflt_value, pk FROM pragma_table_info(?)", name)
	if err != nil {
		return nil, BackendErr("read schema of "+name, err)
	}
	defer rows.Close()

	cols := []ColumnInfo{}
	for rows.Next() {
		var col ColumnInfo
		var notNull int64
		var dflt sql.NullString

		if err := rows.Scan(&col.CID, &col.Name, &col.Type, &notNull, &dflt, &col.PrimaryKey); err != nil {
			return nil, BackendErr("read schema of "+name, err)
		}

		col.NotNull = notNull != 0
		if dflt.Valid {
			col.Default = dflt.String
		}
		cols = append(cols, col)
	}

	if err := rows.Err(); err != nil {
		return nil, BackendErr("read schema of "+name, err)
	}

	return cols, nil
}

// userTables lists table names, skipping the backend's internal tables.
func userTables(ctx context.Context, exec Executor) ([]string, error) {
	rows, err := exec.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE ? ORDER BY name", SystemTablePrefix+"%")
	if err != nil {
		return nil, BackendErr("list tables", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, BackendErr("list tables", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, BackendErr("list tables", err)
	}

	return names, nil
}
