package api

import (
	"context"
	"fmt"

	"github.com/joe-ervin05/tablestore/daos"
)

// dbNameFromPayload reads payload.dbName, falling back to the top-level dbName.
func dbNameFromPayload(req Request, action string) (string, error) {
	name := payloadString(req.Payload, "dbName")
	if name == "" {
		name = req.DbName
	}
	if name == "" {
		return "", InvalidRequestErr(fmt.Sprintf("missing 'dbName' in payload for %s", action))
	}
	return name, nil
}

func handleCreateDatabase(ctx context.Context, cat *daos.Catalog, req Request) (Result, error) {
	name, err := dbNameFromPayload(req, "create_database")
	if err != nil {
		return Result{}, err
	}

	if err := cat.CreateDatabase(ctx, name); err != nil {
		return Result{}, err
	}

	return Result{Message: fmt.Sprintf("Database '%s' created successfully.", cat.Name())}, nil
}

func handleDeleteDatabase(ctx context.Context, cat *daos.Catalog, req Request) (Result, error) {
	name, err := dbNameFromPayload(req, "delete_database")
	if err != nil {
		return Result{}, err
	}

	if err := cat.DeleteDatabase(ctx, name); err != nil {
		return Result{}, err
	}

	return Result{Message: fmt.Sprintf("Database '%s' deleted successfully.", name)}, nil
}

func handleBackupDatabase(ctx context.Context, cat *daos.Catalog, req Request) (Result, error) {
	if cat.Name() == "" {
		return Result{}, InvalidRequestErr("database not selected, provide 'dbName'")
	}

	info, err := cat.BackupDatabase(ctx, cat.Name())
	if err != nil {
		return Result{}, err
	}

	return Result{
		Message: fmt.Sprintf("Database '%s' backed up successfully.", info.Database),
		Data: map[string]any{
			"backup_path": info.Path,
			"file_name":   info.FileName,
			"blake3":      info.Checksum,
			"size":        info.Size,
		},
	}, nil
}

func handleRestoreDatabase(ctx context.Context, cat *daos.Catalog, req Request) (Result, error) {
	target := payloadString(req.Payload, "dbNameToRestore")
	if target == "" {
		target = cat.Name()
	}
	if target == "" {
		return Result{}, InvalidRequestErr("missing 'dbNameToRestore' or current 'dbName'")
	}

	backupFileName := payloadString(req.Payload, "backupFileName")
	if backupFileName == "" {
		return Result{}, InvalidRequestErr("missing 'backupFileName' in payload")
	}

	if err := cat.RestoreDatabase(ctx, target, backupFileName); err != nil {
		return Result{}, err
	}

	return Result{Message: fmt.Sprintf("Database '%s' restored successfully from '%s'.", cat.Name(), backupFileName)}, nil
}

func handleListBackups(ctx context.Context, cat *daos.Catalog, req Request) (Result, error) {
	name, err := dbNameFromPayload(req, "list_backups")
	if err != nil {
		return Result{}, err
	}

	backups, err := cat.ListBackups(name)
	if err != nil {
		return Result{}, err
	}

	return Result{Message: fmt.Sprintf("%d backup(s) of '%s'.", len(backups), name), Data: backups}, nil
}

func handleListTables(ctx context.Context, cat *daos.Catalog, req Request) (Result, error) {
	if req.selectErr != nil {
		return Result{}, req.selectErr
	}

	tables, err := cat.ListTables(ctx)
	if err != nil {
		return Result{}, err
	}

	return Result{Message: fmt.Sprintf("Tables of '%s'.", cat.Name()), Data: tables}, nil
}

func handleCreateTable(ctx context.Context, tbl *daos.Table, req Request) (Result, error) {
	columns, err := daos.NormalizeColumns(req.Payload["columns"])
	if err != nil {
		return Result{}, err
	}

	if err := tbl.CreateTable(ctx, columns); err != nil {
		return Result{}, err
	}

	return Result{Message: fmt.Sprintf("Table '%s' created successfully.", tbl.Name())}, nil
}

func handleDeleteTable(ctx context.Context, tbl *daos.Table, req Request) (Result, error) {
	if err := tbl.DeleteTable(ctx); err != nil {
		return Result{}, err
	}

	return Result{Message: fmt.Sprintf("Table '%s' deleted successfully.", tbl.Name())}, nil
}

func handleGetTableSchema(ctx context.Context, tbl *daos.Table, req Request) (Result, error) {
	schema, err := tbl.GetTableSchema(ctx)
	if err != nil {
		return Result{}, err
	}

	return Result{Message: fmt.Sprintf("Schema for table '%s'.", tbl.Name()), Data: schema}, nil
}

func handleInsertRecord(ctx context.Context, tbl *daos.Table, req Request) (Result, error) {
	data, err := daos.NormalizeRecord(req.Payload["data"])
	if err != nil {
		return Result{}, err
	}

	id, err := tbl.Insert(ctx, data)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Message: fmt.Sprintf("Record inserted into '%s'.", tbl.Name()),
		Data:    map[string]any{"last_insert_id": id},
	}, nil
}

func handleSelectRecords(ctx context.Context, tbl *daos.Table, req Request) (Result, error) {
	criteria, err := daos.NormalizeCriteria(req.Payload["criteria"])
	if err != nil {
		return Result{}, err
	}

	records, err := tbl.Select(ctx, criteria)
	if err != nil {
		return Result{}, err
	}

	return Result{Message: fmt.Sprintf("Records selected from '%s'.", tbl.Name()), Data: records}, nil
}

func handleUpdateRecords(ctx context.Context, tbl *daos.Table, req Request) (Result, error) {
	data, err := daos.NormalizeRecord(req.Payload["data"])
	if err != nil {
		return Result{}, err
	}
	where, err := daos.NormalizeConditions(req.Payload["where"])
	if err != nil {
		return Result{}, err
	}

	n, err := tbl.Update(ctx, data, where)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Message: fmt.Sprintf("%d record(s) updated in '%s'.", n, tbl.Name()),
		Data:    map[string]any{"affected_rows": n},
	}, nil
}

func handleDeleteRecords(ctx context.Context, tbl *daos.Table, req Request) (Result, error) {
	where, err := daos.NormalizeConditions(req.Payload["where"])
	if err != nil {
		return Result{}, err
	}

	n, err := tbl.Delete(ctx, where)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Message: fmt.Sprintf("%d record(s) deleted from '%s'.", n, tbl.Name()),
		Data:    map[string]any{"affected_rows": n},
	}, nil
}
