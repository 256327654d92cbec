// Package soap is the SOAP 1.1 transport. Operations of the urn:DatabaseService contract
// are posted to /soap; their typed parameters are normalized into the canonical payload
// shapes of package daos and results are written back as {operation}Response elements.
package soap

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/joe-ervin05/tablestore/config"
	"github.com/joe-ervin05/tablestore/daos"
	"github.com/joe-ervin05/tablestore/tools"
)

// operation runs one SOAP operation against a request-scoped catalog.
type operation func(ctx context.Context, cat *daos.Catalog, c call) (response, error)

var operations = map[string]operation{
	"createDatabase":  createDatabase,
	"deleteDatabase":  deleteDatabase,
	"backupDatabase":  backupDatabase,
	"restoreDatabase": restoreDatabase,
	"listBackups":     listBackups,
	"listTables":      listTables,
	"createTable":     createTable,
	"deleteTable":     deleteTable,
	"getTableSchema":  getTableSchema,
	"insertRecord":    insertRecord,
	"selectRecords":   selectRecords,
	"updateRecords":   updateRecords,
	"deleteRecords":   deleteRecords,
}

// Run registers the SOAP endpoint on the provided ServeMux.
func Run(app *http.ServeMux) {
	app.HandleFunc("POST /soap", handleSOAP())
}

func handleSOAP() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		defer r.Body.Close()

		c, err := parseCall(r.Body)
		if err != nil {
			writeFault(w, FaultClient, err)
			return
		}

		op, ok := operations[c.Operation]
		if !ok {
			writeFault(w, FaultClient, clientErr("unknown operation '%s'", c.Operation))
			return
		}

		cat, err := daos.NewCatalog(daos.OptionsFromConfig(config.Cfg))
		if err != nil {
			writeFault(w, FaultServer, err)
			return
		}
		defer cat.Close()

		res, err := op(ctx, cat, c)
		if err != nil {
			if errors.Is(err, ErrClient) {
				writeFault(w, FaultClient, err)
				return
			}
			if !daos.IsClientError(err) {
				attrs := []any{
					"request_id", tools.RequestID(ctx),
					"operation", c.Operation,
					"error", err,
				}
				if code, ok := daos.BackendCode(err); ok {
					attrs = append(attrs, "sqlite_code", code)
				}
				tools.Logger.Error("soap operation failed", attrs...)
			}
			writeFault(w, FaultServer, err)
			return
		}

		res.XMLName = xml.Name{Local: "ns1:" + c.Operation + "Response"}
		writeEnvelope(w, http.StatusOK, res)
	}
}

func requireText(c call, name string) (string, error) {
	v := c.text(name)
	if v == "" {
		return "", clientErr("%s cannot be empty", name)
	}
	return v, nil
}

// selectDatabase attaches the catalog to dbName and requires a live connection.
func selectDatabase(ctx context.Context, cat *daos.Catalog, c call) error {
	name, err := requireText(c, "dbName")
	if err != nil {
		return err
	}

	if err := cat.SelectDatabase(ctx, name); err != nil {
		return err
	}
	if !cat.Connected() {
		return fmt.Errorf("%w: database '%s' not found or connection failed", daos.ErrNotConnected, name)
	}
	return nil
}

func table(ctx context.Context, cat *daos.Catalog, c call) (*daos.Table, error) {
	if err := selectDatabase(ctx, cat, c); err != nil {
		return nil, err
	}

	name, err := requireText(c, "tableName")
	if err != nil {
		return nil, err
	}

	return cat.Table(name)
}

func createDatabase(ctx context.Context, cat *daos.Catalog, c call) (response, error) {
	name, err := requireText(c, "dbName")
	if err != nil {
		return response{}, err
	}
	if err := cat.CreateDatabase(ctx, name); err != nil {
		return response{}, err
	}
	return response{Message: fmt.Sprintf("Database '%s' created successfully.", cat.Name())}, nil
}

func deleteDatabase(ctx context.Context, cat *daos.Catalog, c call) (response, error) {
	name, err := requireText(c, "dbName")
	if err != nil {
		return response{}, err
	}
	if err := cat.DeleteDatabase(ctx, name); err != nil {
		return response{}, err
	}
	return response{Message: fmt.Sprintf("Database '%s' deleted successfully.", name)}, nil
}

func backupDatabase(ctx context.Context, cat *daos.Catalog, c call) (response, error) {
	name, err := requireText(c, "dbName")
	if err != nil {
		return response{}, err
	}

	info, err := cat.BackupDatabase(ctx, name)
	if err != nil {
		return response{}, err
	}

	return response{BackupPath: info.Path, FileName: info.FileName, Checksum: info.Checksum}, nil
}

func restoreDatabase(ctx context.Context, cat *daos.Catalog, c call) (response, error) {
	name := c.text("dbNameToRestore")
	if name == "" {
		name = c.text("dbName")
	}
	if name == "" {
		return response{}, clientErr("dbNameToRestore cannot be empty")
	}

	backupFileName, err := requireText(c, "backupFileName")
	if err != nil {
		return response{}, err
	}

	if err := cat.RestoreDatabase(ctx, name, backupFileName); err != nil {
		return response{}, err
	}

	return response{Message: fmt.Sprintf("Database '%s' restored successfully from '%s'.", cat.Name(), backupFileName)}, nil
}

func listBackups(ctx context.Context, cat *daos.Catalog, c call) (response, error) {
	name, err := requireText(c, "dbName")
	if err != nil {
		return response{}, err
	}

	backups, err := cat.ListBackups(name)
	if err != nil {
		return response{}, err
	}

	list := &backupList{Backups: make([]backupInfo, len(backups))}
	for i, b := range backups {
		list.Backups[i] = backupInfo{
			FileName:  b.FileName,
			Path:      b.Path,
			Checksum:  b.Checksum,
			Size:      b.Size,
			CreatedAt: b.CreatedAt.Format(time.RFC3339),
		}
	}

	return response{Backups: list}, nil
}

func listTables(ctx context.Context, cat *daos.Catalog, c call) (response, error) {
	if err := selectDatabase(ctx, cat, c); err != nil {
		return response{}, err
	}

	tables, err := cat.ListTables(ctx)
	if err != nil {
		return response{}, err
	}

	list := &tableList{}
	for _, name := range sortedNames(tables) {
		list.Tables = append(list.Tables, tableSchema{TableName: name, Fields: encodeFields(tables[name])})
	}

	return response{Tables: list}, nil
}

func createTable(ctx context.Context, cat *daos.Catalog, c call) (response, error) {
	tbl, err := table(ctx, cat, c)
	if err != nil {
		return response{}, err
	}

	columns, err := daos.NormalizeColumns(decodeColumns(c.param("columns")))
	if err != nil {
		return response{}, err
	}

	if err := tbl.CreateTable(ctx, columns); err != nil {
		return response{}, err
	}

	return response{Message: fmt.Sprintf("Table '%s' created successfully.", tbl.Name())}, nil
}

func deleteTable(ctx context.Context, cat *daos.Catalog, c call) (response, error) {
	tbl, err := table(ctx, cat, c)
	if err != nil {
		return response{}, err
	}

	if err := tbl.DeleteTable(ctx); err != nil {
		return response{}, err
	}

	return response{Message: fmt.Sprintf("Table '%s' deleted successfully.", tbl.Name())}, nil
}

func getTableSchema(ctx context.Context, cat *daos.Catalog, c call) (response, error) {
	tbl, err := table(ctx, cat, c)
	if err != nil {
		return response{}, err
	}

	cols, err := tbl.GetTableSchema(ctx)
	if err != nil {
		return response{}, err
	}

	fields := encodeFields(cols)
	return response{Schema: &fields}, nil
}

func insertRecord(ctx context.Context, cat *daos.Catalog, c call) (response, error) {
	tbl, err := table(ctx, cat, c)
	if err != nil {
		return response{}, err
	}

	data, err := daos.NormalizeRecord(decodeKeyValues(c.param("data")))
	if err != nil {
		return response{}, err
	}

	id, err := tbl.Insert(ctx, data)
	if err != nil {
		return response{}, err
	}

	return response{LastInsertID: &id}, nil
}

func selectRecords(ctx context.Context, cat *daos.Catalog, c call) (response, error) {
	tbl, err := table(ctx, cat, c)
	if err != nil {
		return response{}, err
	}

	criteria, err := daos.NormalizeCriteria(decodeCriteria(c.param("criteria")))
	if err != nil {
		return response{}, err
	}

	rows, err := tbl.Select(ctx, criteria)
	if err != nil {
		return response{}, err
	}

	return response{Records: encodeRecords(rows)}, nil
}

func updateRecords(ctx context.Context, cat *daos.Catalog, c call) (response, error) {
	tbl, err := table(ctx, cat, c)
	if err != nil {
		return response{}, err
	}

	data, err := daos.NormalizeRecord(decodeKeyValues(c.param("data")))
	if err != nil {
		return response{}, err
	}
	where, err := daos.NormalizeConditions(decodeConditions(c.param("where")))
	if err != nil {
		return response{}, err
	}

	n, err := tbl.Update(ctx, data, where)
	if err != nil {
		return response{}, err
	}

	return response{AffectedRows: &n}, nil
}

func deleteRecords(ctx context.Context, cat *daos.Catalog, c call) (response, error) {
	tbl, err := table(ctx, cat, c)
	if err != nil {
		return response{}, err
	}

	where, err := daos.NormalizeConditions(decodeConditions(c.param("where")))
	if err != nil {
		return response{}, err
	}

	n, err := tbl.Delete(ctx, where)
	if err != nil {
		return response{}, err
	}

	return response{AffectedRows: &n}, nil
}

func sortedNames(tables map[string][]daos.ColumnInfo) []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
