// Package api is the JSON-over-HTTP transport. Every operation is posted to a single
// endpoint as {"action", "dbName", "payload"} and answered with a status envelope.
package api

import (
	"context"
	"net/http"

	"github.com/joe-ervin05/tablestore/daos"
)

// Run registers all API routes on the provided ServeMux.
//
// Routes:
//   - POST /api - action dispatcher, see actions
//   - GET /health - liveness probe
func Run(app *http.ServeMux) {
	app.HandleFunc("GET /health", handleHealth())
	app.HandleFunc("POST /api", handleAction())
}

// actions maps each action name to its handler.
var actions = map[string]ActionHandler{
	"create_database":  handleCreateDatabase,
	"delete_database":  handleDeleteDatabase,
	"backup_database":  handleBackupDatabase,
	"restore_database": handleRestoreDatabase,
	"list_backups":     handleListBackups,
	"list_tables":      handleListTables,
	"create_table":     withTable(handleCreateTable),
	"delete_table":     withTable(handleDeleteTable),
	"get_table_schema": withTable(handleGetTableSchema),
	"insert_record":    withTable(handleInsertRecord),
	"select_records":   withTable(handleSelectRecords),
	"update_records":   withTable(handleUpdateRecords),
	"delete_records":   withTable(handleDeleteRecords),
}

func handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}
}

func handleAction() http.HandlerFunc {
	return withCatalog(func(ctx context.Context, cat *daos.Catalog, req Request) (Result, error) {
		handler, ok := actions[req.Action]
		if !ok {
			return Result{}, UnknownActionErr(req.Action)
		}
		return handler(ctx, cat, req)
	})
}
