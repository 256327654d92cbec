package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/joe-ervin05/tablestore/config"
	"github.com/joe-ervin05/tablestore/daos"
	"github.com/joe-ervin05/tablestore/tools"
)

// Request is the body of every POST /api call.
type Request struct {
	Action  string         `json:"action"`
	DbName  string         `json:"dbName"`
	Payload map[string]any `json:"payload"`

	selectErr error // why dbName could not be selected, reported by actions that need it
}

// Result is the success payload of an action.
type Result struct {
	Message string
	Data    any
}

// ActionHandler runs one action against a request-scoped catalog.
type ActionHandler func(ctx context.Context, cat *daos.Catalog, req Request) (Result, error)

// TableHandler runs one action against a table of the selected database.
type TableHandler func(ctx context.Context, tbl *daos.Table, req Request) (Result, error)

// withCatalog decodes the request and gives the handler its own catalog, selecting
// dbName when one is given. A missing or invalid dbName is not an error here:
// create_database and delete_database take their target from the payload. Actions
// that run against the selected database report the selection error instead.
func withCatalog(handler ActionHandler) http.HandlerFunc {
	return func(wr http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		defer r.Body.Close()

		req, err := decodeRequest(r.Body)
		if err != nil {
			RespErr(wr, err)
			return
		}

		cat, err := daos.NewCatalog(daos.OptionsFromConfig(config.Cfg))
		if err != nil {
			RespErr(wr, err)
			return
		}
		defer cat.Close()

		if req.DbName != "" {
			if err := cat.SelectDatabase(ctx, req.DbName); err != nil {
				tools.Logger.Debug("database not selected", "db", req.DbName, "error", err)
				req.selectErr = err
			}
		}

		res, err := handler(ctx, cat, req)
		if err != nil {
			if !daos.IsClientError(err) {
				attrs := []any{
					"request_id", tools.RequestID(ctx),
					"action", req.Action,
					"db", req.DbName,
					"error", err,
				}
				if code, ok := daos.BackendCode(err); ok {
					attrs = append(attrs, "sqlite_code", code)
				}
				tools.Logger.Error("action failed", attrs...)
			}
			RespErr(wr, err)
			return
		}

		respond(wr, http.StatusOK, SuccessResponse{Status: StatusSuccess, Message: res.Message, Data: res.Data})
	}
}

// withTable resolves payload.tableName on the selected database.
func withTable(handler TableHandler) ActionHandler {
	return func(ctx context.Context, cat *daos.Catalog, req Request) (Result, error) {
		if req.selectErr != nil {
			return Result{}, req.selectErr
		}
		if !cat.Connected() {
			return Result{}, fmt.Errorf("%w: database '%s' not found or not connected for table operation", daos.ErrNotConnected, req.DbName)
		}

		tableName, _ := req.Payload["tableName"].(string)
		if tableName == "" {
			return Result{}, InvalidRequestErr(fmt.Sprintf("missing 'tableName' in payload for table operation '%s'", req.Action))
		}

		tbl, err := cat.Table(tableName)
		if err != nil {
			return Result{}, err
		}

		return handler(ctx, tbl, req)
	}
}

func decodeRequest(body io.Reader) (Request, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var req Request
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return Request{}, err
		}
		return Request{}, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	if req.Action == "" {
		return Request{}, InvalidRequestErr("missing 'action'")
	}

	if req.Payload == nil {
		req.Payload = map[string]any{}
	}
	req.Payload = convertNumbers(req.Payload).(map[string]any)

	return req, nil
}

// convertNumbers replaces json.Number with int64 when integral, float64 otherwise,
// so integer ids bind as integers.
func convertNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		for k, item := range val {
			val[k] = convertNumbers(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = convertNumbers(item)
		}
		return val
	}
	return v
}

// payloadString returns payload[key] if it is a non-empty string.
func payloadString(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

// Call posts an action to a running server and decodes the envelope.
func Call(url string, body Request) (*http.Response, map[string]any, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}

	res, err := http.Post(url, "application/json", &buf)
	if err != nil {
		return nil, nil, err
	}
	defer res.Body.Close()

	var envelope map[string]any
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return res, nil, err
	}

	return res, envelope, nil
}
