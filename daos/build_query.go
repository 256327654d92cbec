package daos

import (
	"database/sql"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
)

// compileWhere turns conditions into an AND-joined predicate list without the WHERE keyword.
// Conditions whose field sanitizes to an empty string are dropped. Every value is bound
// as a named parameter where_{index}_{field}, with _{k} appended per IN element. The
// condition index leads so that no field name can make two parameters collide.
func compileWhere(conds []Condition) (string, []any, error) {
	var preds []string
	var args []any

	for i, cond := range conds {
		field := sanitizeField(cond.Field)
		if field == "" {
			continue
		}

		op := strings.ToUpper(strings.Join(strings.Fields(cond.Operator), " "))
		if !validOperators[op] {
			return "", nil, InvalidOperatorErr(cond.Operator)
		}

		param := fmt.Sprintf("%s_%d_%s", paramWhere, i, field)

		if op == OpIn || op == OpNotIn {
			list, ok := listValue(cond.Value)
			if !ok || len(list) == 0 {
				return "", nil, fmt.Errorf("%w: operator %s on '%s' requires a non-empty list", ErrInvalidValue, op, field)
			}

			placeholders := make([]string, len(list))
			for k, v := range list {
				if !isScalar(v) {
					return "", nil, fmt.Errorf("%w: list for '%s' must contain only scalar values", ErrInvalidValue, field)
				}
				name := fmt.Sprintf("%s_%d", param, k)
				placeholders[k] = ":" + name
				args = append(args, sql.Named(name, v))
			}

			preds = append(preds, fmt.Sprintf("%s %s (%s)", quoteIdent(field), op, strings.Join(placeholders, ", ")))
			continue
		}

		if !isScalar(cond.Value) {
			return "", nil, fmt.Errorf("%w: operator %s on '%s' requires a scalar value", ErrInvalidValue, op, field)
		}

		preds = append(preds, fmt.Sprintf("%s %s :%s", quoteIdent(field), op, param))
		args = append(args, sql.Named(param, cond.Value))
	}

	return strings.Join(preds, " AND "), args, nil
}

// compileOrder builds an ORDER BY list without the keyword.
func compileOrder(order []OrderBy) string {
	var parts []string

	for _, o := range order {
		field := sanitizeField(o.Field)
		if field == "" {
			continue
		}

		dir := OrderAsc
		if strings.ToUpper(strings.TrimSpace(o.Direction)) == OrderDesc {
			dir = OrderDesc
		}

		parts = append(parts, quoteIdent(field)+" "+dir)
	}

	return strings.Join(parts, ", ")
}

// compileFields returns the projection list, * when nothing usable was requested.
// A literal * entry is kept in place next to the named fields.
func compileFields(fields []string) string {
	var cols []string

	for _, f := range fields {
		if strings.TrimSpace(f) == AllFields {
			cols = append(cols, AllFields)
			continue
		}
		if field := sanitizeField(f); field != "" {
			cols = append(cols, quoteIdent(field))
		}
	}

	if len(cols) == 0 {
		return AllFields
	}
	return strings.Join(cols, ", ")
}

func compilePaging(limit, offset *int) string {
	if limit == nil {
		return ""
	}

	paging := " LIMIT " + strconv.Itoa(max(*limit, 0))
	if offset != nil {
		paging += " OFFSET " + strconv.Itoa(max(*offset, 0))
	}
	return paging
}

func buildSelect(table string, criteria Criteria) (Statement, error) {
	where, args, err := compileWhere(criteria.Where)
	if err != nil {
		return Statement{}, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s", compileFields(criteria.Fields), quoteIdent(table))
	if where != "" {
		query += " WHERE " + where
	}
	if order := compileOrder(criteria.OrderBy); order != "" {
		query += " ORDER BY " + order
	}
	query += compilePaging(criteria.Limit, criteria.Offset)

	return logStatement(Statement{query, args}), nil
}

func buildInsert(table string, data Record) (Statement, error) {
	if len(data) == 0 {
		return Statement{}, ErrEmptyInput
	}

	keys := sortedKeys(data)
	cols := make([]string, 0, len(keys))
	placeholders := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))

	for i, key := range keys {
		col := sanitizeField(key)
		if col == "" {
			return Statement{}, fmt.Errorf("%w: invalid column name %q", ErrInvalidColumn, key)
		}

		name := fmt.Sprintf("%s_%s_%d", paramInsert, col, i)
		cols = append(cols, quoteIdent(col))
		placeholders = append(placeholders, ":"+name)
		args = append(args, sql.Named(name, data[key]))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	return logStatement(Statement{query, args}), nil
}

func buildUpdate(table string, data Record, where []Condition) (Statement, error) {
	if len(data) == 0 {
		return Statement{}, ErrEmptyInput
	}
	if len(where) == 0 {
		return Statement{}, ErrMissingWhereClause
	}

	var sets []string
	var args []any

	for i, key := range sortedKeys(data) {
		col := sanitizeField(key)
		if col == "" {
			continue
		}

		name := fmt.Sprintf("%s_%s_%d", paramSet, col, i)
		sets = append(sets, fmt.Sprintf("%s = :%s", quoteIdent(col), name))
		args = append(args, sql.Named(name, data[key]))
	}

	if len(sets) == 0 {
		return Statement{}, fmt.Errorf("%w: no valid fields to update", ErrEmptyInput)
	}

	clause, whereArgs, err := compileWhere(where)
	if err != nil {
		return Statement{}, err
	}
	if clause == "" {
		return Statement{}, fmt.Errorf("%w: every condition was discarded during sanitization", ErrMissingWhereClause)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", quoteIdent(table), strings.Join(sets, ", "), clause)

	return logStatement(Statement{query, append(args, whereArgs...)}), nil
}

func buildDelete(table string, where []Condition) (Statement, error) {
	if len(where) == 0 {
		return Statement{}, ErrMissingWhereClause
	}

	clause, args, err := compileWhere(where)
	if err != nil {
		return Statement{}, err
	}
	if clause == "" {
		return Statement{}, fmt.Errorf("%w: every condition was discarded during sanitization", ErrMissingWhereClause)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", quoteIdent(table), clause)

	return logStatement(Statement{query, args}), nil
}

func logStatement(stmt Statement) Statement {
	slog.Debug("compiled statement", "query", stmt.Query, "params", len(stmt.Args))
	return stmt
}

// listValue reports whether v is a list and returns its elements. []byte is a scalar.
func listValue(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []byte:
		return nil, false
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list, true
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, []byte,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct, reflect.Pointer, reflect.Func, reflect.Chan:
		return false
	}
	return true
}
