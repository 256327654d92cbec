package daos

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// The Normalize functions turn decoded transport payloads (the map[string]any / []any
// shapes produced by encoding/json or the SOAP decoder) into the canonical types.

var leadingInt = regexp.MustCompile(`^\s*[+-]?[0-9]+`)

// NormalizeCriteria accepts a criteria object. Fields may be a list or a comma separated
// string, orderBy a list of {field, direction} objects or a "field:dir,field" string.
func NormalizeCriteria(raw any) (Criteria, error) {
	if raw == nil {
		return Criteria{}, nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return Criteria{}, fmt.Errorf("%w: criteria must be an object", ErrInvalidValue)
	}

	var criteria Criteria
	var err error

	if criteria.Fields, err = NormalizeFields(obj["fields"]); err != nil {
		return Criteria{}, err
	}
	if criteria.Where, err = NormalizeConditions(obj["where"]); err != nil {
		return Criteria{}, err
	}
	if criteria.OrderBy, err = NormalizeOrderBy(obj["orderBy"]); err != nil {
		return Criteria{}, err
	}

	if v, ok := obj["limit"]; ok && v != nil {
		limit := coerceInt(v)
		criteria.Limit = &limit
	}
	if v, ok := obj["offset"]; ok && v != nil {
		offset := coerceInt(v)
		criteria.Offset = &offset
	}

	return criteria, nil
}

// NormalizeFields accepts nil, a list of strings, or a comma separated string.
func NormalizeFields(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	case []string:
		return v, nil
	case []any:
		fields := make([]string, 0, len(v))
		for _, f := range v {
			s, ok := f.(string)
			if !ok {
				return nil, fmt.Errorf("%w: fields must be strings", ErrInvalidValue)
			}
			fields = append(fields, strings.TrimSpace(s))
		}
		return fields, nil
	}

	return nil, fmt.Errorf("%w: fields must be a list or a comma separated string", ErrInvalidValue)
}

// NormalizeConditions accepts nil or a list of {field, operator, value} objects.
func NormalizeConditions(raw any) ([]Condition, error) {
	if raw == nil {
		return nil, nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: where must be a list of conditions", ErrInvalidValue)
	}

	conds := make([]Condition, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: condition %d must be an object", ErrInvalidValue, i)
		}

		field, _ := obj["field"].(string)
		op, _ := obj["operator"].(string)

		conds = append(conds, Condition{Field: field, Operator: op, Value: obj["value"]})
	}

	return conds, nil
}

// NormalizeOrderBy accepts nil, a list of {field, direction} objects, or a "name:desc,id" string.
func NormalizeOrderBy(raw any) ([]OrderBy, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		var order []OrderBy
		for _, part := range strings.Split(v, ",") {
			field, dir, _ := strings.Cut(strings.TrimSpace(part), ":")
			if field == "" {
				continue
			}
			order = append(order, OrderBy{Field: field, Direction: dir})
		}
		return order, nil
	case []any:
		order := make([]OrderBy, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: orderBy entry %d must be an object", ErrInvalidValue, i)
			}
			field, _ := obj["field"].(string)
			dir, _ := obj["direction"].(string)
			order = append(order, OrderBy{Field: field, Direction: dir})
		}
		return order, nil
	}

	return nil, fmt.Errorf("%w: orderBy must be a list", ErrInvalidValue)
}

// NormalizeColumns accepts a list of {name, type, constraints} objects.
func NormalizeColumns(raw any) ([]ColumnDef, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: columns must be a list of column definitions", ErrInvalidColumn)
	}

	cols := make([]ColumnDef, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: column %d must be an object", ErrInvalidColumn, i)
		}

		name, _ := obj["name"].(string)
		typ, _ := obj["type"].(string)
		constraints, _ := obj["constraints"].(string)

		cols = append(cols, ColumnDef{Name: name, Type: typ, Constraints: constraints})
	}

	return cols, nil
}

// NormalizeRecord accepts a non-empty object of column values.
func NormalizeRecord(raw any) (Record, error) {
	if raw == nil {
		return nil, ErrEmptyInput
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: data must be an object", ErrInvalidValue)
	}
	if len(obj) == 0 {
		return nil, ErrEmptyInput
	}

	return Record(obj), nil
}

// coerceInt converts a loosely typed number. Non-numeric input becomes 0 and negatives are clamped to 0.
func coerceInt(v any) int {
	var n int

	switch val := v.(type) {
	case int:
		n = val
	case int64:
		n = int(val)
	case float64:
		if !math.IsNaN(val) && !math.IsInf(val, 0) {
			n = int(val)
		}
	case bool:
		if val {
			n = 1
		}
	case string:
		if m := leadingInt.FindString(val); m != "" {
			n, _ = strconv.Atoi(strings.TrimSpace(m))
		}
	}

	return max(n, 0)
}
