package daos

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestNormalizeCriteria(t *testing.T) {
	raw := decode(t, `{
		"fields": ["name", "price"],
		"where": [
			{"field": "price", "operator": ">", "value": 5},
			{"field": "id", "operator": "IN", "value": [1, 2]}
		],
		"orderBy": [{"field": "price", "direction": "DESC"}, {"field": "name"}],
		"limit": "10",
		"offset": 2
	}`)

	criteria, err := NormalizeCriteria(raw)
	if err != nil {
		t.Fatal(err)
	}

	want := Criteria{
		Fields: []string{"name", "price"},
		Where: []Condition{
			{Field: "price", Operator: ">", Value: float64(5)},
			{Field: "id", Operator: "IN", Value: []any{float64(1), float64(2)}},
		},
		OrderBy: []OrderBy{{Field: "price", Direction: "DESC"}, {Field: "name"}},
		Limit:   intPtr(10),
		Offset:  intPtr(2),
	}

	if !reflect.DeepEqual(criteria, want) {
		t.Errorf("got %+v\nwant %+v", criteria, want)
	}
}

func TestNormalizeCriteriaShapes(t *testing.T) {
	criteria, err := NormalizeCriteria(decode(t, `{"fields": "name, price", "orderBy": "price:desc,name"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(criteria.Fields, []string{"name", "price"}) {
		t.Errorf("fields = %v", criteria.Fields)
	}
	if !reflect.DeepEqual(criteria.OrderBy, []OrderBy{{"price", "desc"}, {"name", ""}}) {
		t.Errorf("orderBy = %v", criteria.OrderBy)
	}
	if criteria.Limit != nil || criteria.Offset != nil {
		t.Error("limit and offset should be unset")
	}

	empty, err := NormalizeCriteria(nil)
	if err != nil || !reflect.DeepEqual(empty, Criteria{}) {
		t.Errorf("nil criteria = %+v, %v", empty, err)
	}
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{float64(7), 7},
		{7.9, 7},
		{"12", 12},
		{"12abc", 12},
		{"abc", 0},
		{"", 0},
		{-4.0, 0},
		{"-3", 0},
		{true, 1},
		{[]any{1}, 0},
		{map[string]any{}, 0},
	}

	for _, tt := range tests {
		if got := coerceInt(tt.in); got != tt.want {
			t.Errorf("coerceInt(%#v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		fn      func() error
		wantErr error
	}{
		{"criteria not object", func() error { _, err := NormalizeCriteria("x"); return err }, ErrInvalidValue},
		{"where not list", func() error { _, err := NormalizeConditions(map[string]any{}); return err }, ErrInvalidValue},
		{"condition not object", func() error { _, err := NormalizeConditions([]any{"id=1"}); return err }, ErrInvalidValue},
		{"fields not strings", func() error { _, err := NormalizeFields([]any{1}); return err }, ErrInvalidValue},
		{"columns not list", func() error { _, err := NormalizeColumns("id INTEGER"); return err }, ErrInvalidColumn},
		{"column not object", func() error { _, err := NormalizeColumns([]any{"id"}); return err }, ErrInvalidColumn},
		{"nil record", func() error { _, err := NormalizeRecord(nil); return err }, ErrEmptyInput},
		{"empty record", func() error { _, err := NormalizeRecord(map[string]any{}); return err }, ErrEmptyInput},
		{"record not object", func() error { _, err := NormalizeRecord([]any{1}); return err }, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNormalizeColumns(t *testing.T) {
	cols, err := NormalizeColumns(decode(t, `[
		{"name": "id", "type": "INTEGER", "constraints": "PRIMARY KEY"},
		{"name": "name", "type": "TEXT"}
	]`))
	if err != nil {
		t.Fatal(err)
	}

	want := []ColumnDef{{"id", "INTEGER", "PRIMARY KEY"}, {"name", "TEXT", ""}}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("got %v, want %v", cols, want)
	}
}
