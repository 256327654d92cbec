package daos

import (
	"database/sql"
	"errors"
	"reflect"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestBuildSelect(t *testing.T) {
	tests := []struct {
		name      string
		criteria  Criteria
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "no criteria",
			criteria:  Criteria{},
			wantQuery: "SELECT * FROM [items]",
		},
		{
			name:      "single condition",
			criteria:  Criteria{Where: []Condition{{"name", "=", "Widget"}}},
			wantQuery: "SELECT * FROM [items] WHERE [name] = :where_0_name",
			wantArgs:  []any{sql.Named("where_0_name", "Widget")},
		},
		{
			name:      "same field twice",
			criteria:  Criteria{Where: []Condition{{"price", ">=", 1}, {"price", "<", 10}}},
			wantQuery: "SELECT * FROM [items] WHERE [price] >= :where_0_price AND [price] < :where_1_price",
			wantArgs:  []any{sql.Named("where_0_price", 1), sql.Named("where_1_price", 10)},
		},
		{
			name:      "in list",
			criteria:  Criteria{Where: []Condition{{"id", "in", []any{1, 2}}}},
			wantQuery: "SELECT * FROM [items] WHERE [id] IN (:where_0_id_0, :where_0_id_1)",
			wantArgs:  []any{sql.Named("where_0_id_0", 1), sql.Named("where_0_id_1", 2)},
		},
		{
			name:      "typed in list",
			criteria:  Criteria{Where: []Condition{{"name", "not in", []string{"a"}}}},
			wantQuery: "SELECT * FROM [items] WHERE [name] NOT IN (:where_0_name_0)",
			wantArgs:  []any{sql.Named("where_0_name_0", "a")},
		},
		{
			name:      "operator case and spacing",
			criteria:  Criteria{Where: []Condition{{"name", "not   like", "W%"}}},
			wantQuery: "SELECT * FROM [items] WHERE [name] NOT LIKE :where_0_name",
			wantArgs:  []any{sql.Named("where_0_name", "W%")},
		},
		{
			name:      "dropped condition keeps input index",
			criteria:  Criteria{Where: []Condition{{"%%", "=", 1}, {"id", "=", 2}}},
			wantQuery: "SELECT * FROM [items] WHERE [id] = :where_1_id",
			wantArgs:  []any{sql.Named("where_1_id", 2)},
		},
		{
			name:      "scalar and in list on look-alike fields",
			criteria:  Criteria{Where: []Condition{{"a_1", "=", 5}, {"a", "IN", []any{7}}}},
			wantQuery: "SELECT * FROM [items] WHERE [a_1] = :where_0_a_1 AND [a] IN (:where_1_a_0)",
			wantArgs:  []any{sql.Named("where_0_a_1", 5), sql.Named("where_1_a_0", 7)},
		},
		{
			name:      "nil value binds null",
			criteria:  Criteria{Where: []Condition{{"price", "=", nil}}},
			wantQuery: "SELECT * FROM [items] WHERE [price] = :where_0_price",
			wantArgs:  []any{sql.Named("where_0_price", nil)},
		},
		{
			name:      "fields order and paging",
			criteria:  Criteria{Fields: []string{"name", "pr ice"}, OrderBy: []OrderBy{{"name", "desc"}, {"id", "sideways"}, {"", "ASC"}}, Limit: intPtr(10), Offset: intPtr(5)},
			wantQuery: "SELECT [name], [price] FROM [items] ORDER BY [name] DESC, [id] ASC LIMIT 10 OFFSET 5",
		},
		{
			name:      "offset without limit",
			criteria:  Criteria{Offset: intPtr(5)},
			wantQuery: "SELECT * FROM [items]",
		},
		{
			name:      "wildcard field",
			criteria:  Criteria{Fields: []string{"*"}},
			wantQuery: "SELECT * FROM [items]",
		},
		{
			name:      "wildcard next to named field",
			criteria:  Criteria{Fields: []string{"id", " * "}},
			wantQuery: "SELECT [id], * FROM [items]",
		},
		{
			name:      "fields sanitized away",
			criteria:  Criteria{Fields: []string{"();", ""}},
			wantQuery: "SELECT * FROM [items]",
		},
		{
			name:      "identifier injection",
			criteria:  Criteria{Fields: []string{"name]; DROP TABLE items; --"}},
			wantQuery: "SELECT [nameDROPTABLEitems] FROM [items]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := buildSelect("items", tt.criteria)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stmt.Query != tt.wantQuery {
				t.Errorf("query = %q, want %q", stmt.Query, tt.wantQuery)
			}
			if len(stmt.Args) != len(tt.wantArgs) || (len(tt.wantArgs) > 0 && !reflect.DeepEqual(stmt.Args, tt.wantArgs)) {
				t.Errorf("args = %v, want %v", stmt.Args, tt.wantArgs)
			}
		})
	}
}

func TestParameterNamesUnique(t *testing.T) {
	tests := []struct {
		name  string
		data  Record
		where []Condition
	}{
		{"scalar then list", nil, []Condition{{"a_1", "=", 5}, {"a", "IN", []any{7, 8}}}},
		{"list then scalar", nil, []Condition{{"a", "NOT IN", []any{1, 2}}, {"a_0", "=", 3}}},
		{"numeric suffixes", nil, []Condition{{"x_1", "=", 1}, {"x", "=", 2}, {"x_1_1", "IN", []any{3}}, {"x_11", "=", 4}}},
		{"same field repeated", nil, []Condition{{"id", ">", 1}, {"id", "<", 9}, {"id", "IN", []any{2, 3}}}},
		{"update set and where", Record{"a_1": 1, "a": 2}, []Condition{{"a_1", "=", 5}, {"a", "IN", []any{7}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stmt Statement
			var err error
			if tt.data != nil {
				stmt, err = buildUpdate("items", tt.data, tt.where)
			} else {
				stmt, err = buildSelect("items", Criteria{Where: tt.where})
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			seen := map[string]any{}
			for _, arg := range stmt.Args {
				named, ok := arg.(sql.NamedArg)
				if !ok {
					t.Fatalf("unnamed argument %v", arg)
				}
				if prev, dup := seen[named.Name]; dup {
					t.Fatalf("parameter %q bound twice: %v and %v in %q", named.Name, prev, named.Value, stmt.Query)
				}
				seen[named.Name] = named.Value
			}
		})
	}
}

func TestCompileWhereErrors(t *testing.T) {
	tests := []struct {
		name    string
		conds   []Condition
		wantErr error
	}{
		{"unknown operator", []Condition{{"id", "~=", 1}}, ErrInvalidOperator},
		{"empty operator", []Condition{{"id", "", 1}}, ErrInvalidOperator},
		{"sql in operator", []Condition{{"id", "= 1 OR 1 =", 1}}, ErrInvalidOperator},
		{"empty in list", []Condition{{"id", "IN", []any{}}}, ErrInvalidValue},
		{"scalar in list", []Condition{{"id", "NOT IN", 3}}, ErrInvalidValue},
		{"nil in list", []Condition{{"id", "IN", nil}}, ErrInvalidValue},
		{"nested in list", []Condition{{"id", "IN", []any{[]any{1}}}}, ErrInvalidValue},
		{"list for equality", []Condition{{"id", "=", []any{1, 2}}}, ErrInvalidValue},
		{"object for equality", []Condition{{"id", "=", map[string]any{"a": 1}}}, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := compileWhere(tt.conds)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBuildInsert(t *testing.T) {
	stmt, err := buildInsert("items", Record{"price": 9.99, "name": "Widget"})
	if err != nil {
		t.Fatal(err)
	}

	want := "INSERT INTO [items] ([name], [price]) VALUES (:val_name_0, :val_price_1)"
	if stmt.Query != want {
		t.Errorf("query = %q, want %q", stmt.Query, want)
	}

	wantArgs := []any{sql.Named("val_name_0", "Widget"), sql.Named("val_price_1", 9.99)}
	if !reflect.DeepEqual(stmt.Args, wantArgs) {
		t.Errorf("args = %v, want %v", stmt.Args, wantArgs)
	}

	if _, err := buildInsert("items", Record{}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := buildInsert("items", Record{"'); --": 1}); !errors.Is(err, ErrInvalidColumn) {
		t.Errorf("expected ErrInvalidColumn, got %v", err)
	}
}

func TestBuildUpdate(t *testing.T) {
	stmt, err := buildUpdate("items", Record{"price": 12.0, "name": "Gadget"}, []Condition{{"id", "=", 1}})
	if err != nil {
		t.Fatal(err)
	}

	want := "UPDATE [items] SET [name] = :set_name_0, [price] = :set_price_1 WHERE [id] = :where_0_id"
	if stmt.Query != want {
		t.Errorf("query = %q, want %q", stmt.Query, want)
	}
	if len(stmt.Args) != 3 {
		t.Errorf("expected 3 args, got %d", len(stmt.Args))
	}

	tests := []struct {
		name    string
		data    Record
		where   []Condition
		wantErr error
	}{
		{"empty data", Record{}, []Condition{{"id", "=", 1}}, ErrEmptyInput},
		{"empty where", Record{"price": 1}, nil, ErrMissingWhereClause},
		{"where sanitized away", Record{"price": 1}, []Condition{{"--", "=", 1}, {"", "=", 2}}, ErrMissingWhereClause},
		{"no valid keys", Record{"!!": 1}, []Condition{{"id", "=", 1}}, ErrEmptyInput},
		{"bad operator", Record{"price": 1}, []Condition{{"id", "===", 1}}, ErrInvalidOperator},
		{"empty in list", Record{"price": 1}, []Condition{{"id", "IN", []any{}}}, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := buildUpdate("items", tt.data, tt.where); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBuildDelete(t *testing.T) {
	stmt, err := buildDelete("items", []Condition{{"id", "IN", []any{1, 2, 3}}})
	if err != nil {
		t.Fatal(err)
	}

	want := "DELETE FROM [items] WHERE [id] IN (:where_0_id_0, :where_0_id_1, :where_0_id_2)"
	if stmt.Query != want {
		t.Errorf("query = %q, want %q", stmt.Query, want)
	}

	if _, err := buildDelete("items", nil); !errors.Is(err, ErrMissingWhereClause) {
		t.Errorf("expected ErrMissingWhereClause, got %v", err)
	}
	if _, err := buildDelete("items", []Condition{{"???", "=", 1}}); !errors.Is(err, ErrMissingWhereClause) {
		t.Errorf("expected ErrMissingWhereClause, got %v", err)
	}
}
