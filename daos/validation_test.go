package daos

import (
	"errors"
	"regexp"
	"testing"
)

func TestSanitizeDatabaseName(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"shop", "shop", false},
		{"my-db_2", "my-db_2", false},
		{"../../etc/passwd", "etcpasswd", false},
		{"shop.sqlite", "shopsqlite", false},
		{"   ", "", true},
		{"", "", true},
		{"../..", "", true},
		{"日本", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SanitizeDatabaseName(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidName) {
					t.Fatalf("expected ErrInvalidName, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if !pattern.MatchString(got) {
				t.Errorf("%q does not match database name pattern", got)
			}
		})
	}
}

func TestValidateTableName(t *testing.T) {
	valid := []string{"items", "_tmp", "Order_Lines2"}
	invalid := []string{"", "2items", "items;drop", "my table", "a-b", "[x]"}

	for _, name := range valid {
		if err := ValidateTableName(name); err != nil {
			t.Errorf("ValidateTableName(%q) = %v, want nil", name, err)
		}
	}
	for _, name := range invalid {
		if err := ValidateTableName(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidateTableName(%q) = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestSanitizeColumnName(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	tests := map[string]string{
		"name":       "name",
		"first name": "firstname",
		"1st":        "st",
		"123":        "",
		"a`b":        "ab",
		"x]; DROP":   "xDROP",
	}

	for in, want := range tests {
		got := sanitizeColumnName(in)
		if got != want {
			t.Errorf("sanitizeColumnName(%q) = %q, want %q", in, got, want)
		}
		if got != "" && !pattern.MatchString(got) {
			t.Errorf("%q does not match identifier pattern", got)
		}
	}
}

func TestColumnDDL(t *testing.T) {
	tests := []struct {
		name    string
		col     ColumnDef
		want    string
		wantErr bool
	}{
		{"primary key", ColumnDef{"id", "integer", "PRIMARY KEY AUTOINCREMENT"}, "[id] INTEGER PRIMARY KEY AUTOINCREMENT", false},
		{"no constraints", ColumnDef{"price", "real", ""}, "[price] REAL", false},
		{"sized type", ColumnDef{"code", "varchar(20)", "NOT NULL"}, "[code] VARCHAR(20) NOT NULL", false},
		{"precision type", ColumnDef{"amount", "decimal(10, 2)", ""}, "[amount] DECIMAL(10, 2)", false},
		{"missing name", ColumnDef{"", "TEXT", ""}, "", true},
		{"missing type", ColumnDef{"a", " ", ""}, "", true},
		{"name sanitizes to empty", ColumnDef{"%%", "TEXT", ""}, "", true},
		{"quote in constraints", ColumnDef{"a", "TEXT", "DEFAULT 'x'"}, "", true},
		{"semicolon in constraints", ColumnDef{"a", "TEXT", "NOT NULL; DROP TABLE x"}, "", true},
		{"injection through type", ColumnDef{"a", "TEXT, b TEXT", ""}, "", true},
		{"paren injection through type", ColumnDef{"a", "TEXT) ; --", ""}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := columnDDL(tt.col)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidColumn) {
					t.Fatalf("expected ErrInvalidColumn, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
