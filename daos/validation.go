package daos

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	tableNamePattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	databaseNameStrip  = regexp.MustCompile(`[^A-Za-z0-9_\-]`)
	fieldStrip         = regexp.MustCompile(`[^A-Za-z0-9_]`)
	leadingDigits      = regexp.MustCompile(`^[0-9]+`)
	constraintsPattern = regexp.MustCompile(`^[A-Za-z0-9_ ]+$`)
	// A type name, optionally followed by a size or precision/scale, e.g. DECIMAL(10,2).
	columnTypePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_ ]*(\(\s*[0-9]+\s*(,\s*[0-9]+\s*)?\))?$`)
)

// SanitizeDatabaseName strips every character outside [A-Za-z0-9_-].
// A name that is empty afterwards is rejected.
func SanitizeDatabaseName(name string) (string, error) {
	clean := databaseNameStrip.ReplaceAllString(name, "")
	if clean == "" {
		return "", fmt.Errorf("%w: database name %q is empty or contains only invalid characters", ErrInvalidName, name)
	}
	return clean, nil
}

// ValidateTableName checks name against ^[A-Za-z_][A-Za-z0-9_]*$.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("%w: table name %q must start with a letter or underscore, followed by letters, numbers, or underscores", ErrInvalidName, name)
	}
	return nil
}

// sanitizeField keeps only [A-Za-z0-9_]. Used for condition, order and data keys.
func sanitizeField(field string) string {
	return fieldStrip.ReplaceAllString(field, "")
}

// sanitizeColumnName produces an identifier matching ^[A-Za-z_][A-Za-z0-9_]*$ or "".
func sanitizeColumnName(name string) string {
	return leadingDigits.ReplaceAllString(sanitizeField(name), "")
}

// quoteIdent wraps an already sanitized identifier.
func quoteIdent(name string) string {
	return "[" + name + "]"
}

// columnDDL validates one column definition and renders it for CREATE TABLE.
func columnDDL(col ColumnDef) (string, error) {
	if strings.TrimSpace(col.Name) == "" || strings.TrimSpace(col.Type) == "" {
		return "", fmt.Errorf("%w: column definition must include 'name' and 'type'", ErrInvalidColumn)
	}

	name := sanitizeColumnName(col.Name)
	if name == "" {
		return "", fmt.Errorf("%w: invalid column name %q", ErrInvalidColumn, col.Name)
	}

	colType := strings.ToUpper(strings.TrimSpace(col.Type))
	if !columnTypePattern.MatchString(colType) {
		return "", fmt.Errorf("%w: invalid type %q for column '%s'", ErrInvalidColumn, col.Type, name)
	}

	ddl := quoteIdent(name) + " " + colType

	if col.Constraints != "" {
		if !constraintsPattern.MatchString(col.Constraints) {
			return "", fmt.Errorf("%w: invalid characters in constraints for column '%s'", ErrInvalidColumn, name)
		}
		ddl += " " + strings.TrimSpace(col.Constraints)
	}

	return ddl, nil
}
