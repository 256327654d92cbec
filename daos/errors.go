// Package daos provides error definitions for the data access layer.
package daos

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
)

// Sentinel errors, one per error kind. Callers match them with errors.Is.
var (
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidColumn      = errors.New("invalid column definition")
	ErrInvalidOperator    = errors.New("invalid filter operator")
	ErrInvalidValue       = errors.New("invalid condition value")
	ErrEmptyInput         = errors.New("no data provided")
	ErrMissingWhereClause = errors.New("WHERE clause is required")
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("does not exist")
	ErrNotConnected       = errors.New("not connected to any database")
	ErrBackend            = errors.New("backend error")
	ErrIO                 = errors.New("i/o error")
)

// Kind names reported to transports alongside the error message.
const (
	KindInvalidName     = "InvalidName"
	KindInvalidColumn   = "InvalidColumn"
	KindInvalidOperator = "InvalidOperator"
	KindInvalidValue    = "InvalidValue"
	KindEmptyInput      = "EmptyInput"
	KindMissingWhere    = "MissingWhere"
	KindAlreadyExists   = "AlreadyExists"
	KindNotFound        = "NotFound"
	KindNotConnected    = "NotConnected"
	KindBackendError    = "BackendError"
	KindIOError         = "IOError"
	KindInternal        = "Internal"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidName, KindInvalidName},
	{ErrInvalidColumn, KindInvalidColumn},
	{ErrInvalidOperator, KindInvalidOperator},
	{ErrInvalidValue, KindInvalidValue},
	{ErrEmptyInput, KindEmptyInput},
	{ErrMissingWhereClause, KindMissingWhere},
	{ErrAlreadyExists, KindAlreadyExists},
	{ErrNotFound, KindNotFound},
	{ErrNotConnected, KindNotConnected},
	{ErrBackend, KindBackendError},
	{ErrIO, KindIOError},
}

// KindOf returns the error kind name for err, or KindInternal if err
// does not wrap one of the package sentinels.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// IsClientError reports whether err was caused by the caller's input or
// by the state of the target (validation and lifecycle errors), as opposed
// to a backend or filesystem failure.
func IsClientError(err error) bool {
	switch KindOf(err) {
	case KindBackendError, KindIOError, KindInternal:
		return false
	}
	return true
}

// InvalidOperatorErr returns an error for an operator outside the whitelist.
func InvalidOperatorErr(op string) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperator, op)
}

// DatabaseExistsErr returns an error indicating the database file is already present.
func DatabaseExistsErr(name string) error {
	return fmt.Errorf("database '%s' %w", name, ErrAlreadyExists)
}

// DatabaseNotFoundErr returns an error indicating the database file is absent.
func DatabaseNotFoundErr(name string) error {
	return fmt.Errorf("database '%s' %w", name, ErrNotFound)
}

// TableExistsErr returns an error indicating the table is already present.
func TableExistsErr(table, db string) error {
	return fmt.Errorf("table '%s' %w in database '%s'", table, ErrAlreadyExists, db)
}

// TableNotFoundErr returns an error indicating a table was not found.
func TableNotFoundErr(table, db string) error {
	return fmt.Errorf("table '%s' %w in database '%s'", table, ErrNotFound, db)
}

// BackupNotFoundErr returns an error indicating a backup artifact was not found.
func BackupNotFoundErr(fileName string) error {
	return fmt.Errorf("backup file '%s' %w", fileName, ErrNotFound)
}

// BackendErr wraps a driver error, keeping its message verbatim.
func BackendErr(op string, err error) error {
	return fmt.Errorf("%w: %s failed: %w", ErrBackend, op, err)
}

// IOErr wraps a filesystem error.
func IOErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}

// BackendCode returns the extended SQLite result code carried by a driver error.
func BackendCode(err error) (int, bool) {
	if code, ok := cgoBackendCode(err); ok {
		return code, true
	}

	var pureErr *sqlite.Error
	if errors.As(err, &pureErr) {
		return pureErr.Code(), true
	}

	return 0, false
}
