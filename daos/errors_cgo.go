//go:build cgo

package daos

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// cgoBackendCode extracts the extended result code from a mattn/go-sqlite3 error.
func cgoBackendCode(err error) (int, bool) {
	var cgoErr sqlite3.Error
	if errors.As(err, &cgoErr) {
		return int(cgoErr.ExtendedCode), true
	}
	return 0, false
}
