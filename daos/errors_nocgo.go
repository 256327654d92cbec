//go:build !cgo

package daos

// cgoBackendCode reports no code: without cgo, mattn/go-sqlite3 only
// registers a stub driver and never returns sqlite3.Error values.
func cgoBackendCode(err error) (int, bool) {
	return 0, false
}
