package daos

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/joe-ervin05/tablestore/config"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Options configures where a Catalog keeps its files and how it opens them.
type Options struct {
	DataDir     string           // one {name}.sqlite file per database
	BackupDir   string           // backup artifacts
	Driver      string           // database/sql driver name, see DriverSQLite3
	Compression string           // config.CompressionNone or config.CompressionXZ
	Now         func() time.Time // clock for backup timestamps, time.Now if nil
}

// OptionsFromConfig builds Options from the loaded environment config.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		DataDir:     cfg.DataDir,
		BackupDir:   cfg.BackupDir,
		Driver:      cfg.Driver,
		Compression: cfg.BackupCompression,
	}
}

// Catalog manages the lifecycle of database files and owns at most one open connection.
// A Catalog is meant to serve a single request and is not safe for concurrent use.
type Catalog struct {
	opts Options
	name string  // selected logical name, "" if none
	path string  // path of the selected database file
	db   *sql.DB // nil while disconnected
}

// NewCatalog creates the data and backup directories if needed.
func NewCatalog(opts Options) (*Catalog, error) {
	if opts.Driver == "" {
		opts.Driver = DriverSQLite3
	}
	if opts.Compression == "" {
		opts.Compression = config.CompressionNone
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	for _, dir := range []string{opts.DataDir, opts.BackupDir} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, IOErr("create directory "+dir, err)
		}
	}

	return &Catalog{opts: opts}, nil
}

// SelectDatabase makes name the current database and connects to it.
// If the backing file does not exist the catalog stays disconnected and no error is returned;
// callers check Connected before running anything that needs a connection.
func (c *Catalog) SelectDatabase(ctx context.Context, name string) error {
	clean, err := SanitizeDatabaseName(name)
	if err != nil {
		return err
	}

	c.name = clean
	c.path = c.databasePath(clean)

	return c.connect(ctx)
}

func (c *Catalog) connect(ctx context.Context) error {
	c.Close()

	if !fileExists(c.path) {
		return nil
	}

	client, err := sql.Open(c.opts.Driver, "file:"+c.path)
	if err != nil {
		return BackendErr("open database "+c.name, err)
	}
	client.SetMaxOpenConns(1)

	if err := client.PingContext(ctx); err != nil {
		client.Close()
		return BackendErr("open database "+c.name, err)
	}

	c.db = client
	return nil
}

// Close releases the connection if one is open. The selected name is kept.
func (c *Catalog) Close() error {
	if c.db == nil {
		return nil
	}

	err := c.db.Close()
	c.db = nil
	return err
}

// Connected reports whether the catalog holds a live connection.
func (c *Catalog) Connected() bool {
	return c.db != nil
}

// Name returns the selected logical database name.
func (c *Catalog) Name() string {
	return c.name
}

// Conn returns the open connection, or nil while disconnected.
func (c *Catalog) Conn() *sql.DB {
	return c.db
}

// Table returns an engine for the named table of the connected database.
func (c *Catalog) Table(name string) (*Table, error) {
	if err := ValidateTableName(name); err != nil {
		return nil, err
	}
	if c.db == nil {
		return nil, c.notConnectedErr()
	}

	return &Table{exec: c.db, name: name, db: c.name}, nil
}

func (c *Catalog) notConnectedErr() error {
	if c.name == "" {
		return ErrNotConnected
	}
	return fmt.Errorf("%w: database '%s' does not exist", ErrNotConnected, c.name)
}

func (c *Catalog) databasePath(name string) string {
	return filepath.Join(c.opts.DataDir, name+DatabaseExt)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// scanRows reads every row into a Record keyed by column name.
func scanRows(rows *sql.Rows) ([]Record, error) {
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	records := []Record{}

	for rows.Next() {
		values := make([]any, len(columnTypes))
		scanArgs := make([]any, len(columnTypes))
		for i := range values {
			scanArgs[i] = &values[i]
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}

		record := make(Record, len(columnTypes))
		for i, col := range columnTypes {
			// sqlite columns are loosely typed, so the declared type only decides how raw bytes come back
			b, ok := values[i].([]byte)
			if !ok {
				record[col.Name()] = values[i]
				continue
			}

			if col.DatabaseTypeName() == "BLOB" {
				record[col.Name()] = slices.Clone(b)
			} else {
				record[col.Name()] = string(b)
			}
		}

		records = append(records, record)
	}

	return records, rows.Err()
}
