package daos

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/joe-ervin05/tablestore/config"
)

// BackupInfo describes a backup artifact.
type BackupInfo struct {
	Path      string    `json:"backupPath"`
	FileName  string    `json:"fileName"`
	Database  string    `json:"dbName"`
	Checksum  string    `json:"blake3"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateDatabase creates an empty database file and selects it.
func (c *Catalog) CreateDatabase(ctx context.Context, name string) error {
	clean, err := SanitizeDatabaseName(name)
	if err != nil {
		return err
	}

	path := c.databasePath(clean)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return DatabaseExistsErr(clean)
		}
		return IOErr("create database "+clean, err)
	}
	if err := f.Close(); err != nil {
		return IOErr("create database "+clean, err)
	}

	slog.Info("database created", "db", clean, "path", path)

	return c.SelectDatabase(ctx, clean)
}

// DeleteDatabase removes the database file, closing the connection first if it targets it.
func (c *Catalog) DeleteDatabase(ctx context.Context, name string) error {
	clean, err := SanitizeDatabaseName(name)
	if err != nil {
		return err
	}

	path := c.databasePath(clean)
	if !fileExists(path) {
		return DatabaseNotFoundErr(clean)
	}

	if c.path == path {
		c.Close()
		c.name, c.path = "", ""
	}

	if err := os.Remove(path); err != nil {
		return IOErr("delete database "+clean, err)
	}

	slog.Info("database deleted", "db", clean)
	return nil
}

// BackupDatabase copies the database file to a timestamped artifact in the backup directory.
// A connection to the database is closed for the copy and reopened afterwards.
// Two backups within the same second share a file name, and the later one wins.
func (c *Catalog) BackupDatabase(ctx context.Context, name string) (BackupInfo, error) {
	clean, err := SanitizeDatabaseName(name)
	if err != nil {
		return BackupInfo{}, err
	}

	src := c.databasePath(clean)
	if !fileExists(src) {
		return BackupInfo{}, DatabaseNotFoundErr(clean)
	}

	reopen := c.db != nil && c.path == src
	if reopen {
		c.Close()
	}

	now := c.opts.Now()
	compress := c.opts.Compression == config.CompressionXZ
	fileName := clean + BackupInfix + now.Format(BackupTimestamp) + DatabaseExt
	if compress {
		fileName += XZSuffix
	}
	dst := filepath.Join(c.opts.BackupDir, fileName)

	checksum, size, copyErr := writeArtifact(src, dst, compress)

	if reopen {
		if err := c.connect(ctx); err != nil && copyErr == nil {
			return BackupInfo{}, err
		}
	}
	if copyErr != nil {
		return BackupInfo{}, IOErr("back up database "+clean, copyErr)
	}

	info := BackupInfo{
		Path:      dst,
		FileName:  fileName,
		Database:  clean,
		Checksum:  checksum,
		Size:      size,
		CreatedAt: now.Truncate(time.Second),
	}

	slog.Info("database backed up", "db", clean, "path", dst, "blake3", checksum, "size", size)
	return info, nil
}

// RestoreDatabase overwrites the named database with a backup artifact and selects it.
// Only the base name of backupFileName is used; the artifact must live in the backup directory.
func (c *Catalog) RestoreDatabase(ctx context.Context, name, backupFileName string) error {
	clean, err := SanitizeDatabaseName(name)
	if err != nil {
		return err
	}

	base := filepath.Base(strings.TrimSpace(backupFileName))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return BackupNotFoundErr(backupFileName)
	}

	src := filepath.Join(c.opts.BackupDir, base)
	if !fileExists(src) {
		return BackupNotFoundErr(base)
	}

	dst := c.databasePath(clean)
	if c.path == dst {
		c.Close()
	}

	if err := restoreArtifact(src, dst); err != nil {
		// best effort reconnect
		if c.path != "" && c.db == nil {
			_ = c.connect(ctx)
		}
		return IOErr("restore database "+clean+" from "+base, err)
	}

	slog.Info("database restored", "db", clean, "backup", base)

	return c.SelectDatabase(ctx, clean)
}

// ListBackups returns the artifacts of a database, newest first.
func (c *Catalog) ListBackups(name string) ([]BackupInfo, error) {
	clean, err := SanitizeDatabaseName(name)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(c.opts.BackupDir)
	if err != nil {
		return nil, IOErr("list backups", err)
	}

	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(clean+BackupInfix) + `([0-9]{14})` + regexp.QuoteMeta(DatabaseExt) + `(` + regexp.QuoteMeta(XZSuffix) + `)?$`)

	backups := []BackupInfo{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		m := pattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}

		created, err := time.ParseInLocation(BackupTimestamp, m[1], time.Local)
		if err != nil {
			continue
		}

		path := filepath.Join(c.opts.BackupDir, entry.Name())
		checksum, size, err := checksumFile(path)
		if err != nil {
			return nil, IOErr("read backup "+entry.Name(), err)
		}

		backups = append(backups, BackupInfo{
			Path:      path,
			FileName:  entry.Name(),
			Database:  clean,
			Checksum:  checksum,
			Size:      size,
			CreatedAt: created,
		})
	}

	slices.SortStableFunc(backups, func(a, b BackupInfo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return backups, nil
}

// ListTables maps every user table of the connected database to its columns.
func (c *Catalog) ListTables(ctx context.Context) (map[string][]ColumnInfo, error) {
	if c.db == nil {
		return nil, c.notConnectedErr()
	}

	names, err := userTables(ctx, c.db)
	if err != nil {
		return nil, err
	}

	tables := make(map[string][]ColumnInfo, len(names))
	for _, name := range names {
		tbl := Table{exec: c.db, name: name, db: c.name}
		cols, err := tbl.GetTableSchema(ctx)
		if err != nil {
			return nil, err
		}
		tables[name] = cols
	}

	return tables, nil
}

// TableExists reports whether the connected database has the table.
// It is false while disconnected or on lookup failure.
func (c *Catalog) TableExists(ctx context.Context, name string) bool {
	if c.db == nil || ValidateTableName(name) != nil {
		return false
	}

	ok, err := tableExists(ctx, c.db, name)
	return err == nil && ok
}
