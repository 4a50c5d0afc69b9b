package datastore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Supported dialects
const (
	DialectSQLite = "sqlite"
	DialectMySQL  = "mysql"
)

const (
	sqliteScheme = "sqlite://"
	mysqlScheme  = "mysql://"
	memoryDSN    = ":memory:"
)

// dialectorFor maps a store URL onto a gorm dialector.
//
//	sqlite://logs/applog.db       SQLite file (directory is created)
//	sqlite://:memory:             in-memory SQLite
//	file:applog.db?cache=shared   SQLite URI passed through
//	logs/applog.db                bare path ending in .db, .sqlite or .sqlite3
//	mysql://user:pw@tcp(h:3306)/d go-sql-driver DSN
//	user:pw@tcp(h:3306)/d         bare go-sql-driver DSN
func dialectorFor(url string) (gorm.Dialector, string, error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return nil, "", fmt.Errorf("store url is empty")

	case strings.HasPrefix(url, sqliteScheme):
		return sqliteDialector(strings.TrimPrefix(url, sqliteScheme))

	case strings.HasPrefix(url, "file:"):
		return sqlite.Open(url), DialectSQLite, nil

	case strings.HasPrefix(url, mysqlScheme):
		return mysqlDialector(strings.TrimPrefix(url, mysqlScheme))

	case hasSQLiteExtension(url):
		return sqliteDialector(url)

	case strings.Contains(url, "@tcp(") || strings.Contains(url, "@unix("):
		return mysqlDialector(url)

	default:
		return nil, "", fmt.Errorf("unsupported store url %q", redactURL(url))
	}
}

func sqliteDialector(path string) (gorm.Dialector, string, error) {
	if path == "" {
		return nil, "", fmt.Errorf("sqlite store url has no path")
	}
	if path != memoryDSN {
		if err := ensureFileDirectory(path); err != nil {
			return nil, "", err
		}
	}
	return sqlite.Open(path), DialectSQLite, nil
}

// mysqlDialector opens a MySQL DSN; parseTime is forced so timestamps scan into time.Time.
func mysqlDialector(dsn string) (gorm.Dialector, string, error) {
	if dsn == "" {
		return nil, "", fmt.Errorf("mysql store url has no dsn")
	}
	if !strings.Contains(dsn, "parseTime=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "parseTime=true&loc=UTC"
	}
	return mysql.Open(dsn), DialectMySQL, nil
}

func hasSQLiteExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	default:
		return false
	}
}

// ensureFileDirectory creates the directory for a file path if it doesn't exist
func ensureFileDirectory(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "." || dir == filePath {
		return nil
	}

	const dirPermissions = 0o700
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// redactURL hides credentials in a store URL before it is put into an error.
func redactURL(url string) string {
	at := strings.LastIndex(url, "@")
	if at < 0 {
		return url
	}
	start := strings.Index(url, "://")
	if start >= 0 {
		start += len("://")
	} else {
		start = 0
	}
	if start > at {
		return url
	}
	return url[:start] + "[REDACTED]" + url[at:]
}
