package storage

import (
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// SQLiteDSN builds a go-sqlite3 DSN that enables foreign keys and a busy
// timeout on every pooled connection.
func SQLiteDSN(path string) string {
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}

// PostgresDSN builds a pgx connection URL.
func PostgresDSN(host string, port int, user, password, dbName string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		Path:     "/" + dbName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// New opens a database connection for driver and verifies it.
// maxOpenConns bounds the pool shared by the API and the scanner.
func New(driver, dsn string, maxOpenConns int) (*sql.DB, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if maxOpenConns <= 0 {
		maxOpenConns = 5
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS files (
		id {{id}},
		path TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		parent_id {{ref}} REFERENCES files(id) ON DELETE SET NULL,
		size {{bigint}},
		last_modified {{timestamp}} NOT NULL,
		subtype TEXT NOT NULL DEFAULT 'text',
		name TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_files_type_name ON files(type, name);`,
	`CREATE TABLE IF NOT EXISTS items (
		id {{id}},
		name TEXT NOT NULL,
		link TEXT,
		image_url TEXT,
		type TEXT NOT NULL DEFAULT 'file'
	);`,
	`CREATE INDEX IF NOT EXISTS idx_items_type_name ON items(type, name);`,
	`CREATE TABLE IF NOT EXISTS tags (
		id {{id}},
		"group" TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS tag_groups (
		id {{id}},
		name TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS topics (
		id {{id}},
		name TEXT NOT NULL,
		description TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS tag_group_tags (
		tag_group_id {{ref}} NOT NULL REFERENCES tag_groups(id) ON DELETE CASCADE,
		tag_id {{ref}} NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (tag_group_id, tag_id)
	);`,
	`CREATE TABLE IF NOT EXISTS topic_tag_groups (
		topic_id {{ref}} NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
		tag_group_id {{ref}} NOT NULL REFERENCES tag_groups(id) ON DELETE CASCADE,
		PRIMARY KEY (topic_id, tag_group_id)
	);`,
	`CREATE TABLE IF NOT EXISTS item_tags (
		item_id {{ref}} NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		tag_id {{ref}} NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (item_id, tag_id)
	);`,
	`CREATE TABLE IF NOT EXISTS topic_items (
		topic_id {{ref}} NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
		item_id {{ref}} NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		PRIMARY KEY (topic_id, item_id)
	);`,
}

var dialectTypes = map[string]*strings.Replacer{
	DriverSQLite: strings.NewReplacer(
		"{{id}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{ref}}", "INTEGER",
		"{{bigint}}", "INTEGER",
		"{{timestamp}}", "TIMESTAMP",
	),
	DriverPostgres: strings.NewReplacer(
		"{{id}}", "BIGSERIAL PRIMARY KEY",
		"{{ref}}", "BIGINT",
		"{{bigint}}", "BIGINT",
		"{{timestamp}}", "TIMESTAMPTZ",
	),
}

// Migrate creates the catalog tables for driver's dialect.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB, driver string) error {
	types, ok := dialectTypes[driver]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(types.Replace(stmt)); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return nil
}
