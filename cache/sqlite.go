package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaguanLabs/modtl"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS translations (
	namespace  TEXT NOT NULL,
	source     TEXT NOT NULL,
	target     TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (namespace, source)
);`

// SQLiteCache is a translation memory persisted in a SQLite file. Each Set is
// committed immediately, so entries survive an interrupted run.
type SQLiteCache struct {
	db        *sql.DB
	namespace string
}

// NewSQLiteCache opens (or creates) the store at path for one namespace.
func NewSQLiteCache(path, namespace string) (*SQLiteCache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &modtl.CacheError{Message: "db path is required"}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &modtl.CacheError{Message: "create db directory", Cause: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &modtl.CacheError{Message: "open sqlite", Cause: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	c := &SQLiteCache{db: db, namespace: namespace}
	if err := c.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, &modtl.CacheError{Message: fmt.Sprintf("initialise %s", path), Cause: err}
	}
	return c, nil
}

func (c *SQLiteCache) init(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create translations table: %w", err)
	}
	return nil
}

// Get retrieves a translation. Query errors are treated as a miss.
func (c *SQLiteCache) Get(key string) (string, bool) {
	var target string
	err := c.db.QueryRowContext(context.Background(),
		`SELECT target FROM translations WHERE namespace = ? AND source = ?`,
		c.namespace, key,
	).Scan(&target)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		return "", false
	}
	return target, true
}

// Set stores a translation, replacing any previous one.
func (c *SQLiteCache) Set(key string, value string) error {
	_, err := c.db.ExecContext(context.Background(),
		`INSERT INTO translations (namespace, source, target, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(namespace, source) DO UPDATE SET
			target = excluded.target,
			updated_at = excluded.updated_at`,
		c.namespace, key, value,
	)
	if err != nil {
		return &modtl.CacheError{Message: "store translation", Cause: err}
	}
	return nil
}

// Entries returns every translation in the namespace.
func (c *SQLiteCache) Entries() (map[string]string, error) {
	rows, err := c.db.QueryContext(context.Background(),
		`SELECT source, target FROM translations WHERE namespace = ? ORDER BY source`,
		c.namespace,
	)
	if err != nil {
		return nil, &modtl.CacheError{Message: "list translations", Cause: err}
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var source, target string
		if err := rows.Scan(&source, &target); err != nil {
			return nil, &modtl.CacheError{Message: "scan translation", Cause: err}
		}
		result[source] = target
	}
	if err := rows.Err(); err != nil {
		return nil, &modtl.CacheError{Message: "list translations", Cause: err}
	}
	return result, nil
}

// Len returns the number of translations in the namespace.
func (c *SQLiteCache) Len() (int, error) {
	var n int
	err := c.db.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM translations WHERE namespace = ?`, c.namespace,
	).Scan(&n)
	if err != nil {
		return 0, &modtl.CacheError{Message: "count translations", Cause: err}
	}
	return n, nil
}

// Namespace returns the language pair this cache is bound to.
func (c *SQLiteCache) Namespace() string {
	return c.namespace
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
