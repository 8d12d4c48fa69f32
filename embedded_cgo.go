//go:build cgo

package tablesync

import (
	"context"
	"fmt"
	"path/filepath"

	"database/sql"

	embedded "github.com/dolthub/driver"
)

// OpenEmbedded opens a file-backed Dolt database with no running server,
// grounded on dolt/store_embedded.go's openEmbeddedConnection. It exists so
// callers (and this module's own test fixtures) can exercise the engine
// against a real Dolt engine without standing up dolt sql-server, mirroring
// the teacher's embedded-vs-server duality. Embedded Dolt is single-writer,
// so the returned *sql.DB is capped at one open connection, same as the
// teacher's pool settings.
func OpenEmbedded(path, database string) (*sql.DB, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving embedded dolt path: %w", err)
	}

	dsn := fmt.Sprintf("file://%s?commitname=table-syncer&commitemail=table-syncer@localhost&database=%s", absPath, database)
	cfg, err := embedded.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded dolt dsn: %w", err)
	}

	connector, err := embedded.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedded dolt connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging embedded dolt database: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", database)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating embedded dolt database: %w", err)
	}

	return db, nil
}
