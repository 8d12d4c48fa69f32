package tablesync

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// indexManager is component F: it creates required indexes on the temp and
// live tables, idempotently, with deferred creation on the initial load
// (spec §4.F).
type indexManager struct{}

// buildIndexName implements spec §4.F's naming rule: idx_<table>_<purpose>
// or uidx_<table>_<cols>, truncated to 60 characters plus a 3-char hash
// suffix if it would otherwise be longer.
func buildIndexName(prefix, table string, cols []string) string {
	name := fmt.Sprintf("%s_%s_%s", prefix, table, strings.Join(cols, "_"))
	const maxLen = 60
	if len(name) <= maxLen {
		return name
	}
	sum := sha1.Sum([]byte(name))
	suffix := hex.EncodeToString(sum[:])[:3]
	return name[:maxLen] + suffix
}

// createIndexIfNotExists checks existence by name before emitting CREATE
// INDEX, per spec §4.F.
func createIndexIfNotExists(ctx context.Context, cfg *SyncConfig, db *sql.DB, table string, cols []string, unique bool) error {
	prefix := "idx"
	if unique {
		prefix = "uidx"
	}
	indexName := buildIndexName(prefix, table, cols)

	schema, base := splitQualifiedName(table)
	eq, eargs := cfg.Dialect.IndexExistsQuery(schema, base, indexName)
	var found string
	err := db.QueryRowContext(ctx, eq, eargs...).Scan(&found)
	if err == nil {
		return nil // already exists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return wrapDBError("checking index existence", err)
	}

	quotedCols := make([]string, len(cols))
	for i, c := range cols {
		quotedCols[i] = cfg.q(c)
	}

	uniqueKeyword := ""
	if unique {
		uniqueKeyword = "UNIQUE "
	}
	stmt := fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", uniqueKeyword, cfg.q(indexName), cfg.q(table), strings.Join(quotedCols, ", "))

	ctx, span := startDBSpan(ctx, "create_index", stmt, spanAttrs(cfg.SourceName, cfg.LiveTableName)...)
	_, err = db.ExecContext(ctx, stmt)
	endSpan(span, err)
	if err != nil {
		return wrapDBError("creating index "+indexName, err)
	}
	return nil
}

// indexTemp adds the temp-table indexes from spec §4.F: a non-unique index
// on the joint business-PK columns and a non-unique index on contentHash.
func (indexManager) indexTemp(ctx context.Context, cfg *SyncConfig) error {
	if err := createIndexIfNotExists(ctx, cfg, cfg.TargetDB, cfg.TempTableName, cfg.pkTargetColumns(), false); err != nil {
		return err
	}
	return createIndexIfNotExists(ctx, cfg, cfg.TargetDB, cfg.TempTableName, []string{cfg.MetadataColumnNames.ContentHash}, false)
}

// indexLive adds the live-table indexes from spec §4.F: a non-unique index
// on contentHash, and - only when the syncer id column exists on the table -
// a unique index on the joint business-PK columns. A failure here is
// reported on SyncReport at error severity but does not fail the overall
// sync (spec §4.F "Deferred indexing"): the caller passes a report so this
// method can record that without propagating the error.
func (im indexManager) indexLive(ctx context.Context, cfg *SyncConfig, report *SyncReport, idColumnPresent bool) {
	if err := createIndexIfNotExists(ctx, cfg, cfg.TargetDB, cfg.LiveTableName, []string{cfg.MetadataColumnNames.ContentHash}, false); err != nil {
		report.errorf("post-load index creation failed on live table content hash: %v", err)
	}
	if !idColumnPresent {
		return
	}
	if err := createIndexIfNotExists(ctx, cfg, cfg.TargetDB, cfg.LiveTableName, cfg.pkTargetColumns(), true); err != nil {
		report.errorf("post-load index creation failed on live table business key: %v", err)
	}
}
