package tablesync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// schemaManager is component C: it ensures the live table, temp table, and
// optional deletion-log table exist with the correct shape (spec §4.C). It
// owns the introspector so repeated Columns() calls within one run share the
// cache (spec §4.B "Caching").
type schemaManager struct {
	introspector *introspector
}

func newSchemaManager() *schemaManager {
	return &schemaManager{introspector: &introspector{}}
}

// tableExists reports whether name exists as a base table on db.
func tableExists(ctx context.Context, dialect Dialect, db *sql.DB, name string) (bool, error) {
	schema, base := splitQualifiedName(name)
	q, args := dialect.TableExistsQuery(schema, base)
	var found string
	err := db.QueryRowContext(ctx, q, args...).Scan(&found)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, err
}

// primaryKeyColumns returns the ordered primary-key column names of name on db.
func primaryKeyColumns(ctx context.Context, dialect Dialect, db *sql.DB, name string) ([]string, error) {
	schema, base := splitQualifiedName(name)
	q, args := dialect.PrimaryKeyColumnsQuery(schema, base)
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func columnsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ensureLiveTable implements spec §4.C's ensureLiveTable. If the live table
// already exists it is validated against cfg; otherwise it is created. It
// returns whether the table uses the business PK directly (the
// isUsingBusinessPkAsMainPk exception from spec §9); the orchestrator uses
// it to decide whether the Index Manager adds a unique business-PK index.
func (sm *schemaManager) ensureLiveTable(ctx context.Context, cfg *SyncConfig) (usingBusinessPK bool, err error) {
	exists, err := tableExists(ctx, cfg.Dialect, cfg.TargetDB, cfg.LiveTableName)
	if err != nil {
		return false, wrapDBError("checking live table existence", err)
	}

	if exists {
		return sm.validateLiveTable(ctx, cfg)
	}

	srcCols, err := sm.introspector.Columns(ctx, cfg)
	if err != nil {
		return false, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", cfg.q(cfg.LiveTableName))

	mcn := cfg.MetadataColumnNames
	fmt.Fprintf(&b, "  %s BIGINT NOT NULL AUTO_INCREMENT,\n", cfg.q(mcn.ID))
	fmt.Fprintf(&b, "  %s %s NOT NULL,\n", cfg.q(mcn.ContentHash), fixedCharType(cfg.HashColumnLength))
	fmt.Fprintf(&b, "  %s DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,\n", cfg.q(mcn.CreatedAt))
	fmt.Fprintf(&b, "  %s DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,\n", cfg.q(mcn.UpdatedAt))
	fmt.Fprintf(&b, "  %s BIGINT NOT NULL,\n", cfg.q(mcn.CreatedRevisionID))
	fmt.Fprintf(&b, "  %s BIGINT NOT NULL,\n", cfg.q(mcn.LastModifiedRevisionID))

	for _, src := range cfg.pkColumns.SourceKeys() {
		tgt, _ := cfg.pkColumns.Target(src)
		def := srcCols[src]
		def.AutoIncrement = false
		fmt.Fprintf(&b, "  %s %s NOT NULL,\n", cfg.q(tgt), columnSQLType(def))
	}
	for _, src := range cfg.dataColumns.SourceKeys() {
		if cfg.pkColumns.has(src) {
			continue
		}
		tgt, _ := cfg.dataColumns.Target(src)
		def, ok := srcCols[src]
		if !ok {
			return false, configErrorf("dataColumnMap source column %q was not found by introspection", src)
		}
		def.AutoIncrement = false
		nullability := "NULL"
		if def.NotNull {
			nullability = "NOT NULL"
		}
		fmt.Fprintf(&b, "  %s %s %s,\n", cfg.q(tgt), columnSQLType(def), nullability)
	}

	fmt.Fprintf(&b, "  PRIMARY KEY (%s)\n)", cfg.q(mcn.ID))

	ctx, span := startDBSpan(ctx, "create_live_table", b.String(), spanAttrs(cfg.SourceName, cfg.LiveTableName)...)
	_, err = cfg.TargetDB.ExecContext(ctx, b.String())
	endSpan(span, err)
	if err != nil {
		return false, wrapDBError("creating live table", err)
	}
	return false, nil
}

// validateLiveTable implements the validation half of spec §4.C, including
// the isUsingBusinessPkAsMainPk exception.
func (sm *schemaManager) validateLiveTable(ctx context.Context, cfg *SyncConfig) (bool, error) {
	schema, base := splitQualifiedName(cfg.LiveTableName)
	liveCols, err := describeColumnsOn(ctx, cfg.Dialect, cfg.TargetDB, schema, base)
	if err != nil {
		return false, wrapDBError("describing existing live table", err)
	}

	declaredPK, err := primaryKeyColumns(ctx, cfg.Dialect, cfg.TargetDB, cfg.LiveTableName)
	if err != nil {
		return false, wrapDBError("reading existing live table primary key", err)
	}

	mcn := cfg.MetadataColumnNames
	if _, hasSyncerID := liveCols[mcn.ID]; !hasSyncerID {
		bizPK := cfg.pkTargetColumns()
		if len(bizPK) == 1 && len(declaredPK) == 1 && declaredPK[0] == bizPK[0] {
			// spec §9 isUsingBusinessPkAsMainPk exception: accept and keep using
			// the business PK. Metadata columns are not checked in this branch,
			// and the Synchronizer's statements are not adjusted for it:
			// updates and inserts name the content-hash, timestamp and
			// revision-id columns, and deletion logging selects mcn.ID.
			if err := sm.validateColumnsPresent(liveCols, cfg, false); err != nil {
				return false, err
			}
			return true, nil
		}
		return false, metadataMismatchf("live table %q has no %s column and its primary key %v does not match the business key %v",
			cfg.LiveTableName, mcn.ID, declaredPK, bizPK)
	}

	if !columnsEqual(declaredPK, []string{mcn.ID}) {
		return false, metadataMismatchf("live table %q primary key is %v, expected exactly [%s]", cfg.LiveTableName, declaredPK, mcn.ID)
	}

	if err := sm.validateColumnsPresent(liveCols, cfg, true); err != nil {
		return false, err
	}
	return false, nil
}

func (sm *schemaManager) validateColumnsPresent(liveCols map[string]ColumnDefinition, cfg *SyncConfig, requireMetadata bool) error {
	for _, tgt := range cfg.pkTargetColumns() {
		if _, ok := liveCols[tgt]; !ok {
			return metadataMismatchf("live table %q is missing business PK column %q", cfg.LiveTableName, tgt)
		}
	}
	for _, src := range cfg.dataColumns.SourceKeys() {
		tgt, _ := cfg.dataColumns.Target(src)
		if _, ok := liveCols[tgt]; !ok {
			return metadataMismatchf("live table %q is missing data column %q", cfg.LiveTableName, tgt)
		}
	}
	if requireMetadata {
		mcn := cfg.MetadataColumnNames
		for _, name := range []string{mcn.ID, mcn.ContentHash, mcn.CreatedAt, mcn.UpdatedAt, mcn.CreatedRevisionID, mcn.LastModifiedRevisionID} {
			if _, ok := liveCols[name]; !ok {
				return metadataMismatchf("live table %q is missing metadata column %q", cfg.LiveTableName, name)
			}
		}
	}
	return nil
}

// prepareTempTable implements spec §4.C's prepareTempTable: drop-if-exists,
// then create with the business PK, remaining data columns, and the two
// temp-table metadata columns.
func (sm *schemaManager) prepareTempTable(ctx context.Context, cfg *SyncConfig) error {
	if err := sm.dropTempTable(ctx, cfg); err != nil {
		return err
	}

	srcCols, err := sm.introspector.Columns(ctx, cfg)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", cfg.q(cfg.TempTableName))

	var pkTargets []string
	for _, src := range cfg.pkColumns.SourceKeys() {
		tgt, _ := cfg.pkColumns.Target(src)
		pkTargets = append(pkTargets, cfg.q(tgt))
		def, ok := srcCols[src]
		if !ok {
			return configErrorf("primaryKeyMap source column %q was not found by introspection", src)
		}
		def.AutoIncrement = false
		fmt.Fprintf(&b, "  %s %s NOT NULL,\n", cfg.q(tgt), columnSQLType(def))
	}
	for _, src := range cfg.dataColumns.SourceKeys() {
		if cfg.pkColumns.has(src) {
			continue
		}
		tgt, _ := cfg.dataColumns.Target(src)
		def, ok := srcCols[src]
		if !ok {
			return configErrorf("dataColumnMap source column %q was not found by introspection", src)
		}
		def.AutoIncrement = false
		nullability := "NULL"
		if def.NotNull {
			nullability = "NOT NULL"
		}
		fmt.Fprintf(&b, "  %s %s %s,\n", cfg.q(tgt), columnSQLType(def), nullability)
	}

	mcn := cfg.MetadataColumnNames
	fmt.Fprintf(&b, "  %s %s NULL,\n", cfg.q(mcn.ContentHash), fixedCharType(cfg.HashColumnLength))
	fmt.Fprintf(&b, "  %s DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,\n", cfg.q(mcn.CreatedAt))
	fmt.Fprintf(&b, "  PRIMARY KEY (%s)\n)", strings.Join(pkTargets, ", "))

	ctx, span := startDBSpan(ctx, "create_temp_table", b.String(), spanAttrs(cfg.SourceName, cfg.LiveTableName)...)
	_, err = cfg.TargetDB.ExecContext(ctx, b.String())
	endSpan(span, err)
	if err != nil {
		return wrapDBError("creating temp table", err)
	}
	return nil
}

// ensureDeletedLogTable implements spec §4.C's ensureDeletedLogTable. It is
// a no-op unless cfg.EnableDeletionLogging is set, and does not validate the
// schema of a pre-existing table (spec §1 Non-goals).
func (sm *schemaManager) ensureDeletedLogTable(ctx context.Context, cfg *SyncConfig) error {
	if !cfg.EnableDeletionLogging {
		return nil
	}

	exists, err := tableExists(ctx, cfg.Dialect, cfg.TargetDB, cfg.DeletionLogTableName)
	if err != nil {
		return wrapDBError("checking deletion log table existence", err)
	}
	if exists {
		return nil
	}

	ddl := fmt.Sprintf(`CREATE TABLE %s (
  %s BIGINT NOT NULL AUTO_INCREMENT,
  %s %s NOT NULL,
  %s BIGINT NOT NULL,
  %s DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (%s)
)`,
		cfg.q(cfg.DeletionLogTableName),
		cfg.q("log_id"),
		cfg.q("deleted_syncer_id"), columnSQLType(ColumnDefinition{Type: cfg.IDColumnType, Length: cfg.HashColumnLength}),
		cfg.q("deleted_at_revision_id"),
		cfg.q("deletion_timestamp"),
		cfg.q("log_id"),
	)

	ctx, span := startDBSpan(ctx, "create_deletion_log_table", ddl, spanAttrs(cfg.SourceName, cfg.LiveTableName)...)
	_, err = cfg.TargetDB.ExecContext(ctx, ddl)
	endSpan(span, err)
	if err != nil {
		return wrapDBError("creating deletion log table", err)
	}

	for _, col := range []string{"deleted_syncer_id", "deleted_at_revision_id"} {
		if err := createIndexIfNotExists(ctx, cfg, cfg.TargetDB, cfg.DeletionLogTableName, []string{col}, false); err != nil {
			return err
		}
	}
	return nil
}

// dropTempTable implements spec §4.C's dropTempTable. It is idempotent and
// is also the cleanup step run on every exit path by the orchestrator.
func (sm *schemaManager) dropTempTable(ctx context.Context, cfg *SyncConfig) error {
	stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s", cfg.q(cfg.TempTableName))
	ctx, span := startDBSpan(ctx, "drop_temp_table", stmt, spanAttrs(cfg.SourceName, cfg.LiveTableName)...)
	_, err := cfg.TargetDB.ExecContext(ctx, stmt)
	endSpan(span, err)
	if err != nil {
		return wrapDBError("dropping temp table", err)
	}
	return nil
}
