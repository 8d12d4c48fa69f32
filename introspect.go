package tablesync

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// introspector is component B: it classifies the source object as a table or
// a view and yields a uniform column-definition map (spec §4.B). It is held
// by the schemaManager so its single-entry cache survives across the
// multiple introspection calls one sync run makes (ensureLiveTable,
// prepareTempTable both need the same column set).
type introspector struct {
	mu         sync.Mutex
	cacheName  string
	cacheCols  map[string]ColumnDefinition
	cacheValid bool

	sf singleflight.Group
}

// Columns returns the introspected column map for cfg.SourceName, using the
// cached result from this run if the name matches (spec §4.B "Caching").
// Concurrent callers for the same source name within one process collapse
// onto a single underlying query via singleflight, generalizing the
// teacher's simpler single-goroutine cache (see SPEC_FULL.md DOMAIN STACK).
func (in *introspector) Columns(ctx context.Context, cfg *SyncConfig) (map[string]ColumnDefinition, error) {
	in.mu.Lock()
	if in.cacheValid && in.cacheName == cfg.SourceName {
		cols := in.cacheCols
		in.mu.Unlock()
		return cols, nil
	}
	in.mu.Unlock()

	v, err, _ := in.sf.Do(cfg.SourceName, func() (any, error) {
		cols, err := introspectSource(ctx, cfg)
		if err != nil {
			return nil, err
		}
		in.mu.Lock()
		in.cacheName = cfg.SourceName
		in.cacheCols = cols
		in.cacheValid = true
		in.mu.Unlock()
		return cols, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]ColumnDefinition), nil
}

// classifySource implements spec §4.B step 1: determine whether SourceName
// is a base table, a view, or unknown.
func classifySource(ctx context.Context, cfg *SyncConfig, schema, base string) (SourceKind, error) {
	tq, targs := cfg.Dialect.TableExistsQuery(schema, base)
	var found string
	err := withRetry(ctx, func() error {
		return cfg.SourceDB.QueryRowContext(ctx, tq, targs...).Scan(&found)
	})
	if err == nil {
		return SourceTable, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return SourceUnknown, err
	}

	vq, vargs := cfg.Dialect.ListViewsQuery()
	rows, err := cfg.SourceDB.QueryContext(ctx, vq, vargs...)
	if err != nil {
		return SourceUnknown, err
	}
	defer rows.Close()

	for rows.Next() {
		var viewSchema, viewName string
		if err := rows.Scan(&viewSchema, &viewName); err != nil {
			return SourceUnknown, err
		}
		if namesMatch(schema, base, viewSchema, viewName) {
			return SourceView, rows.Err()
		}
	}
	if err := rows.Err(); err != nil {
		return SourceUnknown, err
	}
	return SourceUnknown, nil
}

// namesMatch implements the name-matching rules from spec §4.B: exact match
// on quoted full names, or case-insensitive base-name equality with the
// namespace equal or either side null (the caller omitted it, the listing
// supplied the default schema, or vice versa).
func namesMatch(inputSchema, inputBase, listedSchema, listedBase string) bool {
	if inputSchema == listedSchema && inputBase == listedBase {
		return true
	}
	if !strings.EqualFold(inputBase, listedBase) {
		return false
	}
	if inputSchema == "" || listedSchema == "" {
		return true
	}
	return strings.EqualFold(inputSchema, listedSchema)
}

// describeColumns runs the INFORMATION_SCHEMA.COLUMNS query for (schema,
// base), resolving an empty schema to the connection's current schema (spec
// §4.B step 2). On MySQL-family engines this same query serves as both the
// "custom view introspection path" and the "native introspect table" fallback
// mentioned in spec §4.B step 3, since MySQL's information_schema describes
// tables and views identically.
func describeColumns(ctx context.Context, cfg *SyncConfig, schema, base string) (map[string]ColumnDefinition, error) {
	return describeColumnsOn(ctx, cfg.Dialect, cfg.SourceDB, schema, base)
}

// describeColumnsOn is the connection-agnostic core of describeColumns,
// reused by the Schema Manager to introspect the target connection's live
// and temp tables with the same information_schema logic.
func describeColumnsOn(ctx context.Context, dialect Dialect, db *sql.DB, schema, base string) (map[string]ColumnDefinition, error) {
	effectiveSchema := schema
	if effectiveSchema == "" {
		if err := db.QueryRowContext(ctx, dialect.CurrentSchemaQuery()).Scan(&effectiveSchema); err != nil {
			return nil, err
		}
	}

	q, args := dialect.InformationSchemaColumnsQuery(effectiveSchema, base)
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]ColumnDefinition)
	mysqlFamily := dialect.IsMySQLFamily()
	for rows.Next() {
		var (
			name, dataType, columnType, isNullable, extra string
			maxLen, numPrecision, numScale                sql.NullInt64
			colDefault, comment                            sql.NullString
		)
		if err := rows.Scan(&name, &dataType, &columnType, &maxLen, &numPrecision, &numScale, &isNullable, &colDefault, &extra, &comment); err != nil {
			return nil, err
		}

		typ, _ := mapInformationSchemaType(dataType, columnType, int(numPrecision.Int64), mysqlFamily)
		def := ColumnDefinition{
			Name:          name,
			Type:          typ,
			Length:        int(maxLen.Int64),
			Precision:     int(numPrecision.Int64),
			Scale:         int(numScale.Int64),
			NotNull:       strings.EqualFold(isNullable, "NO"),
			Fixed:         isFixedColumnType(dataType),
			AutoIncrement: strings.Contains(strings.ToLower(extra), "auto_increment"),
			Comment:       comment.String,
		}
		if mysqlFamily {
			def.Unsigned = isUnsignedColumnType(columnType)
			def.PlatformOptions = map[string]string{"column_type": columnType}
		}
		if colDefault.Valid {
			def.Default = colDefault.String
			def.HasDefault = true
		}
		cols[name] = def
	}
	return cols, rows.Err()
}

// introspectSource runs the full three-step protocol of spec §4.B and
// returns the final column-definition map. A source that yields no columns
// is reported as ErrConfiguration; any other failure as a wrapped
// ErrIntrospection.
func introspectSource(ctx context.Context, cfg *SyncConfig) (map[string]ColumnDefinition, error) {
	schema, base := splitQualifiedName(cfg.SourceName)

	kind, err := classifySource(ctx, cfg, schema, base)
	if err != nil {
		return nil, introspectionErrorf(cfg.SourceName, err)
	}

	if kind == SourceView {
		cols, err := describeColumns(ctx, cfg, schema, base)
		if err == nil && len(cols) > 0 {
			return cols, nil
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, introspectionErrorf(cfg.SourceName, err)
		}
		// fall through to the native fallback per spec §4.B step 3
	}

	cols, err := describeColumns(ctx, cfg, schema, base)
	if err != nil {
		return nil, introspectionErrorf(cfg.SourceName, err)
	}
	if len(cols) == 0 {
		return nil, configErrorf("source %q not found", cfg.SourceName)
	}
	return cols, nil
}
