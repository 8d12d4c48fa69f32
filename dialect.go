package tablesync

import "strings"

// Dialect captures the handful of engine-specific behaviors the engine needs:
// identifier quoting and the native "list tables" / "list views" queries used
// by the Source Introspector's step-1 classification (spec §4.B). The engine
// ships a MySQL/Dolt-family dialect by default, matching the wire protocol
// both go-sql-driver/mysql and dolthub/driver speak; the interface exists so
// a caller embedding this engine against another engine can supply its own
// quoting and catalog queries without touching the diff algorithm itself.
type Dialect interface {
	// QuoteIdent quotes a single identifier (table, column, or index name)
	// using the engine's native quoting so raw user-supplied names flow
	// through unchanged, per spec §6.
	QuoteIdent(name string) string

	// TableExistsQuery returns a query and args that select a single row iff
	// a base table with the given name (and optional schema) exists.
	TableExistsQuery(schema, name string) (query string, args []any)

	// ListViewsQuery returns a query and args enumerating (schema, name)
	// pairs for every view visible to the connection, used by the
	// name-matching rules in spec §4.B.
	ListViewsQuery() (query string, args []any)

	// InformationSchemaColumnsQuery returns a query and args selecting the
	// INFORMATION_SCHEMA.COLUMNS rows for the given (schema, name), ordered
	// by ORDINAL_POSITION, used by the custom view-introspection path.
	InformationSchemaColumnsQuery(schema, name string) (query string, args []any)

	// IsMySQLFamily reports whether COLUMN_TYPE-based unsigned/tinyint(1)
	// disambiguation applies (spec §4.B).
	IsMySQLFamily() bool

	// CurrentSchemaQuery returns a query yielding the connection's current
	// default schema/database name.
	CurrentSchemaQuery() string

	// PrimaryKeyColumnsQuery returns a query and args yielding the ordered
	// column names of a table's declared primary key.
	PrimaryKeyColumnsQuery(schema, name string) (query string, args []any)

	// IndexExistsQuery returns a query and args that select a row iff an
	// index with the given name exists on the given table.
	IndexExistsQuery(schema, table, indexName string) (query string, args []any)
}

// mysqlDialect implements Dialect for MySQL-wire-protocol engines (MySQL,
// MariaDB, Dolt). It is the engine's default and only shipped dialect; see
// SPEC_FULL.md's DOMAIN STACK for why only this family is wired.
type mysqlDialect struct{}

// MySQLDialect returns the default Dialect used when SyncConfig.Dialect is
// nil.
func MySQLDialect() Dialect { return mysqlDialect{} }

func (mysqlDialect) QuoteIdent(name string) string {
	escaped := strings.ReplaceAll(name, "`", "``")
	return "`" + escaped + "`"
}

func (mysqlDialect) TableExistsQuery(schema, name string) (string, []any) {
	if schema == "" {
		return `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND TABLE_TYPE = 'BASE TABLE'`,
			[]any{name}
	}
	return `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND TABLE_TYPE = 'BASE TABLE'`,
		[]any{schema, name}
}

func (mysqlDialect) ListViewsQuery() (string, []any) {
	return `SELECT TABLE_SCHEMA, TABLE_NAME FROM INFORMATION_SCHEMA.VIEWS`, nil
}

func (mysqlDialect) InformationSchemaColumnsQuery(schema, name string) (string, []any) {
	if schema == "" {
		return `SELECT COLUMN_NAME, DATA_TYPE, COLUMN_TYPE, CHARACTER_MAXIMUM_LENGTH,
			NUMERIC_PRECISION, NUMERIC_SCALE, IS_NULLABLE, COLUMN_DEFAULT, EXTRA, COLUMN_COMMENT
			FROM INFORMATION_SCHEMA.COLUMNS
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
			ORDER BY ORDINAL_POSITION`, []any{name}
	}
	return `SELECT COLUMN_NAME, DATA_TYPE, COLUMN_TYPE, CHARACTER_MAXIMUM_LENGTH,
		NUMERIC_PRECISION, NUMERIC_SCALE, IS_NULLABLE, COLUMN_DEFAULT, EXTRA, COLUMN_COMMENT
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`, []any{schema, name}
}

func (mysqlDialect) IsMySQLFamily() bool { return true }

func (mysqlDialect) CurrentSchemaQuery() string { return "SELECT DATABASE()" }

func (mysqlDialect) PrimaryKeyColumnsQuery(schema, name string) (string, []any) {
	if schema == "" {
		return `SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY'
			ORDER BY ORDINAL_POSITION`, []any{name}
	}
	return `SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY ORDINAL_POSITION`, []any{schema, name}
}

func (mysqlDialect) IndexExistsQuery(schema, table, indexName string) (string, []any) {
	if schema == "" {
		return `SELECT DISTINCT INDEX_NAME FROM INFORMATION_SCHEMA.STATISTICS
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND INDEX_NAME = ?`,
			[]any{table, indexName}
	}
	return `SELECT DISTINCT INDEX_NAME FROM INFORMATION_SCHEMA.STATISTICS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND INDEX_NAME = ?`,
		[]any{schema, table, indexName}
}

// splitQualifiedName splits "schema.base" into (schema, base); a name with no
// "." yields ("", name). Quoted identifiers are not unescaped here - names
// flow through as supplied per spec §6.
func splitQualifiedName(name string) (schema, base string) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+1:]
}
