package tablesync

import (
	"database/sql"
	"fmt"
)

// defaultPlaceholderDatetime is substituted for invalid/empty datetime values
// in non-nullable datetime columns (spec §3, §4.D.a).
const defaultPlaceholderDatetime = "2222-02-22 00:00:00"

// defaultHashColumnLength is the width of a SHA-256 hex digest.
const defaultHashColumnLength = 64

// orderedColumnMap is an insertion-ordered, bidirectional string-to-string
// map. It is the representation spec §9 calls for: "implement as an
// insertion-ordered map plus an inverted lookup built once at config time."
type orderedColumnMap struct {
	keys    []string
	forward map[string]string // source -> target
	inverse map[string]string // target -> source
}

func newOrderedColumnMap(pairs [][2]string) *orderedColumnMap {
	m := &orderedColumnMap{
		forward: make(map[string]string, len(pairs)),
		inverse: make(map[string]string, len(pairs)),
	}
	for _, p := range pairs {
		src, dst := p[0], p[1]
		if _, exists := m.forward[src]; !exists {
			m.keys = append(m.keys, src)
		}
		m.forward[src] = dst
		m.inverse[dst] = src
	}
	return m
}

// SourceKeys returns the source-column keys in insertion order.
func (m *orderedColumnMap) SourceKeys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Target returns the target column name mapped from a source column name.
func (m *orderedColumnMap) Target(source string) (string, bool) {
	v, ok := m.forward[source]
	return v, ok
}

// Source returns the source column name mapped from a target column name.
func (m *orderedColumnMap) Source(target string) (string, bool) {
	v, ok := m.inverse[target]
	return v, ok
}

func (m *orderedColumnMap) has(source string) bool {
	_, ok := m.forward[source]
	return ok
}

// MetadataColumnNames holds the six syncer-owned column names (spec §3). All
// six are overridable; the zero value of each field is replaced with its
// documented default by SyncConfig.Validate.
type MetadataColumnNames struct {
	ID                     string
	ContentHash            string
	CreatedAt              string
	UpdatedAt              string
	CreatedRevisionID      string
	LastModifiedRevisionID string
}

func (m *MetadataColumnNames) applyDefaults() {
	if m.ID == "" {
		m.ID = "_syncer_id"
	}
	if m.ContentHash == "" {
		m.ContentHash = "_syncer_content_hash"
	}
	if m.CreatedAt == "" {
		m.CreatedAt = "_syncer_created_at"
	}
	if m.UpdatedAt == "" {
		m.UpdatedAt = "_syncer_updated_at"
	}
	if m.CreatedRevisionID == "" {
		m.CreatedRevisionID = "_syncer_created_revision_id"
	}
	if m.LastModifiedRevisionID == "" {
		m.LastModifiedRevisionID = "_syncer_last_modified_revision_id"
	}
}

// SyncConfig is the immutable-per-run configuration for a single sync engine
// invocation (spec §3). Construct it directly (configuration object
// construction from files/env is out of scope, see SPEC_FULL.md) and call
// Validate before passing it to Sync - Sync calls Validate itself, but
// callers that want to fail fast before opening connections may call it
// eagerly.
type SyncConfig struct {
	SourceDB   *sql.DB
	SourceName string // may be schema-qualified, e.g. "reporting.v_customers"

	TargetDB *sql.DB

	// TargetTx, if set, is an already-open transaction on TargetDB that the
	// Temp->Live Synchronizer's diff-and-apply step (spec §4.G) runs inside
	// instead of opening its own. When set, the synchronizer never begins,
	// commits, or rolls it back - the caller owns its lifecycle entirely, per
	// spec §1's transaction-cooperation requirement. Leave nil to let the
	// synchronizer manage its own transaction, which is the common case.
	TargetTx *sql.Tx

	LiveTableName string
	TempTableName string // defaults to "<live>_temp"

	// PrimaryKeyMap is the ordered source-column -> target-column mapping for
	// the business primary key. At least one entry is required.
	PrimaryKeyMap [][2]string

	// DataColumnMap is the ordered source-column -> target-column mapping for
	// all synced columns; must be a superset of PrimaryKeyMap's keys.
	DataColumnMap [][2]string

	// HashColumns is a non-empty subset of DataColumnMap's source-column keys
	// used for content hashing, in the order the hash concatenates them.
	HashColumns []string

	// NonNullableDatetimeColumns is a subset of DataColumnMap's source-column
	// keys subject to the sanitization rules in spec §4.D.a.
	NonNullableDatetimeColumns []string

	MetadataColumnNames MetadataColumnNames

	// PlaceholderDatetime replaces invalid/empty datetime values. Defaults to
	// "2222-02-22 00:00:00".
	PlaceholderDatetime string

	IDColumnType      ColumnType
	HashColumnLength  int

	EnableDeletionLogging bool
	DeletionLogTableName  string // defaults to "<live>_deleted_log"

	ShouldCreateView  bool
	ViewDefinition    string
	ViewDependencies  []string

	// Dialect selects the SQL dialect used for quoting and catalog queries.
	// Defaults to MySQLDialect() when nil.
	Dialect Dialect

	dataColumns *orderedColumnMap
	pkColumns   *orderedColumnMap
	validated   bool
}

// Validate fills in documented defaults and enforces the construction
// invariants from spec §3. It is idempotent and safe to call more than once;
// Sync calls it automatically.
func (c *SyncConfig) Validate() error {
	if c.SourceDB == nil {
		return configErrorf("source database handle is required")
	}
	if c.TargetDB == nil {
		return configErrorf("target database handle is required")
	}
	if c.SourceName == "" {
		return configErrorf("source name is required")
	}
	if c.LiveTableName == "" {
		return configErrorf("live table name is required")
	}
	if len(c.PrimaryKeyMap) == 0 {
		return configErrorf("primaryKeyMap must have at least one entry")
	}
	if len(c.DataColumnMap) == 0 {
		return configErrorf("dataColumnMap must have at least one entry")
	}
	if len(c.HashColumns) == 0 {
		return configErrorf("hashColumns must be non-empty")
	}

	dataColumns := newOrderedColumnMap(c.DataColumnMap)
	pkColumns := newOrderedColumnMap(c.PrimaryKeyMap)

	for _, src := range pkColumns.SourceKeys() {
		if !dataColumns.has(src) {
			return configErrorf("primaryKeyMap key %q must also appear in dataColumnMap", src)
		}
	}
	for _, col := range c.HashColumns {
		if !dataColumns.has(col) {
			return configErrorf("hashColumns entry %q must appear in dataColumnMap", col)
		}
	}
	for _, col := range c.NonNullableDatetimeColumns {
		if !dataColumns.has(col) {
			return configErrorf("nonNullableDatetimeColumns entry %q must appear in dataColumnMap", col)
		}
	}

	if c.ShouldCreateView {
		if c.ViewDefinition == "" {
			return configErrorf("viewDefinition is required when shouldCreateView is true")
		}
		if c.SourceName == "" {
			return configErrorf("source name is required when shouldCreateView is true")
		}
	}

	if c.EnableDeletionLogging && c.DeletionLogTableName == "" && c.LiveTableName == "" {
		return configErrorf("deletionLogTableName or a non-empty live table name is required when enableDeletionLogging is true")
	}

	c.MetadataColumnNames.applyDefaults()

	if c.TempTableName == "" {
		c.TempTableName = c.LiveTableName + "_temp"
	}
	if c.PlaceholderDatetime == "" {
		c.PlaceholderDatetime = defaultPlaceholderDatetime
	}
	if c.HashColumnLength == 0 {
		c.HashColumnLength = defaultHashColumnLength
	}
	if c.IDColumnType == TypeUnknown {
		c.IDColumnType = TypeString
	}
	if c.EnableDeletionLogging && c.DeletionLogTableName == "" {
		c.DeletionLogTableName = c.LiveTableName + "_deleted_log"
	}
	if c.Dialect == nil {
		c.Dialect = MySQLDialect()
	}

	c.dataColumns = dataColumns
	c.pkColumns = pkColumns
	c.validated = true
	return nil
}

// ensureValidated runs Validate if it has not already succeeded.
func (c *SyncConfig) ensureValidated() error {
	if c.validated {
		return nil
	}
	return c.Validate()
}

// q quotes an identifier using the configured dialect.
func (c *SyncConfig) q(name string) string {
	return c.Dialect.QuoteIdent(name)
}

// orderedSourceColumns returns DataColumnMap's source keys, business-PK
// columns first (de-duplicated), matching the "de-duplicated merge of target
// PK columns and target data columns" ordering rule from spec §4.D.
func (c *SyncConfig) orderedSourceColumns() []string {
	seen := make(map[string]bool, len(c.dataColumns.keys))
	out := make([]string, 0, len(c.dataColumns.keys))
	for _, src := range c.pkColumns.SourceKeys() {
		if !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	for _, src := range c.dataColumns.SourceKeys() {
		if !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	return out
}

func (c *SyncConfig) pkTargetColumns() []string {
	srcKeys := c.pkColumns.SourceKeys()
	out := make([]string, len(srcKeys))
	for i, src := range srcKeys {
		out[i], _ = c.pkColumns.Target(src)
	}
	return out
}

func (c *SyncConfig) nonPKDataTargetColumns() []string {
	var out []string
	for _, src := range c.dataColumns.SourceKeys() {
		if c.pkColumns.has(src) {
			continue
		}
		tgt, _ := c.dataColumns.Target(src)
		out = append(out, tgt)
	}
	return out
}

func (c *SyncConfig) targetColumnFor(source string) (string, bool) {
	return c.dataColumns.Target(source)
}

// validateConfigured returns an ErrConfiguration error if Validate has not
// yet succeeded on c, and nil otherwise.
func (c *SyncConfig) validateConfigured() error {
	if !c.validated {
		return fmt.Errorf("%w: SyncConfig.Validate must succeed before use", ErrConfiguration)
	}
	return nil
}
