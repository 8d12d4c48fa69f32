package tablesync

import (
	"context"
	"fmt"
	"strings"
)

// hasher is component E: it computes a content hash for every temp-table row
// in a single set-based UPDATE (spec §4.E).
type hasher struct{}

// hash runs UPDATE temp SET contentHash = SHA2(CONCAT(...), 256) over
// cfg.HashColumns in their configured order, and returns the number of rows
// the database reports as affected.
func (hasher) hash(ctx context.Context, cfg *SyncConfig) (int64, error) {
	parts := make([]string, len(cfg.HashColumns))
	for i, src := range cfg.HashColumns {
		tgt, ok := cfg.targetColumnFor(src)
		if !ok {
			return 0, configErrorf("hash column %q has no target mapping", src)
		}
		parts[i] = fmt.Sprintf("COALESCE(CAST(%s AS CHAR), '')", cfg.q(tgt))
	}
	concatArgs := strings.Join(parts, ", ")

	stmt := fmt.Sprintf("UPDATE %s SET %s = SHA2(CONCAT(%s), 256)",
		cfg.q(cfg.TempTableName), cfg.q(cfg.MetadataColumnNames.ContentHash), concatArgs)

	ctx, span := startDBSpan(ctx, "hash_temp", stmt, spanAttrs(cfg.SourceName, cfg.LiveTableName)...)
	result, err := cfg.TargetDB.ExecContext(ctx, stmt)
	endSpan(span, err)
	if err != nil {
		return 0, wrapDBError("hashing temp table rows", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, wrapDBError("reading hash update row count", err)
	}
	syncMetrics.rowsHashed.Add(ctx, affected)
	return affected, nil
}
