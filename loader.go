package tablesync

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// loader is component D: it bulk-reads source rows, sanitizes non-nullable
// datetime columns, and batch-inserts into the temp table (spec §4.D).
type loader struct{}

// load streams SourceName, buffering rows and flushing a multi-row INSERT
// every loadBatchSize rows (500, spec §4.D). Any insert error aborts the
// load; the orchestrator's cleanup path drops the partial temp table.
func (loader) load(ctx context.Context, cfg *SyncConfig, report *SyncReport) error {
	sourceCols := cfg.dataColumns.SourceKeys()
	quotedSourceCols := make([]string, len(sourceCols))
	for i, c := range sourceCols {
		quotedSourceCols[i] = cfg.q(c)
	}
	selectStmt := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quotedSourceCols, ", "), cfg.SourceName)

	ctx, span := startDBSpan(ctx, "select_source", selectStmt, spanAttrs(cfg.SourceName, cfg.LiveTableName)...)
	var rows *sql.Rows
	err := withRetry(ctx, func() error {
		r, qerr := cfg.SourceDB.QueryContext(ctx, selectStmt)
		if qerr != nil {
			return qerr
		}
		rows = r
		return nil
	})
	endSpan(span, err)
	if err != nil {
		return wrapDBError("querying source", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return wrapDBError("reading source columns", err)
	}

	orderedSrc := cfg.orderedSourceColumns()
	targetCols := make([]string, len(orderedSrc))
	for i, src := range orderedSrc {
		tgt, _ := cfg.targetColumnFor(src)
		targetCols[i] = cfg.q(tgt)
	}
	nonNullDatetime := make(map[string]bool, len(cfg.NonNullableDatetimeColumns))
	for _, c := range cfg.NonNullableDatetimeColumns {
		nonNullDatetime[c] = true
	}

	var buffer [][]any
	var total int
	for rows.Next() {
		dest := make([]any, len(cols))
		for i := range dest {
			dest[i] = new(any)
		}
		if err := rows.Scan(dest...); err != nil {
			return wrapDBError("scanning source row", err)
		}

		fetched := make(map[string]any, len(cols))
		for i, c := range cols {
			fetched[c] = *(dest[i].(*any))
		}

		for col := range nonNullDatetime {
			val, ok := fetched[col]
			if !ok {
				continue
			}
			sanitized, warned := sanitizeDatetimeValue(val, cfg.PlaceholderDatetime)
			if warned {
				report.warnf("column %q has an unrecognized datetime value type, left untouched", col)
			}
			fetched[col] = sanitized
		}

		rowValues := make([]any, len(orderedSrc))
		for i, src := range orderedSrc {
			val, ok := fetched[src]
			if !ok {
				report.warnf("fetched row lacks source column %q, binding NULL", src)
				val = nil
			}
			rowValues[i] = val
		}

		buffer = append(buffer, rowValues)
		total++

		if len(buffer) >= loadBatchSize {
			if err := flushBatch(ctx, cfg, targetCols, buffer); err != nil {
				return err
			}
			buffer = buffer[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return wrapDBError("iterating source rows", err)
	}

	if len(buffer) > 0 {
		if err := flushBatch(ctx, cfg, targetCols, buffer); err != nil {
			return err
		}
	}

	syncMetrics.rowsLoaded.Add(ctx, int64(total))
	report.infof("loaded %d rows from source into temp table", total)
	return nil
}

// flushBatch emits one multi-row INSERT spanning all rows currently
// buffered, with a single parameter list, per spec §4.D.
func flushBatch(ctx context.Context, cfg *SyncConfig, targetCols []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(targetCols)), ",") + ")"
	placeholders := make([]string, len(rows))
	args := make([]any, 0, len(rows)*len(targetCols))
	for i, row := range rows {
		placeholders[i] = rowPlaceholder
		args = append(args, row...)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		cfg.q(cfg.TempTableName), strings.Join(targetCols, ", "), strings.Join(placeholders, ", "))

	ctx, span := startDBSpan(ctx, "insert_temp_batch", stmt, spanAttrs(cfg.SourceName, cfg.LiveTableName)...)
	_, err := cfg.TargetDB.ExecContext(ctx, stmt, args...)
	endSpan(span, err)
	if err != nil {
		return wrapDBError("inserting batch into temp table", err)
	}
	syncMetrics.batchesSent.Add(ctx, 1)
	return nil
}
