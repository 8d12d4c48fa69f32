package tablesync

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// synchronizer is component G: it reconciles the temp table into the live
// table under a single transaction, in the fixed order spec §4.G mandates -
// updates, then deletion logging, then deletes, then inserts - or, on the
// first run against an empty live table, a single bulk INSERT.
type synchronizer struct{}

// synchronize runs the diff-and-apply step. wasEmpty selects the initial
// bulk-import path versus the incremental diff path (spec §4.G).
//
// If cfg.TargetTx is set, that transaction was already open when synchronize
// was entered: it runs the diff-and-apply step on it and returns, without
// beginning, committing, or rolling it back - the caller owns that lifecycle
// (spec §1, §4.G, the "did I start this" discipline from §9). Otherwise it
// begins its own transaction and either commits or rolls it back before
// returning.
func (synchronizer) synchronize(ctx context.Context, cfg *SyncConfig, revisionID int64, wasEmpty bool, report *SyncReport) (err error) {
	if cfg.TargetTx != nil {
		return runSyncSteps(ctx, cfg.TargetTx, cfg, revisionID, wasEmpty, report)
	}

	tx, err := cfg.TargetDB.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBError("beginning sync transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := runSyncSteps(ctx, tx, cfg, revisionID, wasEmpty, report); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			report.errorf("rollback after sync failure also failed: %v", rbErr)
		}
		return err
	}

	if cerr := tx.Commit(); cerr != nil {
		return wrapDBError("committing sync transaction", cerr)
	}
	return nil
}

// runSyncSteps dispatches to the initial-import or incremental path and
// wraps any failure, independent of who owns tx's lifecycle.
func runSyncSteps(ctx context.Context, tx *sql.Tx, cfg *SyncConfig, revisionID int64, wasEmpty bool, report *SyncReport) error {
	var err error
	if wasEmpty {
		err = doInitialImport(ctx, tx, cfg, revisionID, report)
	} else {
		err = doIncrementalSync(ctx, tx, cfg, revisionID, report)
	}
	if err != nil {
		return wrapSyncFailure(err)
	}
	return nil
}

// joinCondition builds "a.col = b.col AND a.col2 = b.col2 ..." over the
// business PK columns, for use in JOIN ON and correlated-subquery clauses.
func joinCondition(cfg *SyncConfig, aliasA, aliasB string) string {
	pkCols := cfg.pkTargetColumns()
	clauses := make([]string, len(pkCols))
	for i, col := range pkCols {
		q := cfg.q(col)
		clauses[i] = fmt.Sprintf("%s.%s = %s.%s", aliasA, q, aliasB, q)
	}
	return strings.Join(clauses, " AND ")
}

func execTracked(ctx context.Context, cfg *SyncConfig, tx *sql.Tx, op, stmt string, args ...any) (int64, error) {
	ctx, span := startDBSpan(ctx, op, stmt, spanAttrs(cfg.SourceName, cfg.LiveTableName)...)
	result, err := tx.ExecContext(ctx, stmt, args...)
	endSpan(span, err)
	if err != nil {
		return 0, wrapDBError(op, err)
	}
	return result.RowsAffected()
}

// doInitialImport implements spec §4.G's initial-bulk-import path, taken when
// the live table was empty before this run: every temp row becomes an insert,
// with no update/delete comparisons.
func doInitialImport(ctx context.Context, tx *sql.Tx, cfg *SyncConfig, revisionID int64, report *SyncReport) error {
	mcn := cfg.MetadataColumnNames
	cols := append(append([]string{}, cfg.pkTargetColumns()...), cfg.nonPKDataTargetColumns()...)
	quotedCols := make([]string, len(cols))
	for i, c := range cols {
		quotedCols[i] = cfg.q(c)
	}

	stmt := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s)
SELECT %s, %s, NOW(), NOW(), ?, ?
FROM %s`,
		cfg.q(cfg.LiveTableName),
		strings.Join(quotedCols, ", "), cfg.q(mcn.ContentHash), cfg.q(mcn.CreatedAt), cfg.q(mcn.UpdatedAt), cfg.q(mcn.CreatedRevisionID), cfg.q(mcn.LastModifiedRevisionID),
		strings.Join(quotedCols, ", "), cfg.q(mcn.ContentHash),
		cfg.q(cfg.TempTableName),
	)

	affected, err := execTracked(ctx, cfg, tx, "initial_import", stmt, revisionID, revisionID)
	if err != nil {
		return err
	}
	report.InitialInsertCount = affected
	report.infof("initial import inserted %d rows", affected)
	return nil
}

// doIncrementalSync implements spec §4.G's steady-state path against a
// non-empty live table: updates, then deletion logging, then deletes, then
// inserts, each exactly once and in that order.
func doIncrementalSync(ctx context.Context, tx *sql.Tx, cfg *SyncConfig, revisionID int64, report *SyncReport) error {
	if err := doUpdates(ctx, tx, cfg, revisionID, report); err != nil {
		return err
	}
	if cfg.EnableDeletionLogging {
		if err := doLogDeletions(ctx, tx, cfg, revisionID, report); err != nil {
			return err
		}
	}
	if err := doDeletes(ctx, tx, cfg, report); err != nil {
		return err
	}
	if err := doInserts(ctx, tx, cfg, revisionID, report); err != nil {
		return err
	}
	return nil
}

// doUpdates rewrites every live row whose content hash differs from its
// matching temp row.
func doUpdates(ctx context.Context, tx *sql.Tx, cfg *SyncConfig, revisionID int64, report *SyncReport) error {
	mcn := cfg.MetadataColumnNames
	nonPK := cfg.nonPKDataTargetColumns()

	setClauses := make([]string, 0, len(nonPK)+3)
	for _, col := range nonPK {
		q := cfg.q(col)
		setClauses = append(setClauses, fmt.Sprintf("l.%s = t.%s", q, q))
	}
	setClauses = append(setClauses,
		fmt.Sprintf("l.%s = t.%s", cfg.q(mcn.ContentHash), cfg.q(mcn.ContentHash)),
		fmt.Sprintf("l.%s = NOW()", cfg.q(mcn.UpdatedAt)),
		fmt.Sprintf("l.%s = ?", cfg.q(mcn.LastModifiedRevisionID)),
	)

	stmt := fmt.Sprintf(
		"UPDATE %s l JOIN %s t ON %s SET %s WHERE l.%s <> t.%s",
		cfg.q(cfg.LiveTableName), cfg.q(cfg.TempTableName), joinCondition(cfg, "l", "t"),
		strings.Join(setClauses, ", "),
		cfg.q(mcn.ContentHash), cfg.q(mcn.ContentHash),
	)

	affected, err := execTracked(ctx, cfg, tx, "sync_updates", stmt, revisionID)
	if err != nil {
		return err
	}
	report.UpdatedCount = affected
	return nil
}

// doLogDeletions appends a tombstone row for every live row about to be
// deleted, before the delete runs (spec §4.G deletion logging).
func doLogDeletions(ctx context.Context, tx *sql.Tx, cfg *SyncConfig, revisionID int64, report *SyncReport) error {
	mcn := cfg.MetadataColumnNames
	stmt := fmt.Sprintf(
		`INSERT INTO %s (%s, %s)
SELECT l.%s, ?
FROM %s l
WHERE NOT EXISTS (SELECT 1 FROM %s t WHERE %s)`,
		cfg.q(cfg.DeletionLogTableName), cfg.q("deleted_syncer_id"), cfg.q("deleted_at_revision_id"),
		cfg.q(mcn.ID),
		cfg.q(cfg.LiveTableName),
		cfg.q(cfg.TempTableName), joinCondition(cfg, "l", "t"),
	)

	affected, err := execTracked(ctx, cfg, tx, "log_deletions", stmt, revisionID)
	if err != nil {
		return err
	}
	report.LoggedDeletionsCount = affected
	return nil
}

// doDeletes removes every live row with no matching temp row.
func doDeletes(ctx context.Context, tx *sql.Tx, cfg *SyncConfig, report *SyncReport) error {
	stmt := fmt.Sprintf(
		"DELETE l FROM %s l WHERE NOT EXISTS (SELECT 1 FROM %s t WHERE %s)",
		cfg.q(cfg.LiveTableName), cfg.q(cfg.TempTableName), joinCondition(cfg, "l", "t"),
	)

	affected, err := execTracked(ctx, cfg, tx, "sync_deletes", stmt)
	if err != nil {
		return err
	}
	report.DeletedCount = affected
	return nil
}

// doInserts adds every temp row with no matching live row.
func doInserts(ctx context.Context, tx *sql.Tx, cfg *SyncConfig, revisionID int64, report *SyncReport) error {
	mcn := cfg.MetadataColumnNames
	cols := append(append([]string{}, cfg.pkTargetColumns()...), cfg.nonPKDataTargetColumns()...)
	quotedCols := make([]string, len(cols))
	selectCols := make([]string, len(cols))
	for i, c := range cols {
		q := cfg.q(c)
		quotedCols[i] = q
		selectCols[i] = "t." + q
	}

	stmt := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s)
SELECT %s, t.%s, NOW(), NOW(), ?, ?
FROM %s t
WHERE NOT EXISTS (SELECT 1 FROM %s l WHERE %s)`,
		cfg.q(cfg.LiveTableName),
		strings.Join(quotedCols, ", "), cfg.q(mcn.ContentHash), cfg.q(mcn.CreatedAt), cfg.q(mcn.UpdatedAt), cfg.q(mcn.CreatedRevisionID), cfg.q(mcn.LastModifiedRevisionID),
		strings.Join(selectCols, ", "), cfg.q(mcn.ContentHash),
		cfg.q(cfg.TempTableName),
		cfg.q(cfg.LiveTableName), joinCondition(cfg, "l", "t"),
	)

	affected, err := execTracked(ctx, cfg, tx, "sync_inserts", stmt, revisionID, revisionID)
	if err != nil {
		return err
	}
	report.InsertedCount = affected
	return nil
}
