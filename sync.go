package tablesync

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Sync runs one differential synchronization of cfg.SourceName into
// cfg.LiveTableName, stamping every row touched with revisionID, and returns
// a report of what it did. It calls cfg.Validate itself; a caller that wants
// to fail fast before opening connections may call Validate eagerly.
//
// The call order is fixed (spec §2): prepare the view if configured, ensure
// the live table, probe whether it was empty, ensure the deletion log,
// create pre-load indexes if the table already had rows, prepare and load
// the temp table, hash it, index it, synchronize it into the live table,
// create post-load indexes if this was the first load, and finally drop the
// temp table - on every exit path, success or failure.
func Sync(ctx context.Context, cfg *SyncConfig, revisionID int64) (*SyncReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, span := startDBSpan(ctx, "sync", "", spanAttrs(cfg.SourceName, cfg.LiveTableName)...)
	start := time.Now()
	report := newSyncReport()

	err := runSync(ctx, cfg, revisionID, report)

	syncMetrics.syncDuration.Record(ctx, float64(time.Since(start).Milliseconds()))
	endSpan(span, err)

	if err != nil {
		return nil, wrapSyncFailure(err)
	}
	return report, nil
}

func runSync(ctx context.Context, cfg *SyncConfig, revisionID int64, report *SyncReport) error {
	sm := newSchemaManager()
	var vp viewPreparer
	var idx indexManager
	var ld loader
	var hs hasher
	var sy synchronizer

	// dropTempTable runs on every exit path regardless of how the run ended.
	defer func() {
		if err := sm.dropTempTable(ctx, cfg); err != nil {
			report.errorf("cleanup: failed to drop temp table: %v", err)
		}
	}()

	if err := vp.prepare(ctx, cfg, report); err != nil {
		return err
	}

	usingBusinessPK, err := sm.ensureLiveTable(ctx, cfg)
	if err != nil {
		return err
	}

	wasEmpty, err := isTableEmpty(ctx, cfg.TargetDB, cfg.q(cfg.LiveTableName))
	if err != nil {
		return wrapDBError("probing live table row count", err)
	}

	if err := sm.ensureDeletedLogTable(ctx, cfg); err != nil {
		return err
	}

	idColumnPresent := !usingBusinessPK
	if !wasEmpty {
		idx.indexLive(ctx, cfg, report, idColumnPresent)
	}

	if err := sm.prepareTempTable(ctx, cfg); err != nil {
		return err
	}

	if err := ld.load(ctx, cfg, report); err != nil {
		return err
	}

	if _, err := hs.hash(ctx, cfg); err != nil {
		return err
	}

	if err := idx.indexTemp(ctx, cfg); err != nil {
		return err
	}

	if err := sy.synchronize(ctx, cfg, revisionID, wasEmpty, report); err != nil {
		return err
	}

	if wasEmpty && report.InitialInsertCount > 0 {
		idx.indexLive(ctx, cfg, report, idColumnPresent)
	}

	return nil
}

// isTableEmpty reports whether quotedTable currently has zero rows.
func isTableEmpty(ctx context.Context, db *sql.DB, quotedTable string) (bool, error) {
	var count int64
	err := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTable)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
