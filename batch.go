package tablesync

// loadBatchSize is the number of source rows buffered before a multi-row
// INSERT is flushed into the temp table (spec §4.D). Unlike dolt/batch.go's
// BatchIN, which chunks an already-collected slice for an IN-clause, the
// Loader streams the source cursor and flushes as it goes, so it needs only
// this constant and no separate chunking helper.
const loadBatchSize = 500
