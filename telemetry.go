package tablesync

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the OTel tracer for this engine's SQL-level spans. It uses the
// global provider, which is a no-op until the embedding application installs
// a real one - the engine never configures telemetry itself (SPEC_FULL.md
// AMBIENT STACK / Logging), mirroring internal/storage/dolt/store.go's
// doltTracer.
var tracer = otel.Tracer("github.com/topdata-software-gmbh/table-syncer")

// syncMetrics holds the OTel metric instruments emitted during a run. Like
// doltMetrics in the teacher, these forward to whatever MeterProvider is
// globally registered at call time.
var syncMetrics struct {
	rowsLoaded   metric.Int64Counter
	rowsHashed   metric.Int64Counter
	batchesSent  metric.Int64Counter
	retryCount   metric.Int64Counter
	syncDuration metric.Float64Histogram
}

func init() {
	m := otel.Meter("github.com/topdata-software-gmbh/table-syncer")
	syncMetrics.rowsLoaded, _ = m.Int64Counter("tablesyncer.rows_loaded",
		metric.WithDescription("rows copied from source into the temp table"),
		metric.WithUnit("{row}"),
	)
	syncMetrics.rowsHashed, _ = m.Int64Counter("tablesyncer.rows_hashed",
		metric.WithDescription("temp table rows whose content hash was (re)computed"),
		metric.WithUnit("{row}"),
	)
	syncMetrics.batchesSent, _ = m.Int64Counter("tablesyncer.batches_sent",
		metric.WithDescription("multi-row INSERT batches flushed into the temp table"),
		metric.WithUnit("{batch}"),
	)
	syncMetrics.retryCount, _ = m.Int64Counter("tablesyncer.retry_count",
		metric.WithDescription("database operations retried due to transient errors"),
		metric.WithUnit("{retry}"),
	)
	syncMetrics.syncDuration, _ = m.Float64Histogram("tablesyncer.sync_duration_ms",
		metric.WithDescription("wall-clock duration of a full Sync call"),
		metric.WithUnit("ms"),
	)
}

// spanAttrs returns the fixed attributes shared by every span this engine
// emits for one sync run.
func spanAttrs(sourceName, liveTable string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("tablesyncer.source", sourceName),
		attribute.String("tablesyncer.live_table", liveTable),
	}
}

// spanSQL truncates a SQL string to keep spans readable, mirroring
// dolt/store.go's spanSQL.
func spanSQL(q string) string {
	const maxLen = 300
	if len(q) > maxLen {
		return q[:maxLen] + "…"
	}
	return q
}

// endSpan records an error (if any) and ends the span.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// startDBSpan starts a client-kind span for a single database round-trip.
func startDBSpan(ctx context.Context, op, query string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{
		attribute.String("db.system", "mysql"),
		attribute.String("db.operation", op),
		attribute.String("db.statement", spanSQL(query)),
	}, attrs...)
	return tracer.Start(ctx, "tablesyncer."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(all...),
	)
}
