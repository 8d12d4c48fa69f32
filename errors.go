package tablesync

import (
	"database/sql"
	"errors"
	"fmt"
)

// Sentinel errors identifying the taxonomy of failures the engine can produce.
// Every error Sync returns wraps one of these so callers can use errors.Is to
// branch on the failure class without string matching. A metadata mismatch
// error matches both ErrMetadataMismatch and ErrConfiguration.
var (
	// ErrConfiguration indicates a bad or missing mapping, an unknown column,
	// a non-existent source, or a pre-existing live table whose schema
	// disagrees with the supplied SyncConfig. Reported before any DML side
	// effect.
	ErrConfiguration = errors.New("table-syncer: configuration error")

	// ErrIntrospection indicates the information-schema or native introspection
	// path failed while classifying or describing the source object.
	ErrIntrospection = errors.New("table-syncer: introspection error")

	// ErrMetadataMismatch is a specialization of ErrConfiguration raised when an
	// existing live table's declared primary key or column set disagrees with
	// what SyncConfig expects, outside of the businessPK exception in §4.C.
	ErrMetadataMismatch = errors.New("table-syncer: live table metadata mismatch")

	// ErrSyncFailed is the generic wrapper applied to any error surfacing from
	// the orchestrator that is not already one of the engine's typed errors.
	ErrSyncFailed = errors.New("table-syncer: sync failed")
)

// wrapDBError attaches operation context to err, mirroring the teacher's
// wrapDBError helper. sql.ErrNoRows becomes a plain "<op>: not found" error
// that does not wrap sql.ErrNoRows; any other error is wrapped with %w.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: not found", op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// configErrorf builds an error wrapping ErrConfiguration with a formatted message.
func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// introspectionErrorf builds an error wrapping both ErrIntrospection and the
// underlying cause, with the source name in the message. The database name
// is not included.
func introspectionErrorf(sourceName string, cause error) error {
	return fmt.Errorf("%w: source %q: %w", ErrIntrospection, sourceName, cause)
}

// metadataMismatchf builds an error wrapping ErrMetadataMismatch and
// ErrConfiguration.
func metadataMismatchf(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrConfiguration, ErrMetadataMismatch, fmt.Sprintf(format, args...))
}

// wrapSyncFailure ensures every error leaving the orchestrator is classified.
// If err already wraps one of the engine's typed errors it is returned
// unchanged (preserving the more specific classification); otherwise it is
// wrapped as a generic sync failure, preserving the cause chain.
func wrapSyncFailure(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConfiguration) || errors.Is(err, ErrIntrospection) ||
		errors.Is(err, ErrMetadataMismatch) || errors.Is(err, ErrSyncFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrSyncFailed, err)
}
