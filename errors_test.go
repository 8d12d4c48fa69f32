package tablesync

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapDBError(t *testing.T) {
	assert.Nil(t, wrapDBError("op", nil))

	err := wrapDBError("get customer", sql.ErrNoRows)
	assert.EqualError(t, err, "get customer: not found")

	cause := errors.New("connection refused")
	err = wrapDBError("insert batch", cause)
	assert.EqualError(t, err, "insert batch: connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestConfigErrorf(t *testing.T) {
	err := configErrorf("primaryKeyMap key %q must also appear in dataColumnMap", "cust_id")
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "cust_id")
}

func TestIntrospectionErrorf(t *testing.T) {
	cause := errors.New("table not found")
	err := introspectionErrorf("reporting.v_customers", cause)
	assert.ErrorIs(t, err, ErrIntrospection)
	assert.Contains(t, err.Error(), "reporting.v_customers")
	assert.Contains(t, err.Error(), "table not found")
}

func TestWrapSyncFailurePreservesTypedErrors(t *testing.T) {
	typed := fmt.Errorf("column mismatch: %w", ErrMetadataMismatch)
	got := wrapSyncFailure(typed)
	assert.Same(t, typed, got)
	assert.ErrorIs(t, got, ErrMetadataMismatch)
}

func TestWrapSyncFailureWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("unexpected driver panic")
	got := wrapSyncFailure(cause)
	assert.ErrorIs(t, got, ErrSyncFailed)
	assert.Contains(t, got.Error(), "unexpected driver panic")
}

func TestWrapSyncFailureNil(t *testing.T) {
	assert.Nil(t, wrapSyncFailure(nil))
}
