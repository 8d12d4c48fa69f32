package tablesync

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestHasherHashBuildsExpectedStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	cfg := validBaseConfig()
	cfg.TargetDB = db
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	mock.ExpectExec("UPDATE `live_customers_temp` SET `_syncer_content_hash` = SHA2\\(CONCAT\\(.*\\), 256\\)").
		WillReturnResult(sqlmock.NewResult(0, 3))

	var h hasher
	affected, err := h.hash(context.Background(), cfg)
	if err != nil {
		t.Fatalf("hash() error = %v", err)
	}
	if affected != 3 {
		t.Errorf("hash() affected = %d, want 3", affected)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHasherHashRejectsUnmappedColumn(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	cfg := validBaseConfig()
	cfg.TargetDB = db
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	cfg.HashColumns = append(cfg.HashColumns, "ghost_column")

	var h hasher
	if _, err := h.hash(context.Background(), cfg); err == nil {
		t.Error("hash() error = nil, want error for unmapped hash column")
	}
}
