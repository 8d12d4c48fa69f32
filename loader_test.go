package tablesync

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestLoaderLoadCopiesRowsAndSanitizesDatetimes(t *testing.T) {
	sourceDB, sourceMock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer sourceDB.Close()

	targetDB, targetMock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer targetDB.Close()

	cfg := validBaseConfig()
	cfg.SourceDB = sourceDB
	cfg.TargetDB = targetDB
	cfg.NonNullableDatetimeColumns = []string{"updated_ts"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	sourceMock.ExpectQuery("SELECT .* FROM customers").
		WillReturnRows(sqlmock.NewRows([]string{"cust_id", "cust_name", "updated_ts"}).
			AddRow("1", "Alice", "2024-01-01 00:00:00").
			AddRow("2", "Bob", "0000-00-00 00:00:00"))

	targetMock.ExpectExec("INSERT INTO `live_customers_temp`").
		WithArgs("1", "Alice", "2024-01-01 00:00:00", "2", "Bob", "2222-02-22 00:00:00").
		WillReturnResult(sqlmock.NewResult(0, 2))

	var l loader
	report := newSyncReport()
	if err := l.load(context.Background(), cfg, report); err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if err := sourceMock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet source expectations: %v", err)
	}
	if err := targetMock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet target expectations: %v", err)
	}
}
