package tablesync

import (
	"database/sql"
	"testing"
)

func validBaseConfig() *SyncConfig {
	return &SyncConfig{
		SourceDB:      &sql.DB{},
		TargetDB:      &sql.DB{},
		SourceName:    "customers",
		LiveTableName: "live_customers",
		PrimaryKeyMap: [][2]string{{"cust_id", "customer_id"}},
		DataColumnMap: [][2]string{
			{"cust_id", "customer_id"},
			{"cust_name", "customer_name"},
			{"updated_ts", "updated_ts"},
		},
		HashColumns: []string{"cust_name", "updated_ts"},
	}
}

func TestSyncConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SyncConfig)
		wantErr bool
	}{
		{
			name:    "valid minimal config",
			mutate:  func(c *SyncConfig) {},
			wantErr: false,
		},
		{
			name:    "missing source db",
			mutate:  func(c *SyncConfig) { c.SourceDB = nil },
			wantErr: true,
		},
		{
			name:    "missing target db",
			mutate:  func(c *SyncConfig) { c.TargetDB = nil },
			wantErr: true,
		},
		{
			name:    "missing source name",
			mutate:  func(c *SyncConfig) { c.SourceName = "" },
			wantErr: true,
		},
		{
			name:    "missing live table name",
			mutate:  func(c *SyncConfig) { c.LiveTableName = "" },
			wantErr: true,
		},
		{
			name:    "empty primary key map",
			mutate:  func(c *SyncConfig) { c.PrimaryKeyMap = nil },
			wantErr: true,
		},
		{
			name:    "empty data column map",
			mutate:  func(c *SyncConfig) { c.DataColumnMap = nil },
			wantErr: true,
		},
		{
			name:    "empty hash columns",
			mutate:  func(c *SyncConfig) { c.HashColumns = nil },
			wantErr: true,
		},
		{
			name: "pk column not in data column map",
			mutate: func(c *SyncConfig) {
				c.PrimaryKeyMap = [][2]string{{"other_id", "other_id"}}
			},
			wantErr: true,
		},
		{
			name: "hash column not in data column map",
			mutate: func(c *SyncConfig) {
				c.HashColumns = []string{"not_mapped"}
			},
			wantErr: true,
		},
		{
			name: "non-nullable datetime column not in data column map",
			mutate: func(c *SyncConfig) {
				c.NonNullableDatetimeColumns = []string{"not_mapped"}
			},
			wantErr: true,
		},
		{
			name: "shouldCreateView without viewDefinition",
			mutate: func(c *SyncConfig) {
				c.ShouldCreateView = true
			},
			wantErr: true,
		},
		{
			name: "shouldCreateView with viewDefinition is fine",
			mutate: func(c *SyncConfig) {
				c.ShouldCreateView = true
				c.ViewDefinition = "CREATE VIEW v AS SELECT * FROM t"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBaseConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSyncConfigValidateAppliesDefaults(t *testing.T) {
	cfg := validBaseConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}

	if cfg.TempTableName != "live_customers_temp" {
		t.Errorf("TempTableName = %q, want %q", cfg.TempTableName, "live_customers_temp")
	}
	if cfg.PlaceholderDatetime != defaultPlaceholderDatetime {
		t.Errorf("PlaceholderDatetime = %q, want %q", cfg.PlaceholderDatetime, defaultPlaceholderDatetime)
	}
	if cfg.HashColumnLength != defaultHashColumnLength {
		t.Errorf("HashColumnLength = %d, want %d", cfg.HashColumnLength, defaultHashColumnLength)
	}
	if cfg.MetadataColumnNames.ID != "_syncer_id" {
		t.Errorf("MetadataColumnNames.ID = %q, want %q", cfg.MetadataColumnNames.ID, "_syncer_id")
	}
	if cfg.Dialect == nil {
		t.Error("Dialect default was not applied")
	}
}

func TestSyncConfigDeletionLogTableNameDefault(t *testing.T) {
	cfg := validBaseConfig()
	cfg.EnableDeletionLogging = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	want := "live_customers_deleted_log"
	if cfg.DeletionLogTableName != want {
		t.Errorf("DeletionLogTableName = %q, want %q", cfg.DeletionLogTableName, want)
	}
}

func TestOrderedColumnMapPutsPrimaryKeyFirst(t *testing.T) {
	cfg := validBaseConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}

	got := cfg.orderedSourceColumns()
	want := []string{"cust_id", "cust_name", "updated_ts"}
	if len(got) != len(want) {
		t.Fatalf("orderedSourceColumns() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("orderedSourceColumns()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOrderedColumnMapTargetAndSource(t *testing.T) {
	m := newOrderedColumnMap([][2]string{{"a", "x"}, {"b", "y"}})

	if tgt, ok := m.Target("a"); !ok || tgt != "x" {
		t.Errorf("Target(a) = (%q, %v), want (x, true)", tgt, ok)
	}
	if src, ok := m.Source("y"); !ok || src != "b" {
		t.Errorf("Source(y) = (%q, %v), want (b, true)", src, ok)
	}
	if _, ok := m.Target("missing"); ok {
		t.Error("Target(missing) reported ok for an unmapped key")
	}
}
