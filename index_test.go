package tablesync

import (
	"strings"
	"testing"
)

func TestBuildIndexNameShortNameUnchanged(t *testing.T) {
	got := buildIndexName("idx", "customers", []string{"customer_id"})
	want := "idx_customers_customer_id"
	if got != want {
		t.Errorf("buildIndexName() = %q, want %q", got, want)
	}
}

func TestBuildIndexNameTruncatesLongNames(t *testing.T) {
	cols := []string{"a_very_long_column_name_one", "a_very_long_column_name_two", "a_very_long_column_name_three"}
	got := buildIndexName("uidx", "a_table_with_an_unusually_long_name_for_testing", cols)

	if len(got) != 63 {
		t.Fatalf("buildIndexName() length = %d, want 63 (60 + 3-char hash suffix)", len(got))
	}
	if !strings.HasPrefix(got, "uidx_a_table_with_an_unusually_long_name_for_testing") {
		t.Errorf("buildIndexName() = %q, does not have expected prefix", got)
	}
}

func TestBuildIndexNameTruncationIsDeterministic(t *testing.T) {
	cols := []string{"a_very_long_column_name_one", "a_very_long_column_name_two"}
	a := buildIndexName("idx", "another_long_table_name_for_truncation_tests", cols)
	b := buildIndexName("idx", "another_long_table_name_for_truncation_tests", cols)
	if a != b {
		t.Errorf("buildIndexName() is not deterministic: %q != %q", a, b)
	}
}
