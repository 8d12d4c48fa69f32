package tablesync

import "testing"

func TestSyncReportLogHelpers(t *testing.T) {
	r := newSyncReport()

	r.infof("loaded %d rows", 10)
	r.warnf("column %q missing", "foo")
	r.errorf("index creation failed: %v", "boom")

	if len(r.Log) != 3 {
		t.Fatalf("len(r.Log) = %d, want 3", len(r.Log))
	}
	if r.Log[0].Severity != SeverityInfo || r.Log[0].Message != "loaded 10 rows" {
		t.Errorf("Log[0] = %+v, unexpected", r.Log[0])
	}
	if r.Log[1].Severity != SeverityWarning || r.Log[1].Message != `column "foo" missing` {
		t.Errorf("Log[1] = %+v, unexpected", r.Log[1])
	}
	if r.Log[2].Severity != SeverityError {
		t.Errorf("Log[2].Severity = %v, want SeverityError", r.Log[2].Severity)
	}
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		sev  Severity
		want string
	}{
		{SeverityInfo, "INFO"},
		{SeverityWarning, "WARN"},
		{SeverityError, "ERROR"},
	}
	for _, tt := range tests {
		if got := tt.sev.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.sev, got, tt.want)
		}
	}
}
