package tablesync

import "testing"

func TestMySQLDialectQuoteIdent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain identifier", "customers", "`customers`"},
		{"identifier with backtick", "weird`name", "`weird``name`"},
	}

	d := MySQLDialect()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.QuoteIdent(tt.in); got != tt.want {
				t.Errorf("QuoteIdent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitQualifiedName(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantSchema string
		wantBase   string
	}{
		{"unqualified", "customers", "", "customers"},
		{"schema qualified", "reporting.customers", "reporting", "customers"},
		{"nested dots take last segment as base", "a.b.c", "a.b", "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSchema, gotBase := splitQualifiedName(tt.in)
			if gotSchema != tt.wantSchema || gotBase != tt.wantBase {
				t.Errorf("splitQualifiedName(%q) = (%q, %q), want (%q, %q)",
					tt.in, gotSchema, gotBase, tt.wantSchema, tt.wantBase)
			}
		})
	}
}
