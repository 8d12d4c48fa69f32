package tablesync

import "testing"

func TestMapInformationSchemaType(t *testing.T) {
	tests := []struct {
		name           string
		dataType       string
		fullColumnType string
		precision      int
		mysqlFamily    bool
		want           ColumnType
	}{
		{"varchar", "varchar", "varchar(255)", 0, true, TypeString},
		{"text", "text", "text", 0, true, TypeText},
		{"int", "int", "int(11)", 0, true, TypeInteger},
		{"bigint", "bigint", "bigint(20)", 0, true, TypeBigInt},
		{"tinyint(1) is boolean", "tinyint", "tinyint(1)", 1, true, TypeBoolean},
		{"tinyint(4) is smallint", "tinyint", "tinyint(4)", 4, true, TypeSmallInt},
		{"bit(1) is boolean", "bit", "bit(1)", 1, true, TypeBoolean},
		{"bit(8) is string", "bit", "bit(8)", 8, true, TypeString},
		{"decimal", "decimal", "decimal(10,2)", 10, true, TypeDecimal},
		{"double", "double", "double", 0, true, TypeFloat},
		{"date", "date", "date", 0, true, TypeDate},
		{"datetime", "datetime", "datetime", 0, true, TypeDateTime},
		{"timestamp", "timestamp", "timestamp", 0, true, TypeDateTime},
		{"year on mysql family", "year", "year(4)", 0, true, TypeDate},
		{"year off mysql family", "year", "", 0, false, TypeString},
		{"varbinary", "varbinary", "varbinary(16)", 0, true, TypeBinary},
		{"longblob", "longblob", "longblob", 0, true, TypeBlob},
		{"json", "json", "json", 0, true, TypeJSON},
		{"uuid", "uuid", "", 0, false, TypeGUID},
		{"enum falls back to string", "enum", "enum('a','b')", 0, true, TypeString},
		{"unknown type falls back to string", "geometry", "geometry", 0, true, TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := mapInformationSchemaType(tt.dataType, tt.fullColumnType, tt.precision, tt.mysqlFamily)
			if got != tt.want {
				t.Errorf("mapInformationSchemaType(%q, %q, %d, %v) = %v, want %v",
					tt.dataType, tt.fullColumnType, tt.precision, tt.mysqlFamily, got, tt.want)
			}
		})
	}
}

func TestMapInformationSchemaTypeUnknownWarns(t *testing.T) {
	_, warnings := mapInformationSchemaType("geometry", "geometry", 0, true)
	if len(warnings) == 0 {
		t.Error("expected a warning for an unrecognized information_schema type")
	}
}

func TestIsUnsignedColumnType(t *testing.T) {
	tests := []struct {
		columnType string
		want       bool
	}{
		{"int(11) unsigned", true},
		{"int(11)", false},
		{"bigint(20) unsigned zerofill", true},
		{"", false},
	}
	for _, tt := range tests {
		if got := isUnsignedColumnType(tt.columnType); got != tt.want {
			t.Errorf("isUnsignedColumnType(%q) = %v, want %v", tt.columnType, got, tt.want)
		}
	}
}

func TestIsFixedColumnType(t *testing.T) {
	tests := []struct {
		dataType string
		want     bool
	}{
		{"char", true},
		{"nchar", true},
		{"binary", true},
		{"varchar", false},
		{"varbinary", false},
		{"text", false},
	}
	for _, tt := range tests {
		if got := isFixedColumnType(tt.dataType); got != tt.want {
			t.Errorf("isFixedColumnType(%q) = %v, want %v", tt.dataType, got, tt.want)
		}
	}
}
