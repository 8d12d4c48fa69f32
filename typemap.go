package tablesync

import "strings"

// mapInformationSchemaType maps an INFORMATION_SCHEMA.COLUMNS DATA_TYPE value
// (plus the engine-specific context needed to disambiguate a few types) onto
// the portable ColumnType tag, per spec §4.B's type-mapping table.
//
// dataType is the lowercase DATA_TYPE value. fullColumnType is the raw
// COLUMN_TYPE string (MySQL-family only; empty elsewhere) used to recover the
// unsigned flag and to distinguish tinyint(1) as boolean. precision is
// NUMERIC_PRECISION (used for the bit/tinyint boolean disambiguation).
// mysqlFamily indicates the source engine speaks the MySQL/MariaDB dialect of
// information_schema, which changes a few of the disambiguation rules.
func mapInformationSchemaType(dataType, fullColumnType string, precision int, mysqlFamily bool) (ColumnType, []string) {
	var warnings []string
	dt := strings.ToLower(strings.TrimSpace(dataType))
	fct := strings.ToLower(strings.TrimSpace(fullColumnType))

	switch dt {
	case "char", "varchar", "character varying", "nvarchar", "nchar", "tinytext":
		return TypeString, warnings
	case "text", "ntext", "mediumtext", "longtext":
		return TypeText, warnings
	case "int", "integer", "mediumint":
		return TypeInteger, warnings
	case "smallint":
		return TypeSmallInt, warnings
	case "bigint":
		return TypeBigInt, warnings
	case "tinyint":
		if precision == 1 && strings.Contains(fct, "tinyint(1)") {
			return TypeBoolean, warnings
		}
		return TypeSmallInt, warnings
	case "bit":
		if precision == 1 {
			return TypeBoolean, warnings
		}
		return TypeString, warnings
	case "decimal", "numeric", "dec", "money", "smallmoney":
		return TypeDecimal, warnings
	case "float", "real", "double", "double precision":
		return TypeFloat, warnings
	case "date":
		return TypeDate, warnings
	case "datetime", "datetime2", "smalldatetime", "timestamp":
		return TypeDateTime, warnings
	case "timestamptz", "timestamp with time zone":
		return TypeDateTimeTZ, warnings
	case "time":
		return TypeTime, warnings
	case "year":
		if mysqlFamily {
			return TypeDate, warnings
		}
		return TypeString, warnings
	case "binary", "varbinary", "image":
		return TypeBinary, warnings
	case "blob", "tinyblob", "mediumblob", "longblob", "bytea":
		return TypeBlob, warnings
	case "json", "jsonb":
		return TypeJSON, warnings
	case "uuid":
		return TypeGUID, warnings
	case "enum", "set":
		return TypeString, warnings
	default:
		if strings.HasSuffix(dt, "blob") {
			return TypeBlob, warnings
		}
		warnings = append(warnings, "unknown information_schema type "+dataType+", mapped to STRING")
		return TypeString, warnings
	}
}

// isUnsignedColumnType reports whether a MySQL-family COLUMN_TYPE string
// carries the UNSIGNED modifier (spec §4.B step 2).
func isUnsignedColumnType(fullColumnType string) bool {
	return strings.Contains(strings.ToLower(fullColumnType), "unsigned")
}

// isFixedColumnType reports whether an INFORMATION_SCHEMA DATA_TYPE value
// denotes a fixed-width character/binary column (CHAR, BINARY) rather than
// its variable-width counterpart (VARCHAR, VARBINARY).
func isFixedColumnType(dataType string) bool {
	switch strings.ToLower(strings.TrimSpace(dataType)) {
	case "char", "nchar", "binary":
		return true
	default:
		return false
	}
}
