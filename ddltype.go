package tablesync

import "fmt"

// columnSQLType renders a ColumnDefinition's portable type as a MySQL/Dolt
// DDL type fragment. This is intentionally modest: spec §1's Non-goals say
// the engine "does not reshape column types beyond what the source
// introspection yields", so the rendering stays a straight mapping rather
// than an attempt to recover every vendor-specific nuance.
func columnSQLType(def ColumnDefinition) string {
	switch def.Type {
	case TypeString:
		length := def.Length
		if length <= 0 {
			length = 255
		}
		if def.Fixed {
			return fixedCharType(length)
		}
		return fmt.Sprintf("VARCHAR(%d)", length)
	case TypeText:
		return "TEXT"
	case TypeInteger:
		return unsignedSuffix("INT", def.Unsigned)
	case TypeSmallInt:
		return unsignedSuffix("SMALLINT", def.Unsigned)
	case TypeBigInt:
		return unsignedSuffix("BIGINT", def.Unsigned)
	case TypeBoolean:
		return "TINYINT(1)"
	case TypeDecimal:
		precision, scale := def.Precision, def.Scale
		if precision <= 0 {
			precision = 18
		}
		return fmt.Sprintf("DECIMAL(%d,%d)", precision, scale)
	case TypeFloat:
		return "DOUBLE"
	case TypeDate:
		return "DATE"
	case TypeDateTime:
		return "DATETIME"
	case TypeDateTimeTZ:
		return "DATETIME" // MySQL-family has no tz-aware datetime type
	case TypeTime:
		return "TIME"
	case TypeBinary:
		length := def.Length
		if length <= 0 {
			length = 255
		}
		if def.Fixed {
			return fmt.Sprintf("BINARY(%d)", length)
		}
		return fmt.Sprintf("VARBINARY(%d)", length)
	case TypeBlob:
		return "LONGBLOB"
	case TypeJSON:
		return "JSON"
	case TypeGUID:
		return "CHAR(36)"
	default:
		return "VARCHAR(255)"
	}
}

func unsignedSuffix(base string, unsigned bool) string {
	if unsigned {
		return base + " UNSIGNED"
	}
	return base
}

// fixedCharType renders a fixed-width character column, used for the
// syncer-owned content-hash column (spec §3: "64-char fixed-width string").
func fixedCharType(length int) string {
	return fmt.Sprintf("CHAR(%d)", length)
}
