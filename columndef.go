package tablesync

// ColumnType is the closed set of portable type tags a ColumnDefinition can
// carry, per spec §9's "tagged variant" design note.
type ColumnType int

const (
	TypeUnknown ColumnType = iota
	TypeString
	TypeText
	TypeInteger
	TypeSmallInt
	TypeBigInt
	TypeBoolean
	TypeDecimal
	TypeFloat
	TypeDate
	TypeDateTime
	TypeDateTimeTZ
	TypeTime
	TypeBinary
	TypeBlob
	TypeJSON
	TypeGUID
)

func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "STRING"
	case TypeText:
		return "TEXT"
	case TypeInteger:
		return "INTEGER"
	case TypeSmallInt:
		return "SMALLINT"
	case TypeBigInt:
		return "BIGINT"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeDecimal:
		return "DECIMAL"
	case TypeFloat:
		return "FLOAT"
	case TypeDate:
		return "DATE"
	case TypeDateTime:
		return "DATETIME"
	case TypeDateTimeTZ:
		return "DATETIMETZ"
	case TypeTime:
		return "TIME"
	case TypeBinary:
		return "BINARY"
	case TypeBlob:
		return "BLOB"
	case TypeJSON:
		return "JSON"
	case TypeGUID:
		return "GUID"
	default:
		return "STRING"
	}
}

// ColumnDefinition is the uniform introspection record produced by the
// Source Introspector and consumed by the Schema Manager (spec §3).
type ColumnDefinition struct {
	Name          string
	Type          ColumnType
	Length        int
	Precision     int
	Scale         int
	Unsigned      bool
	Fixed         bool
	NotNull       bool
	Default       string
	HasDefault    bool
	AutoIncrement bool
	// PlatformOptions holds engine-specific DDL fragments (e.g. a MySQL
	// COLUMN_TYPE string) that downstream DDL generation may consult without
	// widening the portable ColumnType tag set.
	PlatformOptions map[string]string
	Comment         string
}

// SourceKind is the closed enum classifying what kind of object the source
// name resolved to (spec §9).
type SourceKind int

const (
	SourceUnknown SourceKind = iota
	SourceTable
	SourceView
	SourceIntrospectableOther
)

func (k SourceKind) String() string {
	switch k {
	case SourceTable:
		return "TABLE"
	case SourceView:
		return "VIEW"
	case SourceIntrospectableOther:
		return "INTROSPECTABLE_OTHER"
	default:
		return "UNKNOWN"
	}
}
