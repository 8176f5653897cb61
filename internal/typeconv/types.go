package typeconv

import (
	"bytes"
	"database/sql"
	"math"
	"reflect"
	"strings"
	"time"
)

// Tag is the storage class SQLite reports for a single value.
type Tag int

const (
	TagNull Tag = iota
	TagInteger
	TagFloat
	TagText
	TagBlob
	TagUnknown
)

func (t Tag) String() string {
	switch t {
	case TagNull:
		return "NULL"
	case TagInteger:
		return "INTEGER"
	case TagFloat:
		return "REAL"
	case TagText:
		return "TEXT"
	case TagBlob:
		return "BLOB"
	default:
		return "UNKNOWN"
	}
}

// Encode converts v into a value the driver binds natively.
// ok is false when v has no binding; the caller binds NULL in its place.
func Encode(v any) (out any, ok bool) {
	if v == nil {
		return nil, true
	}
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		return x, true
	case string:
		return x, true
	case []byte:
		if x == nil {
			return nil, true
		}
		return bytes.Clone(x), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.String:
		return rv.String(), true
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.IsNil() {
				return nil, true
			}
			return bytes.Clone(rv.Bytes()), true
		}
	}
	return nil, false
}

// TimeLayout is how SQLite's date functions write timestamps.
const TimeLayout = "2006-01-02 15:04:05.999999999"

// Decode maps a scanned driver value to its storage class and Go value.
// Drivers turn text in DATETIME columns into time.Time and integers in
// BOOLEAN columns into bool; those go back to text and integer. Unknown
// classes decode to nil.
func Decode(raw any) (Tag, any) {
	switch x := raw.(type) {
	case nil:
		return TagNull, nil
	case int64:
		return TagInteger, x
	case float64:
		return TagFloat, x
	case string:
		return TagText, x
	case []byte:
		return TagBlob, bytes.Clone(x)
	case bool:
		if x {
			return TagInteger, int64(1)
		}
		return TagInteger, int64(0)
	case time.Time:
		if _, offset := x.Zone(); offset != 0 {
			return TagText, x.Format(TimeLayout + "-07:00")
		}
		return TagText, x.Format(TimeLayout)
	default:
		return TagUnknown, nil
	}
}

var (
	nullInt64   = reflect.TypeOf(sql.NullInt64{})
	nullInt32   = reflect.TypeOf(sql.NullInt32{})
	nullInt16   = reflect.TypeOf(sql.NullInt16{})
	nullByte    = reflect.TypeOf(sql.NullByte{})
	nullFloat64 = reflect.TypeOf(sql.NullFloat64{})
	nullString  = reflect.TypeOf(sql.NullString{})
)

// ColumnType returns the SQLite column type for a Go field type, looking
// through pointers. ok is false for types with no column mapping.
func ColumnType(t reflect.Type) (string, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case nullInt64, nullInt32, nullInt16, nullByte:
		return "INTEGER", true
	case nullFloat64:
		return "REAL", true
	case nullString:
		return "TEXT", true
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return "INTEGER", true
	case reflect.Float32, reflect.Float64:
		return "REAL", true
	case reflect.String:
		return "TEXT", true
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return "BLOB", true
		}
	}
	return "", false
}

// MapGoTypeToSQL maps a Go type as written in source to a column type.
// Unknown types map to "".
func MapGoTypeToSQL(goType string) string {
	goType = strings.TrimPrefix(goType, "*")
	switch goType {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "byte", "rune",
		"sql.NullInt64", "sql.NullInt32", "sql.NullInt16", "sql.NullByte":
		return "INTEGER"
	case "float32", "float64", "sql.NullFloat64":
		return "REAL"
	case "string", "sql.NullString":
		return "TEXT"
	case "[]byte", "[]uint8":
		return "BLOB"
	default:
		return ""
	}
}
