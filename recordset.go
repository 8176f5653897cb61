package db

import (
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/TechXTT/LiteRM/pkg/record"
)

// Row is one result row, aligned with RecordSet.Header.
type Row []any

// RecordSet is an ordered query result. Cell values are int64, float64,
// string, []byte or nil, decided by the storage class SQLite reported for
// each cell.
type RecordSet struct {
	Header []string
	Rows   []Row
}

// Len returns the number of rows. It is safe on a nil set.
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Column returns the index of the named column, or -1.
func (rs *RecordSet) Column(name string) int {
	if rs == nil {
		return -1
	}
	for i, h := range rs.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at row and column.
func (rs *RecordSet) Value(row int, column string) (any, bool) {
	col := rs.Column(column)
	if col < 0 || row < 0 || row >= rs.Len() {
		return nil, false
	}
	return rs.Rows[row][col], true
}

// Get returns the cell at row and column as a T. ok is false when the cell
// is missing, NULL, or holds another type.
func Get[T any](rs *RecordSet, row int, column string) (T, bool) {
	var zero T
	v, ok := rs.Value(row, column)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Decode copies row into the struct dest points to, matching columns to
// fields by `db` tag or name, case-insensitively. Relationship fields and
// columns without a field are ignored.
func (rs *RecordSet) Decode(row int, dest any) error {
	if row < 0 || row >= rs.Len() {
		return fmt.Errorf("decode: row %d out of range", row)
	}
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() || dv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decode: %w: %T", ErrNotRecord, dest)
	}
	sv := dv.Elem()
	st := sv.Type()

	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		if !sf.IsExported() || record.KindOf(sf.Type) != record.KindScalar {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("db"); ok {
			if tag == "-" {
				continue
			}
			if n, _, _ := strings.Cut(tag, ","); n != "" {
				name = n
			}
		}
		col := rs.Column(name)
		if col < 0 {
			for j, h := range rs.Header {
				if strings.EqualFold(h, name) {
					col = j
					break
				}
			}
		}
		if col < 0 {
			continue
		}
		if err := assign(sv.Field(i), rs.Rows[row][col]); err != nil {
			return fmt.Errorf("decode column %s into %s: %w", rs.Header[col], sf.Name, err)
		}
	}
	return nil
}

func assign(dst reflect.Value, v any) error {
	if sc, ok := dst.Addr().Interface().(sql.Scanner); ok {
		return sc.Scan(v)
	}
	if v == nil {
		dst.SetZero()
		return nil
	}
	if dst.Kind() == reflect.Pointer {
		p := reflect.New(dst.Type().Elem())
		if err := assign(p.Elem(), v); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}

	src := reflect.ValueOf(v)
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch x := v.(type) {
		case int64:
			if dst.OverflowInt(x) {
				return fmt.Errorf("value %d overflows %s", x, dst.Type())
			}
			dst.SetInt(x)
			return nil
		case string:
			n, err := strconv.ParseInt(x, 10, 64)
			if err != nil {
				return err
			}
			dst.SetInt(n)
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if x, ok := v.(int64); ok && x >= 0 && !dst.OverflowUint(uint64(x)) {
			dst.SetUint(uint64(x))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		switch x := v.(type) {
		case float64:
			dst.SetFloat(x)
			return nil
		case int64:
			dst.SetFloat(float64(x))
			return nil
		}
	case reflect.String:
		switch x := v.(type) {
		case string:
			dst.SetString(x)
			return nil
		case []byte:
			dst.SetString(string(x))
			return nil
		case int64, float64:
			dst.SetString(fmt.Sprint(x))
			return nil
		}
	case reflect.Slice:
		if dst.Type().Elem().Kind() == reflect.Uint8 {
			switch x := v.(type) {
			case []byte:
				dst.SetBytes(append([]byte(nil), x...))
				return nil
			case string:
				dst.SetBytes([]byte(x))
				return nil
			}
		}
	}
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
}
