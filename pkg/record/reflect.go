package record

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"time"
)

var (
	valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
	timeType   = reflect.TypeOf(time.Time{})
)

// Reflect reads rec without modifying it. rec must be a struct or a
// pointer to one.
func Reflect(rec any) (*Descriptor, error) {
	v := reflect.ValueOf(rec)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("%w: nil %s", ErrNotRecord, v.Type())
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T", ErrNotRecord, rec)
	}

	// Methods may sit on the pointer receiver; look them up on an addressable copy.
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	iface := ptr.Interface()

	d := &Descriptor{Table: v.Type().Name()}
	if tn, ok := iface.(TableNamer); ok {
		d.Table = tn.TableName()
	}
	if d.Table == "" {
		return nil, fmt.Errorf("%w: anonymous struct without TableName", ErrNotRecord)
	}

	if desc, ok := iface.(Describer); ok {
		d.Fields = append([]Field(nil), desc.RecordFields()...)
	} else {
		d.Fields = reflectFields(ptr.Elem())
	}

	if pk, ok := iface.(PrimaryKeyer); ok {
		d.PrimaryKeys = pk.PrimaryKeyNames()
	} else {
		for _, f := range d.Fields {
			if f.Identity {
				d.PrimaryKeys = append(d.PrimaryKeys, f.Name)
			}
		}
	}
	if len(d.PrimaryKeys) == 0 {
		d.PrimaryKeys = []string{DefaultPrimaryKey(d.Table)}
	}
	for i := range d.Fields {
		d.Fields[i].Identity = d.IsPrimaryKey(d.Fields[i].Name)
	}
	return d, nil
}

func reflectFields(v reflect.Value) []Field {
	t := v.Type()
	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, pk, skip := parseTag(sf)
		if skip {
			continue
		}
		fields = append(fields, Field{
			Name:     name,
			Value:    Unwrap(v.Field(i)),
			Identity: pk,
			Kind:     KindOf(sf.Type),
			Type:     sf.Type,
		})
	}
	return fields
}

// parseTag reads `db:"name,pk"`. A tag of "-" skips the field.
func parseTag(sf reflect.StructField) (name string, pk, skip bool) {
	tag, ok := sf.Tag.Lookup("db")
	if !ok {
		return sf.Name, false, false
	}
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = strings.TrimSpace(parts[0])
	if name == "" {
		name = sf.Name
	}
	for _, opt := range parts[1:] {
		if strings.TrimSpace(opt) == "pk" {
			pk = true
		}
	}
	return name, pk, false
}

// Unwrap returns the value behind pointers, interfaces and driver.Valuer
// wrappers such as sql.NullString. Absent values come back as nil.
func Unwrap(v reflect.Value) any {
	for {
		if !v.IsValid() {
			return nil
		}
		switch v.Kind() {
		case reflect.Pointer, reflect.Interface:
			if v.IsNil() {
				return nil
			}
		}
		if v.Kind() != reflect.Pointer && v.CanAddr() && reflect.PointerTo(v.Type()).Implements(valuerType) {
			v = v.Addr()
		}
		if v.CanInterface() && v.Type().Implements(valuerType) {
			val, err := v.Interface().(driver.Valuer).Value()
			if err != nil {
				return nil
			}
			return val
		}
		if v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
			v = v.Elem()
			continue
		}
		if !v.CanInterface() {
			return nil
		}
		return v.Interface()
	}
}

// KindOf classifies a static field type.
func KindOf(t reflect.Type) Kind {
	for t.Kind() == reflect.Pointer {
		if t.Implements(valuerType) {
			return KindScalar
		}
		t = t.Elem()
	}
	if t.Implements(valuerType) || reflect.PointerTo(t).Implements(valuerType) || t == timeType {
		return KindScalar
	}
	switch t.Kind() {
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return KindScalar
		}
		return KindToMany
	case reflect.Array, reflect.Map:
		return KindToMany
	case reflect.Struct:
		return KindToOne
	default:
		return KindScalar
	}
}

// ElemType returns the type a relationship field refers to: the element
// type of a collection or the struct type of a nested record.
func ElemType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		t = t.Elem()
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// Value unwraps x the way Reflect unwraps a struct field. Generated
// RecordFields methods use it for pointer and wrapper fields.
func Value(x any) any {
	return Unwrap(reflect.ValueOf(x))
}
