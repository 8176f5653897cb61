// Package record turns a plain Go struct into the ordered field list the
// statement builder works from. The struct instance is the schema: table
// name, identity fields and columns are all read from it.
package record

import (
	"errors"
	"reflect"
	"strings"
)

// ErrNotRecord is returned when a value is not a struct or pointer to struct.
var ErrNotRecord = errors.New("record: value is not a struct")

// Kind classifies how a field is stored.
type Kind int

const (
	// KindScalar fields are stored inline as a single column.
	KindScalar Kind = iota
	// KindToMany fields (slices, arrays, maps) live in a join table.
	KindToMany
	// KindToOne fields (nested structs) live in a join table.
	KindToOne
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindToMany:
		return "to-many"
	case KindToOne:
		return "to-one"
	default:
		return "unknown"
	}
}

// Field describes a single record field.
type Field struct {
	Name     string
	Value    any          // unwrapped value; nil when absent
	Identity bool         // part of the primary key
	Kind     Kind         // storage class
	Type     reflect.Type // static Go type, used for column inference
}

// Inline reports whether the field is written to the record's own table.
func (f Field) Inline() bool {
	return !f.Identity && f.Kind == KindScalar
}

// TableNamer overrides the table name, which defaults to the Go type name.
type TableNamer interface {
	TableName() string
}

// PrimaryKeyer declares the identity fields of a record.
type PrimaryKeyer interface {
	PrimaryKeyNames() []string
}

// Describer lets a record supply its fields without reflection.
// RecordFields must return fields in declaration order on every call.
// `literm gen` writes these methods.
type Describer interface {
	RecordFields() []Field
}

// Descriptor is the reflected view of a record instance.
type Descriptor struct {
	Table       string
	PrimaryKeys []string
	Fields      []Field
}

// IsPrimaryKey reports whether name is one of the identity fields.
func (d *Descriptor) IsPrimaryKey(name string) bool {
	for _, pk := range d.PrimaryKeys {
		if pk == name {
			return true
		}
	}
	return false
}

// Field returns the named field.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// DefaultPrimaryKey is the identity field name used when a record declares none.
func DefaultPrimaryKey(table string) string {
	return strings.ToLower(table) + "ID"
}
