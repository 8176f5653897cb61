// Package schema infers CREATE TABLE statements from a reflected record.
// It only bootstraps new tables; existing tables are never altered.
package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/TechXTT/LiteRM/internal/typeconv"
	"github.com/TechXTT/LiteRM/pkg/record"
)

// Column is one column definition.
type Column struct {
	Name       string
	Type       string
	Constraint string
}

func (c Column) String() string {
	def := c.Name
	if c.Type != "" {
		def += " " + c.Type
	}
	if c.Constraint != "" {
		def += " " + c.Constraint
	}
	return def
}

// Table is a table definition.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string // composite key; a single key is inlined on its column
	IfNotExists bool
}

// SQL renders the CREATE TABLE statement.
func (t Table) SQL() string {
	defs := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		defs = append(defs, c.String())
	}
	if len(t.PrimaryKey) > 1 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(t.PrimaryKey, ", ")))
	}
	create := "CREATE TABLE"
	if t.IfNotExists {
		create += " IF NOT EXISTS"
	}
	return fmt.Sprintf("%s %s (%s)", create, t.Name, strings.Join(defs, ", "))
}

// Plan is the ordered set of tables for a record: the owner table first,
// then one join table per relationship field.
type Plan struct {
	Tables []Table
	// Unsupported lists inline fields whose type has no column mapping.
	Unsupported []string
}

// For plans the tables for d.
func For(d *record.Descriptor) Plan {
	var plan Plan

	owner := Table{Name: d.Table}
	keys := make([]Column, 0, len(d.PrimaryKeys))
	for _, pk := range d.PrimaryKeys {
		keys = append(keys, Column{Name: pk, Type: keyType(d, pk)})
	}
	if len(keys) == 1 {
		c := keys[0]
		c.Constraint = "PRIMARY KEY"
		owner.Columns = append(owner.Columns, c)
	} else {
		owner.Columns = append(owner.Columns, keys...)
		owner.PrimaryKey = append([]string(nil), d.PrimaryKeys...)
	}

	var joins []Table
	for _, f := range d.Fields {
		if f.Identity {
			continue
		}
		switch f.Kind {
		case record.KindScalar:
			typ, ok := columnType(f)
			if !ok {
				plan.Unsupported = append(plan.Unsupported, f.Name)
				continue
			}
			owner.Columns = append(owner.Columns, Column{Name: f.Name, Type: typ})
		case record.KindToMany, record.KindToOne:
			joins = append(joins, joinTable(d, f, keys))
		}
	}

	plan.Tables = append([]Table{owner}, joins...)
	return plan
}

// joinTable holds the rows of a relationship field, keyed back to the owner.
func joinTable(d *record.Descriptor, f record.Field, ownerKeys []Column) Table {
	t := Table{Name: d.Table + "_" + f.Name, IfNotExists: true}
	for _, k := range ownerKeys {
		t.Columns = append(t.Columns, Column{
			Name:       k.Name,
			Type:       k.Type,
			Constraint: fmt.Sprintf("NOT NULL REFERENCES %s (%s)", d.Table, k.Name),
		})
	}
	if f.Type == nil {
		return t
	}

	ft := f.Type
	for ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}
	if ft.Kind() == reflect.Map {
		typ, _ := typeconv.ColumnType(ft.Key())
		t.Columns = append(t.Columns, Column{Name: "key", Type: typ})
	}

	elem := record.ElemType(f.Type)
	if record.KindOf(elem) == record.KindToOne {
		child, err := record.Reflect(reflect.New(elem).Interface())
		if err == nil {
			for _, pk := range child.PrimaryKeys {
				name := pk
				if containsColumn(t.Columns, name) {
					name = child.Table + "_" + pk
				}
				t.Columns = append(t.Columns, Column{
					Name:       name,
					Type:       keyType(child, pk),
					Constraint: fmt.Sprintf("REFERENCES %s (%s)", child.Table, pk),
				})
			}
			return t
		}
	}
	typ, _ := typeconv.ColumnType(elem)
	t.Columns = append(t.Columns, Column{Name: "value", Type: typ})
	return t
}

func keyType(d *record.Descriptor, pk string) string {
	if f, ok := d.Field(pk); ok {
		if typ, ok := columnType(f); ok {
			return typ
		}
	}
	return "INTEGER"
}

func columnType(f record.Field) (string, bool) {
	t := f.Type
	if t == nil && f.Value != nil {
		t = reflect.TypeOf(f.Value)
	}
	if t == nil {
		return "", false
	}
	return typeconv.ColumnType(t)
}

func containsColumn(cols []Column, name string) bool {
	for _, c := range cols {
		if c.Name == name {
			return true
		}
	}
	return false
}
