package record

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Address struct {
	Street string
}

type Person struct {
	PersonID *int64 `db:"personID"`
	Name     string
	Nick     sql.NullString
	Age      *int
	Photo    []byte
	Born     time.Time
	Tags     []string
	Home     *Address
	Secret   string `db:"-"`
	internal int
}

func names(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func TestReflect_Defaults(t *testing.T) {
	d, err := Reflect(Person{Name: "Ann"})
	require.NoError(t, err)

	assert.Equal(t, "Person", d.Table)
	assert.Equal(t, []string{"personID"}, d.PrimaryKeys)
	assert.Equal(t,
		[]string{"personID", "Name", "Nick", "Age", "Photo", "Born", "Tags", "Home"},
		names(d.Fields),
	)
}

func TestReflect_UnwrapsAndClassifies(t *testing.T) {
	age := 41
	rec := &Person{
		Name: "Ann",
		Nick: sql.NullString{String: "annie", Valid: true},
		Age:  &age,
		Tags: []string{"a", "b", "c"},
		Home: &Address{Street: "Main"},
	}
	d, err := Reflect(rec)
	require.NoError(t, err)

	byName := map[string]Field{}
	for _, f := range d.Fields {
		byName[f.Name] = f
	}

	assert.True(t, byName["personID"].Identity)
	assert.Nil(t, byName["personID"].Value)
	assert.False(t, byName["personID"].Inline())

	assert.Equal(t, "annie", byName["Nick"].Value)
	assert.Equal(t, 41, byName["Age"].Value)
	assert.Equal(t, KindScalar, byName["Photo"].Kind)
	assert.Equal(t, KindScalar, byName["Born"].Kind)
	assert.Equal(t, KindToMany, byName["Tags"].Kind)
	assert.Equal(t, KindToOne, byName["Home"].Kind)
	assert.False(t, byName["Tags"].Inline())
	assert.True(t, byName["Name"].Inline())

	// Reflect is a pure read.
	assert.Equal(t, 41, *rec.Age)
	assert.Equal(t, "Ann", rec.Name)
}

func TestReflect_NullWrapperInvalid(t *testing.T) {
	d, err := Reflect(Person{})
	require.NoError(t, err)
	f, ok := d.Field("Nick")
	require.True(t, ok)
	assert.Nil(t, f.Value)
}

type Account struct {
	Owner  string `db:"owner,pk"`
	Number string `db:"number,pk"`
	Amount float64
}

func (*Account) TableName() string { return "accounts" }

func TestReflect_TaggedKeysAndPointerMethods(t *testing.T) {
	d, err := Reflect(Account{Owner: "ann", Number: "1"})
	require.NoError(t, err)
	assert.Equal(t, "accounts", d.Table)
	assert.Equal(t, []string{"owner", "number"}, d.PrimaryKeys)
	assert.True(t, d.IsPrimaryKey("number"))
	assert.False(t, d.IsPrimaryKey("Amount"))
}

type Ledger struct {
	Code  string
	Total int64
}

func (Ledger) PrimaryKeyNames() []string { return []string{"Code"} }

func (l Ledger) RecordFields() []Field {
	return []Field{
		{Name: "Code", Value: l.Code, Kind: KindScalar, Type: reflect.TypeOf((*string)(nil)).Elem()},
		{Name: "Total", Value: l.Total, Kind: KindScalar, Type: reflect.TypeOf((*int64)(nil)).Elem()},
	}
}

func TestReflect_Describer(t *testing.T) {
	d, err := Reflect(Ledger{Code: "x", Total: 5})
	require.NoError(t, err)
	require.Len(t, d.Fields, 2)
	assert.True(t, d.Fields[0].Identity)
	assert.Equal(t, int64(5), d.Fields[1].Value)
}

func TestReflect_NotRecord(t *testing.T) {
	_, err := Reflect(42)
	assert.ErrorIs(t, err, ErrNotRecord)

	var p *Person
	_, err = Reflect(p)
	assert.ErrorIs(t, err, ErrNotRecord)

	_, err = Reflect(struct{ A int }{})
	assert.ErrorIs(t, err, ErrNotRecord)
}

func TestElemType(t *testing.T) {
	assert.Equal(t, reflect.TypeOf((*Address)(nil)).Elem(), ElemType(reflect.TypeOf((*[]*Address)(nil)).Elem()))
	assert.Equal(t, reflect.TypeOf((*Address)(nil)).Elem(), ElemType(reflect.TypeOf((**Address)(nil)).Elem()))
	assert.Equal(t, reflect.TypeOf((*int)(nil)).Elem(), ElemType(reflect.TypeOf((*map[string]int)(nil)).Elem()))
}

func TestValue(t *testing.T) {
	n := int64(7)
	assert.Equal(t, int64(7), Value(&n))
	assert.Nil(t, Value((*int64)(nil)))
	assert.Equal(t, "x", Value(sql.NullString{String: "x", Valid: true}))
	assert.Nil(t, Value(sql.NullString{}))
	assert.Equal(t, []string{"a"}, Value([]string{"a"}))
}
