package core

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TechXTT/LiteRM/pkg/record"
)

func scalar(name string, v any) record.Field {
	return record.Field{Name: name, Value: v, Kind: record.KindScalar, Type: reflect.TypeOf(v)}
}

func identity(name string, v any) record.Field {
	f := scalar(name, v)
	f.Identity = true
	return f
}

func TestBuild_AlignsAllLists(t *testing.T) {
	fields := []record.Field{
		identity("personID", int64(0)),
		scalar("name", "Ann"),
		{Name: "tags", Value: []string{"a", "b", "c"}, Kind: record.KindToMany},
		scalar("age", 42),
		scalar("photo", []byte{1, 2}),
	}

	st := Build(fields)
	require.Equal(t, []string{"name", "age", "photo"}, st.Columns)
	require.Equal(t, "name, age, photo", st.Names)
	require.Equal(t, "?, ?, ?", st.Placeholders)
	require.Equal(t, "name = ?, age = ?, photo = ?", st.Pairs)
	require.Equal(t, []any{"Ann", 42, []byte{1, 2}}, st.Values)
}

func TestBuild_NoInlineFields(t *testing.T) {
	st := Build([]record.Field{identity("id", nil)})
	require.Empty(t, st.Columns)
	require.Empty(t, st.Values)
	require.Equal(t, "INSERT INTO t DEFAULT VALUES", InsertSQL("t", st))
}

func TestMatchConditions_Sentinels(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"empty sentinel", "=", "name = ''"},
		{"negation", "!foo", "name <> 'foo'"},
		{"plain string", "bar", "name = 'bar'"},
		{"quote escaped", "O'Neil", "name = 'O''Neil'"},
		{"empty string", "", ""},
		{"nil", nil, ""},
		{"integer zero", 0, "name = 0"},
		{"float", 2.5, "name = 2.5"},
		{"bool has no binding", true, ""},
		{"time has no binding", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchConditions([]record.Field{scalar("name", tt.value)}, nil, 0)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMatchConditions_DefaultSkipsIdentity(t *testing.T) {
	fields := []record.Field{
		identity("personID", int64(7)),
		scalar("name", "Ann"),
		scalar("city", "Gent"),
		{Name: "tags", Value: []string{"x"}, Kind: record.KindToMany},
	}
	require.Equal(t, "name = 'Ann' AND city = 'Gent'", MatchConditions(fields, nil, 99))
}

func TestMatchConditions_OverrideRestrictsFields(t *testing.T) {
	fields := []record.Field{
		identity("personID", nil),
		scalar("name", "Ann"),
		scalar("city", "Gent"),
	}
	require.Equal(t, "city = 'Gent'", MatchConditions(fields, []string{"city"}, 0))
	require.Equal(t, "personID = 12", MatchConditions(fields, []string{"personID"}, 12))
}

func TestMatchConditions_SkipsUnbindableFields(t *testing.T) {
	fields := []record.Field{
		scalar("name", "Ann"),
		scalar("active", true),
	}
	require.Equal(t, "name = 'Ann'", MatchConditions(fields, nil, 0))
	require.Equal(t, "", MatchConditions(fields, []string{"active"}, 0))
}

func TestMatchConditions_IdentityWithValue(t *testing.T) {
	fields := []record.Field{identity("personID", int64(5))}
	require.Equal(t, "personID = 5", MatchConditions(fields, []string{"personID"}, 12))
}

func TestUpdateSQL(t *testing.T) {
	st := Build([]record.Field{scalar("name", "Ann"), scalar("age", 3)})

	sql, err := UpdateSQL("Person", st, "name = 'Ann'")
	require.NoError(t, err)
	require.Equal(t, "UPDATE Person SET name = ?, age = ? WHERE name = 'Ann'", sql)

	_, err = UpdateSQL("Person", st, "")
	require.ErrorIs(t, err, ErrNoConditions)
}

func TestBuild_WithAllClauses(t *testing.T) {
	sql := NewQueryBuilder().
		From("users").
		Select("id", "name").
		Where("active = 1").
		Where("").
		OrderBy("created_at DESC").
		Limit(10).
		Build()

	require.Equal(t,
		"SELECT id, name FROM users WHERE active = 1 ORDER BY created_at DESC LIMIT 10",
		sql,
	)
}

func TestBuild_Defaults(t *testing.T) {
	require.Equal(t, "SELECT * FROM items", SelectSQL("items", ""))
	require.Equal(t, "SELECT * FROM items WHERE a = 1", SelectSQL("items", "a = 1"))
}

func TestTableExistsSQL(t *testing.T) {
	require.Equal(t,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'Person' COLLATE NOCASE",
		TableExistsSQL("Person"),
	)
}

func TestLiteral(t *testing.T) {
	require.Equal(t, "NULL", Literal(nil))
	require.Equal(t, "X'0aff'", Literal([]byte{0x0a, 0xff}))
	require.Equal(t, "18446744073709551615", Literal(uint64(18446744073709551615)))
}
