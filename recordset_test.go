package db_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	db "github.com/TechXTT/LiteRM"
)

func sample() *db.RecordSet {
	return &db.RecordSet{
		Header: []string{"id", "name", "score", "photo", "nick"},
		Rows: []db.Row{
			{int64(1), "Ann", 9.5, []byte{1, 2}, nil},
			{int64(2), "Bob", int64(7), nil, "bobby"},
		},
	}
}

func TestRecordSet_Value(t *testing.T) {
	rs := sample()

	v, ok := rs.Value(1, "name")
	assert.True(t, ok)
	assert.Equal(t, "Bob", v)

	_, ok = rs.Value(2, "name")
	assert.False(t, ok)
	_, ok = rs.Value(0, "missing")
	assert.False(t, ok)

	var nilSet *db.RecordSet
	assert.Equal(t, 0, nilSet.Len())
	_, ok = nilSet.Value(0, "id")
	assert.False(t, ok)
}

func TestGet(t *testing.T) {
	rs := sample()

	name, ok := db.Get[string](rs, 0, "name")
	assert.True(t, ok)
	assert.Equal(t, "Ann", name)

	_, ok = db.Get[int64](rs, 0, "name")
	assert.False(t, ok, "wrong type")

	_, ok = db.Get[string](rs, 0, "nick")
	assert.False(t, ok, "NULL cell")
}

type scored struct {
	ID    int    `db:"id"`
	Name  string
	Score float64
	Photo []byte
	Nick  sql.NullString
	Tags  []string
}

func TestRecordSet_Decode(t *testing.T) {
	rs := sample()

	var a scored
	require.NoError(t, rs.Decode(0, &a))
	assert.Equal(t, scored{ID: 1, Name: "Ann", Score: 9.5, Photo: []byte{1, 2}}, a)

	var b scored
	require.NoError(t, rs.Decode(1, &b))
	assert.Equal(t, 2, b.ID)
	assert.Equal(t, 7.0, b.Score)
	assert.Nil(t, b.Photo)
	assert.Equal(t, sql.NullString{String: "bobby", Valid: true}, b.Nick)
}

func TestRecordSet_DecodeErrors(t *testing.T) {
	rs := sample()

	var s scored
	assert.Error(t, rs.Decode(5, &s))
	assert.ErrorIs(t, rs.Decode(0, s), db.ErrNotRecord)

	var bad struct{ Name int }
	assert.Error(t, rs.Decode(0, &bad))
}
