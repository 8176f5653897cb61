// File: internal/core/builder.go
package core

import (
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/TechXTT/LiteRM/internal/typeconv"
	"github.com/TechXTT/LiteRM/pkg/record"
)

// ErrNoConditions is returned when an UPDATE would have no WHERE clause.
var ErrNoConditions = errors.New("no match conditions")

// Statement holds the SQL fragments derived from a record's inline fields.
// Names, Placeholders, Pairs and Values are always aligned: position i in
// each refers to the same field.
type Statement struct {
	Columns      []string
	Names        string
	Placeholders string
	Pairs        string
	Values       []any
}

// Build derives the column, placeholder and assignment lists from fields
// in reflection order. Identity and relationship fields are left out.
func Build(fields []record.Field) Statement {
	var st Statement
	var placeholders, pairs []string
	for _, f := range fields {
		if !f.Inline() {
			continue
		}
		st.Columns = append(st.Columns, f.Name)
		placeholders = append(placeholders, "?")
		pairs = append(pairs, f.Name+" = ?")
		st.Values = append(st.Values, f.Value)
	}
	st.Names = strings.Join(st.Columns, ", ")
	st.Placeholders = strings.Join(placeholders, ", ")
	st.Pairs = strings.Join(pairs, ", ")
	return st
}

// MatchConditions builds the AND-joined WHERE clause for fields.
//
// With matchFields empty every non-identity inline field takes part;
// otherwise only the named fields do. Per field:
//
//   - identity field without a value: name = lastInsertID
//   - "=":                            name = ''
//   - "!x":                           name <> x
//   - any other non-empty value:      name = value
//
// Nil and empty-string values contribute nothing, and neither do values
// with no binding (bool, time.Time): they are stored as NULL and could
// never match.
func MatchConditions(fields []record.Field, matchFields []string, lastInsertID int64) string {
	var conds []string
	for _, f := range fields {
		if f.Kind != record.KindScalar {
			continue
		}
		if len(matchFields) == 0 {
			if f.Identity {
				continue
			}
		} else if !contains(matchFields, f.Name) {
			continue
		}
		if cond, ok := condition(f, lastInsertID); ok {
			conds = append(conds, cond)
		}
	}
	return strings.Join(conds, " AND ")
}

func condition(f record.Field, lastInsertID int64) (string, bool) {
	if f.Identity && isZero(f.Value) {
		return fmt.Sprintf("%s = %d", f.Name, lastInsertID), true
	}
	if s, ok := f.Value.(string); ok {
		switch {
		case s == "=":
			return f.Name + " = ''", true
		case strings.HasPrefix(s, "!"):
			return f.Name + " <> " + Literal(strings.TrimPrefix(s, "!")), true
		case s == "":
			return "", false
		}
	}
	if _, ok := typeconv.Encode(f.Value); !ok || f.Value == nil {
		return "", false
	}
	return f.Name + " = " + Literal(f.Value), true
}

// Literal renders v as an SQL literal. Strings are single-quoted with
// embedded quotes doubled.
func Literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return Quote(x)
	case []byte:
		return "X'" + hex.EncodeToString(x) + "'"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.String:
		return Quote(rv.String())
	}
	return Quote(fmt.Sprint(v))
}

// Quote returns s as a single-quoted SQL string literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func isZero(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return rv.IsZero()
	}
	return false
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// InsertSQL builds the INSERT for st. A record without inline columns
// inserts a row of defaults.
func InsertSQL(table string, st Statement) string {
	if len(st.Columns) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", table)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, st.Names, st.Placeholders)
}

// UpdateSQL builds the UPDATE for st. It refuses an empty where clause.
func UpdateSQL(table string, st Statement, where string) (string, error) {
	if where == "" {
		return "", fmt.Errorf("update %s: %w", table, ErrNoConditions)
	}
	if len(st.Columns) == 0 {
		return "", fmt.Errorf("update %s: no columns to set", table)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, st.Pairs, where), nil
}

// QueryBuilder assembles SELECT statements.
type QueryBuilder struct {
	table      string
	selectCols []string
	whereOps   []string
	orderBy    string
	limit      int
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

func (qb *QueryBuilder) From(table string) *QueryBuilder {
	qb.table = table
	return qb
}

func (qb *QueryBuilder) Select(cols ...string) *QueryBuilder {
	qb.selectCols = cols
	return qb
}

// Where adds a condition; empty conditions are ignored.
func (qb *QueryBuilder) Where(cond string) *QueryBuilder {
	if cond != "" {
		qb.whereOps = append(qb.whereOps, cond)
	}
	return qb
}

// OrderBy sets the ORDER BY clause
func (qb *QueryBuilder) OrderBy(order string) *QueryBuilder {
	qb.orderBy = order
	return qb
}

// Limit sets the LIMIT clause
func (qb *QueryBuilder) Limit(n int) *QueryBuilder {
	qb.limit = n
	return qb
}

// Build assembles the SQL query string
func (qb *QueryBuilder) Build() string {
	parts := []string{"SELECT"}
	if len(qb.selectCols) > 0 {
		parts = append(parts, strings.Join(qb.selectCols, ", "))
	} else {
		parts = append(parts, "*")
	}
	parts = append(parts, "FROM", qb.table)
	if len(qb.whereOps) > 0 {
		parts = append(parts, "WHERE", strings.Join(qb.whereOps, " AND "))
	}
	if qb.orderBy != "" {
		parts = append(parts, "ORDER BY", qb.orderBy)
	}
	if qb.limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT %d", qb.limit))
	}
	return strings.Join(parts, " ")
}

// SelectSQL builds SELECT * FROM table [WHERE where].
func SelectSQL(table, where string) string {
	return NewQueryBuilder().From(table).Where(where).Build()
}

// TableExistsSQL builds the catalog lookup for a user table. SQLite table
// names are case-insensitive, and so is the lookup.
func TableExistsSQL(table string) string {
	return NewQueryBuilder().
		Select("name").
		From("sqlite_master").
		Where("type = 'table'").
		Where("name = " + Quote(table) + " COLLATE NOCASE").
		Build()
}

// TablesSQL lists all user tables.
func TablesSQL() string {
	return NewQueryBuilder().
		Select("name").
		From("sqlite_master").
		Where("type = 'table'").
		Where("name NOT LIKE 'sqlite_%'").
		OrderBy("name").
		Build()
}
