package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/TechXTT/LiteRM/internal/core"
	"github.com/TechXTT/LiteRM/internal/schema"
	"github.com/TechXTT/LiteRM/pkg/record"
)

func (db *DB) describe(rec any) (*record.Descriptor, error) {
	d, err := record.Reflect(rec)
	if err != nil {
		db.log().Error("record could not be reflected", "type", fmt.Sprintf("%T", rec), "err", err)
		return nil, err
	}
	return d, nil
}

// keyedFields returns d's fields plus an empty identity field for every
// primary key the struct does not carry, so keys can still be matched.
func keyedFields(d *record.Descriptor) []record.Field {
	fields := d.Fields
	for _, pk := range d.PrimaryKeys {
		if _, ok := d.Field(pk); !ok {
			fields = append(fields, record.Field{Name: pk, Identity: true, Kind: record.KindScalar})
		}
	}
	return fields
}

// FindContext selects the rows of rec's table that match rec. With no
// matchFields every non-identity field holding a value is matched;
// otherwise only the named fields are. An identity field without a value
// matches the rowid of the last insert.
func (db *DB) FindContext(ctx context.Context, rec any, matchFields ...string) (*RecordSet, error) {
	d, err := db.describe(rec)
	if err != nil {
		return nil, err
	}
	return db.find(ctx, d, keyedFields(d), matchFields)
}

func (db *DB) find(ctx context.Context, d *record.Descriptor, fields []record.Field, names []string) (*RecordSet, error) {
	where := core.MatchConditions(fields, names, db.lastInsertID)
	return db.SelectContext(ctx, core.SelectSQL(d.Table, where))
}

// Find is FindContext returning nil on any failure.
func (db *DB) Find(rec any, matchFields ...string) *RecordSet {
	rs, _ := db.FindContext(context.Background(), rec, matchFields...)
	return rs
}

// CreateContext inserts rec and reads the new row back by the rowid the
// insert produced. Identity fields are never written; the engine assigns
// them.
func (db *DB) CreateContext(ctx context.Context, rec any) (*RecordSet, int64, error) {
	d, err := db.describe(rec)
	if err != nil {
		return nil, 0, err
	}
	st := core.Build(d.Fields)
	res, err := db.ExecuteContext(ctx, core.InsertSQL(d.Table, st), st.Values)
	if err != nil {
		return nil, 0, err
	}

	// The row is looked up by the rowid just assigned, not by whatever
	// identity values the caller left on rec.
	fields := keyedFields(d)
	keys := make([]record.Field, len(fields))
	copy(keys, fields)
	for i := range keys {
		if keys[i].Identity {
			keys[i].Value = nil
		}
	}
	rs, err := db.find(ctx, d, keys, d.PrimaryKeys)
	return rs, res.LastInsertID, err
}

// Create is CreateContext returning only the new row, or nil.
func (db *DB) Create(rec any) *RecordSet {
	rs, _, _ := db.CreateContext(context.Background(), rec)
	return rs
}

// UpdateContext writes rec's fields to every row matching rec and returns
// those rows as they were before the update. ErrNotFound means nothing
// matched.
func (db *DB) UpdateContext(ctx context.Context, rec any, matchFields ...string) (*RecordSet, error) {
	d, err := db.describe(rec)
	if err != nil {
		return nil, err
	}
	where := core.MatchConditions(keyedFields(d), matchFields, db.lastInsertID)
	st := core.Build(d.Fields)
	update, err := core.UpdateSQL(d.Table, st, where)
	if err != nil {
		db.log().Error("update could not be built", "table", d.Table, "err", err)
		return nil, err
	}

	before, err := db.SelectContext(ctx, core.SelectSQL(d.Table, where))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, err := db.ExecuteContext(ctx, update, st.Values); err != nil {
		return nil, err
	}
	if before == nil {
		return nil, fmt.Errorf("update %s: %w", d.Table, ErrNotFound)
	}
	return before, nil
}

// Update is UpdateContext returning nil on any failure.
func (db *DB) Update(rec any, matchFields ...string) *RecordSet {
	rs, _ := db.UpdateContext(context.Background(), rec, matchFields...)
	return rs
}

// UpsertContext updates the rows matching rec, or inserts rec when none
// match. It returns the pre-update rows after an update and the new row
// after an insert.
func (db *DB) UpsertContext(ctx context.Context, rec any, matchFields ...string) (*RecordSet, error) {
	rs, err := db.UpdateContext(ctx, rec, matchFields...)
	switch {
	case err == nil:
		return rs, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoConditions):
		rs, _, err = db.CreateContext(ctx, rec)
		return rs, err
	default:
		return nil, err
	}
}

// Upsert is UpsertContext returning nil on any failure.
func (db *DB) Upsert(rec any, matchFields ...string) *RecordSet {
	rs, _ := db.UpsertContext(context.Background(), rec, matchFields...)
	return rs
}

// AutoCreateTableContext creates the table for rec, plus one join table per
// relationship field, unless the table already exists. It reports whether
// anything was created. Existing tables are never altered.
func (db *DB) AutoCreateTableContext(ctx context.Context, rec any) (bool, error) {
	d, err := db.describe(rec)
	if err != nil {
		return false, err
	}
	existing, err := db.SelectContext(ctx, core.TableExistsSQL(d.Table))
	switch {
	case err == nil && existing.Len() > 0:
		return false, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return false, err
	}

	plan := schema.For(d)
	for _, name := range plan.Unsupported {
		db.log().Warn("column type not supported", "table", d.Table, "field", name)
	}
	for _, t := range plan.Tables {
		ddl := t.SQL()
		db.log().Info("creating table", "table", t.Name, "sql", ddl)
		if _, err := db.ExecuteContext(ctx, ddl, nil); err != nil {
			return true, err
		}
	}
	return true, nil
}

// AutoCreateTableFor is AutoCreateTableContext with failures only logged.
func (db *DB) AutoCreateTableFor(rec any) {
	_, _ = db.AutoCreateTableContext(context.Background(), rec)
}
