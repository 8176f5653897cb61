// Package db maps plain Go structs onto an embedded SQLite database.
//
// A DB owns one connection. Records are read by reflection (or through a
// generated record.Describer) into column lists, bind values and WHERE
// clauses, and results come back as a RecordSet.
//
// Every operation comes in two forms. The Context form returns an error
// that StatusOf classifies. The short form never fails: it logs and hands
// back nil, so "no rows" and "query failed" look the same to the caller.
//
// A DB is not safe for concurrent use.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/TechXTT/LiteRM/internal/core"
	"github.com/TechXTT/LiteRM/internal/logging"
	"github.com/TechXTT/LiteRM/internal/typeconv"
	"github.com/TechXTT/LiteRM/pkg/runtime"
)

// DB is the database facade.
type DB struct {
	Conn *sql.DB

	id           uuid.UUID
	path         string
	logger       *slog.Logger
	lastInsertID int64
	openErr      error
	closed       bool
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger; the package default is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) {
		db.logger = l
	}
}

// Open opens the database file at path. It never fails outright: when the
// file cannot be opened the failure is logged, Err reports it, and every
// operation on the returned DB returns ErrClosed.
func Open(path string, opts ...Option) *DB {
	return OpenContext(context.Background(), path, opts...)
}

// OpenContext is Open with a context for the initial connection.
func OpenContext(ctx context.Context, path string, opts ...Option) *DB {
	db := newDB(path, opts)
	conn, err := runtime.Connect(ctx, path)
	if err != nil {
		db.openErr = err
		db.log().Error("database could not be opened", "path", path, "err", err)
		return db
	}
	db.Conn = conn
	db.log().Debug("database opened", "path", path, "driver", runtime.DriverType())
	return db
}

// New wraps an existing connection. The caller should limit it to a
// single open connection.
func New(conn *sql.DB, opts ...Option) *DB {
	db := newDB("", opts)
	db.Conn = conn
	return db
}

func newDB(path string, opts []Option) *DB {
	db := &DB{id: uuid.New(), path: path}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Err returns the error from Open, if any.
func (db *DB) Err() error {
	return db.openErr
}

// Path returns the database file path given to Open.
func (db *DB) Path() string {
	return db.path
}

// ID identifies this facade in log output.
func (db *DB) ID() uuid.UUID {
	return db.id
}

// LastInsertID returns the rowid of the most recent INSERT on this DB.
func (db *DB) LastInsertID() int64 {
	return db.lastInsertID
}

// Close releases the connection. Closing twice is a no-op.
func (db *DB) Close() error {
	if db.closed || db.Conn == nil {
		db.closed = true
		return nil
	}
	db.closed = true
	if err := db.Conn.Close(); err != nil {
		db.log().Error("database could not be closed", "err", err)
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

func (db *DB) log() *slog.Logger {
	l := db.logger
	if l == nil {
		l = logging.Default()
	}
	return l.With("conn", db.id.String())
}

func (db *DB) usable(query string) error {
	if db.Conn == nil || db.closed {
		db.log().Warn("statement on closed database", "sql", query)
		return ErrClosed
	}
	return nil
}

// SelectContext runs query and decodes every row. A query without rows
// returns ErrNotFound.
func (db *DB) SelectContext(ctx context.Context, query string) (*RecordSet, error) {
	if err := db.usable(query); err != nil {
		return nil, err
	}
	log := db.log().With("sql", query)
	log.Debug("select")

	stmt, err := db.Conn.PrepareContext(ctx, query)
	if err != nil {
		log.Error("statement could not be prepared", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrPrepare, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		log.Error("error while querying", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrExecute, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		log.Error("columns could not be read", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrExecute, err)
	}

	rs := &RecordSet{Header: uniqueHeader(cols)}
	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			log.Error("row could not be scanned", "err", err)
			return nil, fmt.Errorf("%w: %w", ErrExecute, err)
		}
		row := make(Row, len(cols))
		for i, v := range raw {
			tag, val := typeconv.Decode(v)
			if tag == typeconv.TagUnknown {
				log.Warn("column type not supported", "column", cols[i], "type", fmt.Sprintf("%T", v))
			}
			row[i] = val
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		log.Error("error while stepping", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrExecute, err)
	}

	if len(rs.Rows) == 0 {
		return nil, ErrNotFound
	}
	return rs, nil
}

// Select is SelectContext for callers that only care about data: any
// failure, including an empty result, yields nil.
func (db *DB) Select(query string) *RecordSet {
	rs, _ := db.SelectContext(context.Background(), query)
	return rs
}

// ExecuteContext prepares query, binds values to its parameters in order
// and steps it once. Values without a binding are logged and sent as NULL;
// their positions come back in ExecResult.Skipped.
func (db *DB) ExecuteContext(ctx context.Context, query string, values []any) (ExecResult, error) {
	var res ExecResult
	if err := db.usable(query); err != nil {
		return res, err
	}
	log := db.log().With("sql", query)
	log.Debug("execute", "values", len(values))

	stmt, err := db.Conn.PrepareContext(ctx, query)
	if err != nil {
		log.Error("statement could not be prepared", "err", err)
		return res, fmt.Errorf("%w: %w", ErrPrepare, err)
	}
	defer stmt.Close()

	args := make([]any, len(values))
	for i, v := range values {
		enc, ok := typeconv.Encode(v)
		if !ok {
			// Parameters are 1-based.
			res.Skipped = append(res.Skipped, i+1)
			log.Warn("binding not supported", "position", i+1, "type", fmt.Sprintf("%T", v))
		}
		args[i] = enc
	}

	result, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		log.Error("error while executing", "err", err)
		return res, fmt.Errorf("%w: %w", ErrExecute, err)
	}
	if id, err := result.LastInsertId(); err == nil && id != 0 {
		res.LastInsertID = id
		db.lastInsertID = id
	}
	if n, err := result.RowsAffected(); err == nil {
		res.RowsAffected = n
	}
	return res, nil
}

// Execute is ExecuteContext without a result; failures are only logged.
func (db *DB) Execute(query string, values []any) {
	_, _ = db.ExecuteContext(context.Background(), query, values)
}

// TablesContext lists the user tables in the database.
func (db *DB) TablesContext(ctx context.Context) ([]string, error) {
	rs, err := db.SelectContext(ctx, core.TablesSQL())
	if err != nil {
		if StatusOf(err) == StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, rs.Len())
	for i := range rs.Rows {
		if name, ok := Get[string](rs, i, "name"); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// uniqueHeader suffixes repeated column names (id, id_2, ...).
func uniqueHeader(cols []string) []string {
	seen := make(map[string]int, len(cols))
	header := make([]string, len(cols))
	for i, c := range cols {
		seen[c]++
		if n := seen[c]; n > 1 {
			header[i] = fmt.Sprintf("%s_%d", c, n)
			continue
		}
		header[i] = c
	}
	return header
}
