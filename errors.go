package db

import (
	"errors"

	"github.com/TechXTT/LiteRM/internal/core"
	"github.com/TechXTT/LiteRM/pkg/record"
)

var (
	// ErrClosed is returned by every operation on a closed facade or on one
	// whose Open failed.
	ErrClosed = errors.New("database is not open")
	// ErrPrepare wraps statement preparation failures, usually malformed SQL.
	ErrPrepare = errors.New("statement could not be prepared")
	// ErrExecute wraps failures while stepping a prepared statement.
	ErrExecute = errors.New("statement failed")
	// ErrNotFound is returned when a query yields no rows.
	ErrNotFound = errors.New("no rows found")
	// ErrNoConditions is returned when an update would touch every row.
	ErrNoConditions = core.ErrNoConditions
	// ErrNotRecord is returned for values that are not structs.
	ErrNotRecord = record.ErrNotRecord
)

// Status is the outcome class of an operation.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusPrepareError
	StatusBindError
	StatusExecuteError
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not-found"
	case StatusPrepareError:
		return "prepare-error"
	case StatusBindError:
		return "bind-error"
	case StatusExecuteError:
		return "execute-error"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StatusOf classifies an error returned by this package. Errors that stop
// a statement from being built count as prepare errors.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrClosed):
		return StatusClosed
	case errors.Is(err, ErrNotFound):
		return StatusNotFound
	case errors.Is(err, ErrExecute):
		return StatusExecuteError
	default:
		return StatusPrepareError
	}
}

// ExecResult describes a completed statement.
type ExecResult struct {
	LastInsertID int64
	RowsAffected int64
	// Skipped holds the 1-based parameter positions whose values had no
	// binding and were sent as NULL.
	Skipped []int
}

// Status is StatusBindError when any parameter was skipped.
func (r ExecResult) Status() Status {
	if len(r.Skipped) > 0 {
		return StatusBindError
	}
	return StatusOK
}
