package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrNotFound            = errors.New("database: record not found")
	ErrDuplicateKey        = errors.New("database: duplicate key")
	ErrForeignKeyViolation = errors.New("database: foreign key violation")
	ErrCheckViolation      = errors.New("database: check constraint violation")
	ErrNotNullViolation    = errors.New("database: not null violation")
	ErrDeadlock            = errors.New("database: deadlock detected")
	ErrTimeout             = errors.New("database: query timeout")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// DBError pairs a sentinel with the original driver error.
type DBError struct {
	Sentinel error
	Cause    error
}

func (e *DBError) Error() string {
	return fmt.Sprintf("%s (cause: %v)", e.Sentinel, e.Cause)
}

func (e *DBError) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *DBError) Unwrap() error        { return e.Cause }

// ErrorMapper translates driver errors into the sentinels above.
type ErrorMapper interface {
	Map(err error) error
}

// ErrorMapperFunc adapts a function to ErrorMapper.
type ErrorMapperFunc func(error) error

func (f ErrorMapperFunc) Map(err error) error { return f(err) }

// DefaultErrorMapper handles database/sql, context and lib/pq errors.
// Anything it does not recognise is returned unchanged.
func DefaultErrorMapper() ErrorMapper {
	return ErrorMapperFunc(defaultMap)
}

// PostgreSQL SQLSTATE codes.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
	pqNotNullViolation    = "23502"
	pqDeadlockDetected    = "40P01"
	pqQueryCanceled       = "57014"
)

func defaultMap(err error) error {
	if err == nil {
		return nil
	}

	var dbe *DBError
	if errors.As(err, &dbe) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &DBError{Sentinel: ErrNotFound, Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &DBError{Sentinel: ErrTimeout, Cause: err}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return &DBError{Sentinel: ErrDuplicateKey, Cause: err}
		case pqForeignKeyViolation:
			return &DBError{Sentinel: ErrForeignKeyViolation, Cause: err}
		case pqCheckViolation:
			return &DBError{Sentinel: ErrCheckViolation, Cause: err}
		case pqNotNullViolation:
			return &DBError{Sentinel: ErrNotNullViolation, Cause: err}
		case pqDeadlockDetected:
			return &DBError{Sentinel: ErrDeadlock, Cause: err}
		case pqQueryCanceled:
			return &DBError{Sentinel: ErrTimeout, Cause: err}
		}
	}

	return err
}
