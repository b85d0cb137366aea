package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// classify wraps driver errors in the bracket error taxonomy so callers can
// tell a retryable outage from a constraint violation.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", bracket.ErrNotFound, err)
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %w", bracket.ErrStorageUnavailable, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrConstraint:
			return fmt.Errorf("%w: %w", bracket.ErrConflictingState, err)
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen, sqlite3.ErrIoErr, sqlite3.ErrFull, sqlite3.ErrReadonly:
			return fmt.Errorf("%w: %w", bracket.ErrStorageUnavailable, err)
		}
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23":
			// integrity constraint violation
			return fmt.Errorf("%w: %w", bracket.ErrConflictingState, err)
		case "08", "53", "57":
			return fmt.Errorf("%w: %w", bracket.ErrStorageUnavailable, err)
		}
		return err
	}

	return err
}

func notFound(entity string, id int) error {
	return fmt.Errorf("%w: %s %d", bracket.ErrNotFound, entity, id)
}

// lookup turns a missing row into a descriptive not-found error.
func lookup(err error, entity string, id int) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(entity, id)
	}
	return classify(err)
}
