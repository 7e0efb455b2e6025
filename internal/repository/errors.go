package repository

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

var (
	// ErrUniqueViolation is returned when a write collides with a unique constraint.
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrCheckViolation is returned when a write breaks a CHECK constraint.
	ErrCheckViolation = errors.New("check constraint violation")
	// ErrStoreUnavailable is returned when the database cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)

const (
	pqUniqueViolation     pq.ErrorCode  = "23505"
	pqCheckViolation      pq.ErrorCode  = "23514"
	pqConnectionException pq.ErrorClass = "08"
	pqAdminShutdown       pq.ErrorCode  = "57P01"
	pqCannotConnectNow    pq.ErrorCode  = "57P03"
	pqTooManyConnections  pq.ErrorCode  = "53300"
)

// classify annotates driver errors with ErrUniqueViolation, ErrCheckViolation or ErrStoreUnavailable.
// sql.ErrNoRows passes through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == pqUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, ErrUniqueViolation, err)
		case pqErr.Code == pqCheckViolation:
			return fmt.Errorf("%s: %w: %w", op, ErrCheckViolation, err)
		case pqErr.Code.Class() == pqConnectionException,
			pqErr.Code == pqAdminShutdown,
			pqErr.Code == pqCannotConnectNow,
			pqErr.Code == pqTooManyConnections:
			return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
