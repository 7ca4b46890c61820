// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver errors themselves.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicate is returned when an insert or update collides with a
// primary or unique key (for example a second allocation for the same
// seat in one exam).  Handlers translate it into HTTP 409.
var ErrDuplicate = errors.New("duplicate key")

// ErrReferenced is returned when a foreign key blocks the statement:
// either the row is still referenced by others (delete) or it points at
// a missing parent (insert).  Handlers translate it into HTTP 409.
var ErrReferenced = errors.New("foreign key constraint")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state other than a key collision.
var ErrConflict = errors.New("conflict")

// ErrNotFound is the generic "no such row" used where no entity specific
// error exists (stored function lookups, for example).
var ErrNotFound = errors.New("not found")

// MySQL server error numbers used by mapDBError.
const (
	errDupEntry         = 1062
	errRowIsReferenced  = 1451
	errNoReferencedRow  = 1452
	errRowIsReferenced2 = 1217
	errNoReferencedRow2 = 1216
)

func mysqlErrNumber(err error) (uint16, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number, true
	}
	return 0, false
}

// mapDBError converts driver errors into the sentinels above.  Other errors
// are wrapped with op so the log line says where they came from.
func mapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if n, ok := mysqlErrNumber(err); ok {
		switch n {
		case errDupEntry:
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		case errRowIsReferenced, errNoReferencedRow, errRowIsReferenced2, errNoReferencedRow2:
			return fmt.Errorf("%s: %w", op, ErrReferenced)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
