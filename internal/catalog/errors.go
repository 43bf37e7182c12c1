package catalog

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// StorageError is a failure reported by the storage engine. Code and
// ExtendedCode carry the SQLite result codes when the engine supplied them.
type StorageError struct {
	Op           string
	Code         sqlite3.ErrNo
	ExtendedCode sqlite3.ErrNoExtended
	Err          error
}

func (e *StorageError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("catalog: %s: %v (code %d)", e.Op, e.Err, e.Code)
	}
	return fmt.Sprintf("catalog: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// storageError wraps err with the operation name and the engine codes.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	se := &StorageError{Op: op, Err: err}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		se.Code = sqliteErr.Code
		se.ExtendedCode = sqliteErr.ExtendedCode
	}
	return se
}

// IsUniqueViolation reports whether err is a UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
