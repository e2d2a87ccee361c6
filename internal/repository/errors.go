package repository

import (
	"errors"
)

// ErrNotConnected is returned by every operation of a store that has no
// database handle.
var ErrNotConnected = errors.New("storage not connected")

// StorageError wraps any failure reported by the underlying executor.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// wrapStorage tags err with op unless it already is a StorageError, so a
// failure deep in an upsert chain surfaces with its original operation.
func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
