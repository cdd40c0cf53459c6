package reconcile

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when neither an email nor a phone number is supplied.
var ErrInvalidInput = errors.New("must supply email or phoneNumber")

// StorageError wraps any failure talking to the contact store.
type StorageError struct {
	// Op names the step that failed (e.g. "find matches", "insert secondary").
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
