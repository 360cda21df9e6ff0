package domain

import "errors"

var (
	ErrNotFound          = errors.New("account not found")
	ErrDuplicateAccount  = errors.New("account number already exists")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotActive  = errors.New("account not active")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSameAccount       = errors.New("cannot transfer to the same account")
	ErrStorageFailure    = errors.New("storage failure")
)

// StorageError wraps an underlying persistence error so that callers can
// match it with errors.Is(err, ErrStorageFailure) while the driver cause
// stays reachable through errors.Unwrap.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err as a storage failure during op.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return "storage failure: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageFailure }
