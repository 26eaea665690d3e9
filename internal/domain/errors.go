package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrInvalidURL indicates a missing or malformed cursor/resource URL
	ErrInvalidURL = errors.New("invalid url")

	// ErrNoData indicates the transport produced no usable response body
	ErrNoData = errors.New("no data in response")

	// ErrDecoding indicates the response body did not match the expected schema
	ErrDecoding = errors.New("failed to decode response")

	// ErrStorage indicates a local store read or write failed
	ErrStorage = errors.New("storage failure")

	// ErrCharacterNotFound indicates the requested local record does not exist
	ErrCharacterNotFound = errors.New("character not found")

	// ErrFetchInFlight is returned when a page fetch is already outstanding
	ErrFetchInFlight = errors.New("page fetch already in flight")

	// ErrExhausted is returned when the remote listing has no more pages
	ErrExhausted = errors.New("no more pages")

	// ErrEmptyName is returned when renaming a record to a blank name
	ErrEmptyName = errors.New("display name must not be empty")
)

// StorageError wraps a failure from the local store with the operation name.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorage) match any StorageError.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NewStorageError wraps err, leaving nil and existing StorageErrors alone.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
