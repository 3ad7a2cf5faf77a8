package errors

import (
	"errors"
	"fmt"
)

// Common error types for categorization and handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")

	// ErrServiceUnavailable indicates a required service is unavailable
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrDatabaseOperation indicates a database operation failed
	ErrDatabaseOperation = errors.New("database operation failed")

	// ErrEmbedding indicates the embedding backend failed
	ErrEmbedding = errors.New("embedding request failed")

	// ErrIndexNotBuilt indicates a lookup was attempted before any knowledge was loaded
	ErrIndexNotBuilt = errors.New("knowledge index not built")

	// ErrEmptyCollection indicates the knowledge source returned no entries
	ErrEmptyCollection = errors.New("knowledge collection is empty")

	// ErrMalformedEntry indicates an entry carries an FAQ marker that does not parse
	ErrMalformedEntry = errors.New("malformed knowledge entry")

	// ErrNeighborServiceUnavailable indicates the nearest-neighbor backend could not answer
	ErrNeighborServiceUnavailable = errors.New("neighbor service unavailable")
)

// WrapError wraps an error with context message and stack
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput checks if error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsServiceUnavailable checks if error is a service unavailable error.
// Neighbor backend outages count as service unavailability.
func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrNeighborServiceUnavailable)
}

// IsIndexNotBuilt checks if error means no knowledge has been loaded yet
func IsIndexNotBuilt(err error) bool {
	return errors.Is(err, ErrIndexNotBuilt)
}

// IsMalformedEntry checks if error reports an unparseable knowledge entry
func IsMalformedEntry(err error) bool {
	return errors.Is(err, ErrMalformedEntry)
}

// IsEmptyCollection checks if error reports an empty knowledge source
func IsEmptyCollection(err error) bool {
	return errors.Is(err, ErrEmptyCollection)
}
