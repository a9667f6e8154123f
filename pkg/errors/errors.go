package errors

import (
	"errors"
	"fmt"
)

// Common application errors with proper types for error handling

var (
	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceUnavailable indicates the spreadsheet source could not be read at all
	ErrSourceUnavailable = errors.New("spreadsheet source unavailable")

	// ErrSchema indicates the destination rejected a table definition
	ErrSchema = errors.New("schema error")
)

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// SourceUnavailableError wraps a source read failure
func SourceUnavailableError(source string, cause error) error {
	return fmt.Errorf("%s: %w: %w", source, ErrSourceUnavailable, cause)
}

// SchemaError wraps a destination DDL failure for the given table
func SchemaError(table string, cause error) error {
	return fmt.Errorf("reset table %q: %w: %w", table, ErrSchema, cause)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
