package sqlschema

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrTableNotFound is returned when a requested table does not exist
	// in the schema.
	ErrTableNotFound = errors.New("sqlschema: table not found")

	// ErrInvalidConfig indicates a construction-option error.
	ErrInvalidConfig = errors.New("sqlschema: invalid configuration")

	// ErrInvalidDocument indicates a malformed schema document.
	ErrInvalidDocument = errors.New("sqlschema: invalid schema document")
)

// TableNotFoundError represents an error when a table is not found.
type TableNotFoundError struct {
	name string
}

// Error returns the error string.
func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("sqlschema: table %q not found", e.name)
}

// Is reports whether the target error matches TableNotFoundError.
// This allows errors.Is(err, ErrTableNotFound) to return true.
func (e *TableNotFoundError) Is(err error) bool {
	return err == ErrTableNotFound
}

// Name returns the table name that was looked up.
func (e *TableNotFoundError) Name() string {
	return e.name
}

// NewTableNotFoundError returns a new TableNotFoundError for the given
// table name.
func NewTableNotFoundError(name string) *TableNotFoundError {
	return &TableNotFoundError{name: name}
}

// IsTableNotFound returns true if the error is a TableNotFoundError.
func IsTableNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *TableNotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrTableNotFound)
}

// ConfigError represents a schema construction-option error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error returns the error string.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("sqlschema: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("sqlschema: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target error matches ConfigError.
func (e *ConfigError) Is(err error) bool {
	return err == ErrInvalidConfig
}

// NewConfigError returns a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidConfig)
}

// DocumentError wraps a schema document read, parse or write failure with
// the document path.
type DocumentError struct {
	Path string
	Err  error
}

// Error returns the error string.
func (e *DocumentError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("sqlschema: document %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("sqlschema: document: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches DocumentError.
func (e *DocumentError) Is(err error) bool {
	return err == ErrInvalidDocument
}

// NewDocumentError returns a new DocumentError.
func NewDocumentError(path string, err error) *DocumentError {
	return &DocumentError{Path: path, Err: err}
}

// IsDocumentError returns true if the error is a DocumentError.
func IsDocumentError(err error) bool {
	if err == nil {
		return false
	}
	var e *DocumentError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidDocument)
}
