// Package apperror defines the error kinds the bot distinguishes when deciding
// what to tell the user: bad input, missing data, storage and transport failures.
package apperror

import (
	"errors"
	"fmt"
)

// ValidationError is returned when a receipt, item or recurring expense
// breaks a domain rule. Reason is safe to show to the user.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// NewValidationError is a shorthand constructor.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports an index or reference that no longer points at anything,
// typically because the list changed between display and selection.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// TransportError wraps a failure talking to the chat platform.
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StorageIOError wraps a failed or corrupt read/write of a data file.
type StorageIOError struct {
	Path string
	Op   string
	Err  error
}

func (e *StorageIOError) Error() string {
	return fmt.Sprintf("storage %s failed for '%s': %v", e.Op, e.Path, e.Err)
}

func (e *StorageIOError) Unwrap() error {
	return e.Err
}

// MalformedInputError is returned when free text (pasted JSON or an AI reply)
// cannot be decoded at all.
type MalformedInputError struct {
	Source  string
	Snippet string
	Err     error
}

func (e *MalformedInputError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("malformed %s input: %v. Snippet: '%s'", e.Source, e.Err, e.Snippet)
	}
	return fmt.Sprintf("malformed %s input: %v", e.Source, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsMalformed reports whether err wraps a MalformedInputError.
func IsMalformed(err error) bool {
	var target *MalformedInputError
	return errors.As(err, &target)
}

// IsStorage reports whether err wraps a StorageIOError.
func IsStorage(err error) bool {
	var target *StorageIOError
	return errors.As(err, &target)
}

// IsTransport reports whether err wraps a TransportError.
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// Snippet trims s to at most n runes for inclusion in error messages.
func Snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
