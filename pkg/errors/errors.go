// Package errors provides custom error types for the supplymap system.
//
// Errors fall into three kinds. Configuration errors (unknown supplier,
// invalid registry, missing staging binding) abort an operation before any
// data is touched. Soft data errors (validation, missing identity, a supplier
// whose staging store could not be read) are collected on run results and
// never abort a run. Hard transactional errors (store failures) abort and
// roll back the operation in flight.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As are the standard library functions, re-exported so callers need
// only this package.
var (
	Is = errors.Is
	As = errors.As
)

// Common sentinel errors for the supplymap system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration marks every configuration error
	ErrConfiguration = errors.New("configuration error")

	// ErrUnknownSupplier indicates a supplier key absent from the registry
	ErrUnknownSupplier = errors.New("unknown supplier")

	// ErrSupplierDisabled indicates an operation targeted a disabled supplier
	ErrSupplierDisabled = errors.New("supplier disabled")

	// ErrNoIdentity indicates a record carries none of the identifier fields
	ErrNoIdentity = errors.New("no identity")

	// ErrDuplicate indicates a supplier offered the same identity twice
	ErrDuplicate = errors.New("duplicate identity")

	// ErrMalformedRow indicates an input row could not be read as a record
	ErrMalformedRow = errors.New("malformed row")

	// ErrSupplierUnavailable indicates a supplier's staging store could not be read
	ErrSupplierUnavailable = errors.New("supplier unavailable")

	// ErrStoreUnavailable indicates the backing store could not be reached
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConstraint indicates the store rejected a write
	ErrConstraint = errors.New("constraint violation")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrNotImplemented indicates that a feature is not yet implemented
	ErrNotImplemented = errors.New("not implemented")

	// ErrLocked indicates another run holds the run lock
	ErrLocked = errors.New("run locked")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// UnknownSupplierError is returned when a supplier key is not registered.
type UnknownSupplierError struct {
	Key string
}

// Error implements the error interface
func (e *UnknownSupplierError) Error() string {
	return fmt.Sprintf("unknown supplier %q", e.Key)
}

// Is implements errors.Is support
func (e *UnknownSupplierError) Is(target error) bool {
	return target == ErrUnknownSupplier || target == ErrConfiguration || target == ErrNotFound
}

// NewUnknownSupplierError creates a new UnknownSupplierError
func NewUnknownSupplierError(key string) *UnknownSupplierError {
	return &UnknownSupplierError{Key: key}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ValidationError represents a validation failure.
// Value holds the rejected value; for required-field checks that is the
// whole merged record.
type ValidationError struct {
	Identity string
	Field    string
	Value    any
	Message  string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed")
	if e.Identity != "" {
		fmt.Fprintf(&b, " for %s", e.Identity)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " on field %s", e.Field)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	return b.String()
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// IdentityError reports a record skipped because it had no identity.
type IdentityError struct {
	Supplier string
	Row      int
}

// Error implements the error interface
func (e *IdentityError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("supplier %s row %d: no identifying field", e.Supplier, e.Row)
	}
	return fmt.Sprintf("supplier %s: record has no identifying field", e.Supplier)
}

// Is implements errors.Is support
func (e *IdentityError) Is(target error) bool {
	return target == ErrNoIdentity
}

// NewIdentityError creates a new IdentityError
func NewIdentityError(supplier string, row int) *IdentityError {
	return &IdentityError{Supplier: supplier, Row: row}
}

// DuplicateError reports a second record for an identity within one supplier.
type DuplicateError struct {
	Supplier string
	Identity string
}

// Error implements the error interface
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("supplier %s: duplicate record for %s ignored", e.Supplier, e.Identity)
}

// Is implements errors.Is support
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// MalformedRowError reports an input row that could not be read.
type MalformedRowError struct {
	Row     int
	Message string
}

// Error implements the error interface
func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// Is implements errors.Is support
func (e *MalformedRowError) Is(target error) bool {
	return target == ErrMalformedRow
}

// NewMalformedRowError creates a new MalformedRowError
func NewMalformedRowError(row int, format string, args ...any) *MalformedRowError {
	return &MalformedRowError{Row: row, Message: fmt.Sprintf(format, args...)}
}

// SupplierUnavailableError reports a supplier whose staging data could not be loaded.
type SupplierUnavailableError struct {
	Supplier string
	Err      error
}

// Error implements the error interface
func (e *SupplierUnavailableError) Error() string {
	return fmt.Sprintf("supplier %s unavailable: %v", e.Supplier, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SupplierUnavailableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *SupplierUnavailableError) Is(target error) bool {
	return target == ErrSupplierUnavailable
}

// MergeError represents an error while merging one identity group
type MergeError struct {
	Identity  string
	Suppliers []string
	Err       error
}

// Error implements the error interface
func (e *MergeError) Error() string {
	if len(e.Suppliers) > 0 {
		return fmt.Sprintf("merge error for %s (suppliers: %v): %v", e.Identity, e.Suppliers, e.Err)
	}
	return fmt.Sprintf("merge error for %s: %v", e.Identity, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *MergeError) Unwrap() error {
	return e.Err
}

// NewMergeError creates a new MergeError
func NewMergeError(identity string, suppliers []string, err error) *MergeError {
	return &MergeError{
		Identity:  identity,
		Suppliers: suppliers,
		Err:       err,
	}
}

// StoreError represents a failure of the backing store.
type StoreError struct {
	Operation string // "load", "upsert", "truncate", "begin", "commit"
	Table     string
	Key       string
	Err       error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("store %s %s[%s]: %v", e.Operation, e.Table, e.Key, e.Err)
	case e.Table != "":
		return fmt.Sprintf("store %s %s: %v", e.Operation, e.Table, e.Err)
	default:
		return fmt.Sprintf("store %s: %v", e.Operation, e.Err)
	}
}

// Unwrap implements errors.Unwrap
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError
func NewStoreError(operation, table, key string, err error) *StoreError {
	return &StoreError{Operation: operation, Table: table, Key: key, Err: err}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "csv"
	File    string
	Line    int
	Column  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d:%d: %s", e.Format, e.File, e.Line, e.Column, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnknownSupplier checks if an error names an unregistered supplier
func IsUnknownSupplier(err error) bool {
	return errors.Is(err, ErrUnknownSupplier)
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsSoft reports whether err is a per-record data error that a run collects
// instead of aborting on.
func IsSoft(err error) bool {
	if err == nil || IsConfig(err) {
		return false
	}
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNoIdentity) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrMalformedRow) ||
		errors.Is(err, ErrSupplierUnavailable) ||
		errors.As(err, new(*MergeError))
}

// IsHard reports whether err is a store failure that aborts the transaction.
func IsHard(err error) bool {
	if err == nil {
		return false
	}
	return errors.As(err, new(*StoreError)) || errors.Is(err, ErrStoreUnavailable)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapStore wraps an error as a StoreError
func WrapStore(operation, table, key string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return NewStoreError(operation, table, key, err)
}
