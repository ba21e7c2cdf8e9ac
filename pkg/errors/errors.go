// Package errors provides custom error types for the vercheck system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As mirror the standard library so callers need a single errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Common sentinel errors for the vercheck system
var (
	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnparsableVersion indicates a version string outside every recognized grammar
	ErrUnparsableVersion = errors.New("unparsable version")

	// ErrPackaging indicates an unexpected failure while handling a dependency's metadata
	ErrPackaging = errors.New("packaging error")

	// ErrNotLoadable indicates that a module could not be loaded for inspection
	ErrNotLoadable = errors.New("module not loadable")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")
)

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// UnparsableVersionError reports a version string that matches no known grammar.
// It is always recoverable: callers skip the comparison instead of failing.
type UnparsableVersionError struct {
	Version string
}

// Error implements the error interface
func (e *UnparsableVersionError) Error() string {
	return fmt.Sprintf("irrational version number %q", e.Version)
}

// Is implements errors.Is support
func (e *UnparsableVersionError) Is(target error) bool {
	return target == ErrUnparsableVersion
}

// NewUnparsableVersionError creates a new UnparsableVersionError
func NewUnparsableVersionError(version string) *UnparsableVersionError {
	return &UnparsableVersionError{Version: version}
}

// PackagingError represents an unexpected failure while normalizing or
// reconciling the metadata of one dependency.
type PackagingError struct {
	What string // what was being parsed, usually the dependency name
	Err  error
}

// Error implements the error interface
func (e *PackagingError) Error() string {
	return fmt.Sprintf("could not parse %s due to %s: %v", e.What, TypeName(e.Err), e.Err)
}

// Unwrap implements errors.Unwrap
func (e *PackagingError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *PackagingError) Is(target error) bool {
	return target == ErrPackaging
}

// NewPackagingError creates a new PackagingError
func NewPackagingError(what string, err error) *PackagingError {
	return &PackagingError{What: what, Err: err}
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

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnparsableVersion checks if an error reports an unparsable version
func IsUnparsableVersion(err error) bool {
	return errors.Is(err, ErrUnparsableVersion)
}

// IsPackaging checks if an error is a packaging error
func IsPackaging(err error) bool {
	return errors.Is(err, ErrPackaging)
}

// IsNotLoadable checks if an error reports a module that could not be loaded
func IsNotLoadable(err error) bool {
	return errors.Is(err, ErrNotLoadable)
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "go.mod", etc.
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

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close"
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

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "build", "load", "resolve", "write"
	Resource  string // "snapshot", "manifest", "config", "metrics"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// ProcessError represents an error from an external process or command
type ProcessError struct {
	Operation string // What operation was being performed
	Command   string // The command that was executed
	Output    string // Stdout/stderr output from the process
	ExitCode  int    // Exit code if available
	Err       error  // Underlying error
}

// Error implements the error interface
func (e *ProcessError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("process error during %s (command: %s): %v\nOutput: %s", e.Operation, e.Command, e.Err, e.Output)
	}
	return fmt.Sprintf("process error during %s (command: %s): %v", e.Operation, e.Command, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ProcessError) Unwrap() error {
	return e.Err
}

// NewProcessError creates a new ProcessError
func NewProcessError(operation, command, output string, err error) *ProcessError {
	return &ProcessError{
		Operation: operation,
		Command:   command,
		Output:    output,
		Err:       err,
	}
}

// TypeName returns the dynamic type name of an error, without the pointer
// marker, for use in human readable messages.
func TypeName(err error) string {
	if err == nil {
		return "nil"
	}
	name := fmt.Sprintf("%T", err)
	if len(name) > 0 && name[0] == '*' {
		name = name[1:]
	}
	return name
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Message: err.Error(), Err: err}
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}
