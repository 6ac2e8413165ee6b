// Package errors provides the error taxonomy shared by the conversion and
// reconciliation pipelines. Configuration and parse errors are fatal;
// fetch failures and lookup misses are recovered and only logged.
package errors

import (
	"errors"
	"fmt"
)

// New is errors.New, re-exported so callers need a single import.
var New = errors.New

// Sentinel errors for errors.Is checks.
var (
	// ErrConfiguration marks a fatal problem detected before processing starts.
	ErrConfiguration = errors.New("configuration error")

	// ErrParse marks a fatal problem in the input data.
	ErrParse = errors.New("parse error")

	// ErrFetch marks a failed or non-successful fetch.
	ErrFetch = errors.New("fetch failed")

	// ErrNotFound marks a lookup against an unknown key.
	ErrNotFound = errors.New("not found")

	// ErrMissingField marks a required field absent from a record or document.
	ErrMissingField = errors.New("missing field")
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, msg)
	}
	return fmt.Sprintf("configuration error: %s", msg)
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
	return &ConfigError{Component: component, Message: message, Err: err}
}

// ParseError reports malformed input at a specific line.
type ParseError struct {
	Path string
	Line int
	Err  error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("file %s, line %d: %v", e.Path, e.Line, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// NewParseError creates a new ParseError
func NewParseError(path string, line int, err error) *ParseError {
	return &ParseError{Path: path, Line: line, Err: err}
}

// FetchError represents a fetch that did not return a successful status.
// StatusCode is zero when the request never produced a response.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("unable to get data from %s: %s", e.URL, e.Status)
	}
	return fmt.Sprintf("unable to get data from %s: %v", e.URL, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// NotFoundError represents a lookup miss against the canonical store.
type NotFoundError struct {
	Resource string
	Key      string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

// MissingFieldError reports a required field that could not be found.
type MissingFieldError struct {
	Field string
	Query string
}

// Error implements the error interface
func (e *MissingFieldError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("required field %s not found (query %q)", e.Field, e.Query)
	}
	return fmt.Sprintf("required field %s not found", e.Field)
}

// Is implements errors.Is support
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsParse checks if an error is a parse error
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsFetch checks if an error is a fetch error
func IsFetch(err error) bool {
	return errors.Is(err, ErrFetch)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMissingField checks if an error is a missing field error
func IsMissingField(err error) bool {
	return errors.Is(err, ErrMissingField)
}

// Is and As forward to the standard library.
var (
	Is = errors.Is
	As = errors.As
)
