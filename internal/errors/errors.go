// Package errors provides standardized error types for the caddyman CLI tool.
//
// The errors package defines domain-specific error types that enable
// structured error handling and consistent error messages throughout
// the application. The core packages return these errors; the CLI layer
// is responsible for rendering them.
//
// # Error Types
//
// BlockError is the primary error type, containing:
//   - Code: Categorizes the error (NOT_FOUND, ALREADY_EXISTS, etc.)
//   - Message: Human-readable error description
//   - Name: The block name involved (if applicable)
//   - Detail: Extra text for the user (existing block, validator output)
//   - Err: The underlying wrapped error (if any)
//
// # Sentinel Errors
//
// Common error scenarios have pre-defined sentinel errors:
//
//	errors.ErrBlockNotFound      // block doesn't exist
//	errors.ErrBlockExists        // block already exists
//	errors.ErrPrecondition       // Caddyfile missing, email unset
//	errors.ErrValidationFailed   // validator rejected the new file (rolled back)
//	errors.ErrReloadFailed       // file changed but reload failed (not rolled back)
//	errors.ErrBackupFailed       // snapshot could not be written
//
// # Usage
//
//	// Block not found
//	return errors.NotFound("example.com")
//
//	// Block already exists, carrying its current text
//	return errors.AlreadyExists("example.com", existing.Raw)
//
//	// Wrapping an underlying error
//	return errors.Wrap(errors.ErrCodeBackup, "failed to snapshot Caddyfile", err)
//
// # Error Checking
//
// Use errors.Is for sentinel error comparison (matches on code):
//
//	if errors.Is(err, errors.ErrBlockNotFound) {
//	    // nothing to do
//	}
//
// Use errors.As to get at the detail:
//
//	var blockErr *errors.BlockError
//	if errors.As(err, &blockErr) {
//	    fmt.Println(blockErr.Detail)
//	}
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"         // Block not found
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"    // Block already exists
	ErrCodePrecondition  ErrorCode = "PRECONDITION"      // Missing file or mandatory setting
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"     // Input validation failed
	ErrCodeValidation    ErrorCode = "VALIDATION_FAILED" // Validator rejected the Caddyfile
	ErrCodeReload        ErrorCode = "RELOAD_FAILED"     // Reload of the live service failed
	ErrCodeBackup        ErrorCode = "BACKUP_FAILED"     // Snapshot could not be written
	ErrCodeLocked        ErrorCode = "LOCKED"            // Another process holds the lock
	ErrCodeMalformed     ErrorCode = "MALFORMED"         // Caddyfile braces do not balance
	ErrCodeInternal      ErrorCode = "INTERNAL"          // Internal/unexpected error
)

// BlockError represents a structured error with context about the operation.
type BlockError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Name    string    // Block name (if applicable)
	Detail  string    // Verbatim detail for the user (if any)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *BlockError) Error() string {
	msg := e.Message
	if e.Name != "" {
		msg = fmt.Sprintf("block %s: %s", e.Name, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain traversal.
func (e *BlockError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *BlockError) Is(target error) bool {
	t, ok := target.(*BlockError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for common error scenarios.
// Use these with errors.Is() for error checking.
var (
	// ErrBlockNotFound indicates the requested block does not exist.
	ErrBlockNotFound = &BlockError{Code: ErrCodeNotFound, Message: "block not found"}

	// ErrBlockExists indicates a block with the same name already exists.
	ErrBlockExists = &BlockError{Code: ErrCodeAlreadyExists, Message: "block already exists"}

	// ErrPrecondition indicates a missing file or unset mandatory option.
	ErrPrecondition = &BlockError{Code: ErrCodePrecondition, Message: "precondition failed"}

	// ErrInvalidInput indicates a name, kind or target is not valid.
	ErrInvalidInput = &BlockError{Code: ErrCodeInvalidInput, Message: "invalid input"}

	// ErrValidationFailed indicates the validator rejected the new file.
	// The original file has been restored.
	ErrValidationFailed = &BlockError{Code: ErrCodeValidation, Message: "validation failed"}

	// ErrReloadFailed indicates the file changed but the service was not reloaded.
	ErrReloadFailed = &BlockError{Code: ErrCodeReload, Message: "reload failed"}

	// ErrBackupFailed indicates the snapshot could not be written.
	ErrBackupFailed = &BlockError{Code: ErrCodeBackup, Message: "backup failed"}

	// ErrLocked indicates another process is mutating the Caddyfile.
	ErrLocked = &BlockError{Code: ErrCodeLocked, Message: "Caddyfile is locked by another process"}

	// ErrMalformed indicates unbalanced braces in the Caddyfile.
	ErrMalformed = &BlockError{Code: ErrCodeMalformed, Message: "malformed Caddyfile"}
)

// NotFound creates an error for a block that doesn't exist.
func NotFound(name string) error {
	return &BlockError{
		Code:    ErrCodeNotFound,
		Message: "block not found",
		Name:    name,
	}
}

// AlreadyExists creates an error for a block that already exists.
// existing is the current text of the block so the caller can offer an edit.
func AlreadyExists(name, existing string) error {
	return &BlockError{
		Code:    ErrCodeAlreadyExists,
		Message: "block already exists",
		Name:    name,
		Detail:  existing,
	}
}

// Precondition creates a fatal precondition error.
func Precondition(msg string) error {
	return &BlockError{
		Code:    ErrCodePrecondition,
		Message: msg,
	}
}

// InvalidInput creates a validation error with a custom message.
func InvalidInput(msg string) error {
	return &BlockError{
		Code:    ErrCodeInvalidInput,
		Message: msg,
	}
}

// ValidationFailed creates an error carrying the validator's diagnostic verbatim.
func ValidationFailed(diagnostic string, err error) error {
	return &BlockError{
		Code:    ErrCodeValidation,
		Message: "configuration rejected by validator, original file restored",
		Detail:  diagnostic,
		Err:     err,
	}
}

// ReloadFailed creates an error for a valid, committed file the service did not pick up.
func ReloadFailed(err error) error {
	return &BlockError{
		Code:    ErrCodeReload,
		Message: "Caddyfile was updated but the service was not reloaded",
		Err:     err,
	}
}

// Malformed creates an error for unbalanced braces at the given 1-based line.
func Malformed(line int, msg string) error {
	return &BlockError{
		Code:    ErrCodeMalformed,
		Message: fmt.Sprintf("line %d: %s", line, msg),
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &BlockError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// DetailOf returns the Detail of the first BlockError in err's chain.
func DetailOf(err error) string {
	var blockErr *BlockError
	if errors.As(err, &blockErr) {
		return blockErr.Detail
	}
	return ""
}

// CodeOf returns the code of the first BlockError in err's chain,
// or ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var blockErr *BlockError
	if errors.As(err, &blockErr) {
		return blockErr.Code
	}
	return ErrCodeInternal
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As
