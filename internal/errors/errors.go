package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrMultipleJSON    = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i")
	ErrInvalidFilePath = errors.New("invalid file path")

	// Tree mutation errors
	ErrUnknownKey   = errors.New("no entry with that key")
	ErrReadOnly     = errors.New("entry is read-only")
	ErrNotContainer = errors.New("value is not an object or array")
	ErrNotSupported = errors.New("operation not supported on this container")
	ErrBadIndex     = errors.New("key is neither an entry key nor a valid array index")
	ErrStaleNode    = errors.New("node has been destroyed")
	ErrInvariant    = errors.New("tree invariant violated")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput     ErrorType = "input"
	ErrorTypeParsing   ErrorType = "parsing"
	ErrorTypeMutation  ErrorType = "mutation"
	ErrorTypeContract  ErrorType = "contract"
	ErrorTypeInvariant ErrorType = "invariant"
	ErrorTypeDraft     ErrorType = "draft"
	ErrorTypeOutput    ErrorType = "output"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInput, Message: message, Err: err}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeParsing, Message: message, Err: err}
}

// NewMutationError creates an error for an edit the tree refused. These
// are local to the attempted operation and leave the tree unchanged.
func NewMutationError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeMutation, Message: message, Err: err}
}

// NewContractError creates an error for a caller that broke the tree's
// API contract, for example removing an array entry by a key that is not
// an index.
func NewContractError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeContract, Message: message, Err: err}
}

// NewInvariantError creates an error for a tree whose displayed state no
// longer matches its value. This is always a defect.
func NewInvariantError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInvariant, Message: message, Err: err}
}

// NewDraftError creates a new error related to recovery drafts
func NewDraftError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeDraft, Message: message, Err: err}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeOutput, Message: message, Err: err}
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeMutation:
			return fmt.Sprintf("Edit rejected: %s", appErr.Message)
		case ErrorTypeContract:
			return fmt.Sprintf("Internal error (bad call): %s", appErr.Message)
		case ErrorTypeInvariant:
			return fmt.Sprintf("Internal error (tree out of sync): %s", appErr.Message)
		case ErrorTypeDraft:
			return fmt.Sprintf("Draft error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON document."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}

	return fmt.Sprintf("Error: %v", err)
}
