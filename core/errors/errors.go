// Package errors provides the error taxonomy shared by the OSM codecs and the corpus tools.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the codec failure classes.
var (
	// ErrMalformedAlignment indicates an odd-length link list or an index outside the sentence bounds
	ErrMalformedAlignment = errors.New("malformed alignment")
	// ErrEmptyAlignment indicates an empty alignment for a non-empty target sentence.
	// It is a warning: the normalizer still returns a usable fallback.
	ErrEmptyAlignment = errors.New("empty alignment")
	// ErrJumpOutOfRange indicates a jump that would leave the compiled array or the source sentence
	ErrJumpOutOfRange = errors.New("jump out of range")
	// ErrFertilityMismatch indicates decoded counts that disagree with the declared fertilities
	ErrFertilityMismatch = errors.New("fertility mismatch")
	// ErrMalformedSequence indicates an operation sequence that cannot be produced by the encoder
	ErrMalformedSequence = errors.New("malformed operation sequence")
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// AlignmentError describes a malformed alignment link.
type AlignmentError struct {
	Link    int    // Index of the offending link, -1 if not applicable
	Message string // What is wrong with it
}

func (e *AlignmentError) Error() string {
	if e.Link >= 0 {
		return fmt.Sprintf("malformed alignment: link %d: %s", e.Link, e.Message)
	}
	return fmt.Sprintf("malformed alignment: %s", e.Message)
}

func (e *AlignmentError) Unwrap() error {
	return ErrMalformedAlignment
}

// JumpError reports a jump that stepped past the available cells.
type JumpError struct {
	Op       int    // Position of the jump in the operation sequence
	Token    string // The jump token as it appeared in the input
	Head     int    // Head position before the jump
	Boundary int    // Number of cells (or source positions) available
}

func (e *JumpError) Error() string {
	return fmt.Sprintf("jump out of range: op %d (%s) from head %d with %d cells", e.Op, e.Token, e.Head, e.Boundary)
}

func (e *JumpError) Unwrap() error {
	return ErrJumpOutOfRange
}

// FertilityError reports a disagreement between decoded and declared fertilities.
type FertilityError struct {
	Position int // Source (or phrase) position, -1 for a length mismatch
	Got      int
	Want     int
}

func (e *FertilityError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("fertility mismatch: decoded %d source positions, want %d", e.Got, e.Want)
	}
	return fmt.Sprintf("fertility mismatch at position %d: got %d, want %d", e.Position, e.Got, e.Want)
}

func (e *FertilityError) Unwrap() error {
	return ErrFertilityMismatch
}

// SequenceError reports an operation that is invalid in its decoding context.
type SequenceError struct {
	Op      int
	Token   string
	Message string
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("malformed operation sequence: op %d (%s): %s", e.Op, e.Token, e.Message)
}

func (e *SequenceError) Unwrap() error {
	return ErrMalformedSequence
}

// LineError attaches a 1-based corpus line number to a per-sentence failure.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "alignment", "profile")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewAlignment creates an AlignmentError for the link at index link (-1 for none).
func NewAlignment(link int, format string, args ...interface{}) *AlignmentError {
	return &AlignmentError{Link: link, Message: fmt.Sprintf(format, args...)}
}

// NewSequence creates a SequenceError
func NewSequence(op int, token, message string) *SequenceError {
	return &SequenceError{Op: op, Token: token, Message: message}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// AtLine wraps err with a 1-based line number. If err is nil, returns nil.
func AtLine(line int, err error) error {
	if err == nil {
		return nil
	}
	return &LineError{Line: line, Err: err}
}

// Kind returns a short stable name for the failure class of err,
// used as a column in run reports and as a log attribute.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedAlignment):
		return "malformed_alignment"
	case errors.Is(err, ErrEmptyAlignment):
		return "empty_alignment"
	case errors.Is(err, ErrJumpOutOfRange):
		return "jump_out_of_range"
	case errors.Is(err, ErrFertilityMismatch):
		return "fertility_mismatch"
	case errors.Is(err, ErrMalformedSequence):
		return "malformed_sequence"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnsupported):
		return "unsupported"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "unknown"
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
