// Package domainerrors provides coded errors for the dispatch engine.
//
// Every error the engine surfaces to callers carries a Code so callers can branch
// on the failure kind without string matching:
//
//	if dErrors.HasCode(err, dErrors.CodeNoImplementation) {
//	    // fall back to a default
//	}
//
// Errors raised by implementations themselves are never wrapped into this type.
package domainerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies a failure kind.
type Code string

const (
	// CodeNoImplementation: the lookup chain was exhausted without a match.
	CodeNoImplementation Code = "no_implementation"
	// CodeAmbiguous: several candidates tied at the best rank under strict resolution.
	CodeAmbiguous Code = "ambiguous"
	// CodeReadBeforeReady: a selection was read before its harvest sequence finished.
	CodeReadBeforeReady Code = "read_before_ready"
	// CodeInvalidInput: a registration or call value was rejected by an axis.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound: a named resource (context, instance, record) does not exist.
	CodeNotFound Code = "not_found"
	// CodeInternal: an invariant of the engine was broken.
	CodeInternal Code = "internal"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so sentinel-style comparisons work:
//
//	errors.Is(err, dErrors.New(dErrors.CodeAmbiguous, ""))
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to a cause. A nil cause returns nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in the chain carries code.
func HasCode(err error, code Code) bool {
	var e *Error
	for err != nil {
		if errors.As(err, &e) {
			if e.Code == code {
				return true
			}
			err = e.Err
			continue
		}
		return false
	}
	return false
}

// CodeOf returns the outermost code in the chain, or CodeInternal for uncoded errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is is errors.Is, re-exported so callers need a single import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// NoImplementation builds the diagnostic error raised when a dispatch point has no
// implementation for the given call arguments anywhere in the lookup chain.
func NoImplementation(point string, args any) error {
	return &Error{
		Code:    CodeNoImplementation,
		Message: fmt.Sprintf("no implementation of %q for arguments %s", point, formatArgs(args)),
	}
}

// Ambiguous builds the error raised when strict resolution finds a tie.
func Ambiguous(point string, names []string) error {
	return &Error{
		Code:    CodeAmbiguous,
		Message: fmt.Sprintf("%q resolves to %d equally specific implementations: %s", point, len(names), strings.Join(names, ", ")),
	}
}

func formatArgs(args any) string {
	s := fmt.Sprintf("%+v", args)
	if len(s) > 256 {
		return s[:253] + "..."
	}
	return s
}
