package docsynth

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// Only EINVALID aborts a run. Every other code is recovered from at the
// record or entry level it was raised for.
const (
	// EINVALID is a configuration error detected before any work starts.
	EINVALID = "invalid"

	// EFETCH is a network fetch failure for a single page.
	EFETCH = "fetch"

	// EPARSE is an extraction failure for a single page or file.
	EPARSE = "parse"

	// EAMBIGUOUS reports that a symbol identity was matched on a fuzzy rule.
	EAMBIGUOUS = "ambiguous"

	// ECOLLABORATOR is a failed or timed-out call to an external collaborator
	// during merge.
	ECOLLABORATOR = "collaborator"

	ENOTFOUND = "not_found"
	EINTERNAL = "internal"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("docsynth error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}
