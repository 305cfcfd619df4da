package tool

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds carried by dispatcher responses and registry failures.
const (
	// KindNotFound is returned for unknown tools, resources, prompts, or files.
	KindNotFound = "NOT_FOUND"
	// KindInvalidArguments is returned when a request violates a parameter schema.
	KindInvalidArguments = "INVALID_ARGUMENTS"
	// KindHandlerError is returned when a handler fails or panics.
	KindHandlerError = "HANDLER_ERROR"
	// KindDuplicateName is returned at registration time only; it is fatal to startup.
	KindDuplicateName = "DUPLICATE_NAME"
)

// Error is a structured failure that can flow from the registry or a handler
// through the dispatcher and onto the wire without losing its kind.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	kind := strings.TrimSpace(e.Kind)
	msg := strings.TrimSpace(e.Message)
	switch {
	case kind == "" && msg == "":
		return KindHandlerError
	case kind == "":
		return msg
	case msg == "":
		return kind
	default:
		return fmt.Sprintf("%s: %s", kind, msg)
	}
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError builds a structured error with the given kind.
func NewError(kind, message string, cause error) *Error {
	cleanKind := strings.TrimSpace(kind)
	if cleanKind == "" {
		cleanKind = KindHandlerError
	}
	cleanMsg := strings.TrimSpace(message)
	if cleanMsg == "" && cause != nil {
		cleanMsg = cause.Error()
	}
	return &Error{Kind: cleanKind, Message: cleanMsg, Cause: cause}
}

// NotFoundError reports a missing tool, resource, prompt, or file.
func NotFoundError(format string, args ...any) *Error {
	return NewError(KindNotFound, fmt.Sprintf(format, args...), nil)
}

// InvalidArgumentsError reports the first violated schema constraint.
func InvalidArgumentsError(format string, args ...any) *Error {
	return NewError(KindInvalidArguments, fmt.Sprintf(format, args...), nil)
}

// HandlerError wraps a failure raised inside a handler.
func HandlerError(cause error) *Error {
	return NewError(KindHandlerError, "", cause)
}

// DuplicateNameError reports a registration-time name collision.
func DuplicateNameError(format string, args ...any) *Error {
	return NewError(KindDuplicateName, fmt.Sprintf(format, args...), nil)
}

// HTTPStatus maps an error kind to the wire status the server responds with.
func HTTPStatus(kind string) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArguments:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// AsError coerces any handler failure into a structured Error. Failures that
// are not already structured become HANDLER_ERROR.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var structured *Error
	if errors.As(err, &structured) {
		return structured
	}
	return HandlerError(err)
}
