// Package exceptions is a flat taxonomy of named error kinds. Every kind
// carries a default message and a status code; errors built from a kind add
// a message, an optional cause and the stack they were created on.
//
//	err := exceptions.NotFound.Wrap(cause, "note missing")
//	errors.Is(err, exceptions.NotFound) // true
//	exceptions.StatusCode(err)          // 404
package exceptions

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
)

// Kind names a class of errors.
type Kind struct {
	Name           string
	DefaultMessage string
	Status         int
}

// NewKind creates a kind. A zero status means 500.
func NewKind(name, defaultMessage string, status int) *Kind {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &Kind{Name: name, DefaultMessage: defaultMessage, Status: status}
}

// Error lets a Kind be used as an errors.Is target.
func (k *Kind) Error() string {
	return k.Name
}

// New creates an error of this kind. The message is the arguments joined
// with fmt.Sprint, or the kind's default message when there are none.
func (k *Kind) New(msg ...any) *Error {
	return k.build(nil, msg)
}

// Newf creates an error of this kind with a formatted message.
func (k *Kind) Newf(format string, args ...any) *Error {
	return k.build(nil, []any{fmt.Sprintf(format, args...)})
}

// Wrap creates an error of this kind caused by cause.
func (k *Kind) Wrap(cause error, msg ...any) *Error {
	return k.build(cause, msg)
}

func (k *Kind) build(cause error, msg []any) *Error {
	message := k.DefaultMessage
	if len(msg) > 0 {
		message = fmt.Sprint(msg...)
	}
	return &Error{Kind: k, Message: message, Cause: cause, stack: string(debug.Stack())}
}

// Error is an error of a Kind.
type Error struct {
	Kind    *Kind
	Message string
	Cause   error
	stack   string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the error's own Kind and other errors of the same Kind.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Kind:
		return t == e.Kind
	case *Error:
		return t.Kind == e.Kind
	}
	return false
}

// Stack returns the stack trace captured when the error was created.
func (e *Error) Stack() string {
	return e.stack
}

// StatusCode returns the status of the error's kind.
func (e *Error) StatusCode() int {
	return e.Kind.Status
}

// StatusCode resolves the status of the first error in err's chain that has
// one, and 500 when none does. A nil error is 200.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		return coded.StatusCode()
	}
	return http.StatusInternalServerError
}

// Domain logic errors.
var (
	NullException             = NewKind("NullException", "Value is null", 0)
	ArgumentNullException     = NewKind("ArgumentNullException", "Argument is null", 0)
	InvalidOperationException = NewKind("InvalidOperationException", "Invalid operation", 0)
	InvalidTypeException      = NewKind("InvalidTypeException", "Invalid type", 0)
)

// HTTP-style errors.
var (
	BadRequest       = NewKind("BadRequestException", "Bad request", http.StatusBadRequest)
	Unauthorized     = NewKind("UnauthorizedException", "Unauthorized", http.StatusUnauthorized)
	Forbidden        = NewKind("ForbiddenException", "Forbidden", http.StatusForbidden)
	NotFound         = NewKind("NotFoundException", "Not found", http.StatusNotFound)
	MethodNotAllowed = NewKind("MethodNotAllowedException", "Method not allowed", http.StatusMethodNotAllowed)
	Conflict         = NewKind("ConflictException", "Conflict", http.StatusConflict)
	TooManyRequests  = NewKind("TooManyRequestsException", "Too many requests", http.StatusTooManyRequests)
	InternalServer   = NewKind("InternalServerErrorException", "Internal server error", http.StatusInternalServerError)
	NotImplemented   = NewKind("NotImplementedException", "Not implemented", http.StatusNotImplemented)
	GatewayTimeout   = NewKind("GatewayTimeoutException", "Gateway timeout", http.StatusGatewayTimeout)
)

// File and I/O errors.
var (
	FileNotFound      = NewKind("FileNotFoundException", "File not found", http.StatusNotFound)
	FileRead          = NewKind("FileReadException", "Error reading file", 0)
	FileWrite         = NewKind("FileWriteException", "Error writing file", 0)
	DirectoryNotFound = NewKind("DirectoryNotFoundException", "Directory not found", http.StatusNotFound)
	PermissionDenied  = NewKind("PermissionDeniedException", "Permission denied", http.StatusForbidden)
)
