package codes

import (
	"fmt"

	"github.com/jmgilman/go/errors"
)

// Codes returned to method-channel callers.
const (
	InvalidArguments        errors.ErrorCode = "INVALID_ARGUMENTS"
	ActivityNull            errors.ErrorCode = "ACTIVITY_NULL"
	PermissionRequestFailed errors.ErrorCode = "PERMISSION_REQUEST_FAILED"
	SourceNotFound          errors.ErrorCode = "SOURCE_NOT_FOUND"
	DestCreateFailed        errors.ErrorCode = "DEST_CREATE_FAILED"
	DestExists              errors.ErrorCode = "DEST_EXISTS"
	UnsupportedType         errors.ErrorCode = "UNSUPPORTED_TYPE"
	MoveFailed              errors.ErrorCode = "MOVE_FAILED"
	PermissionDenied        errors.ErrorCode = "PERMISSION_DENIED"
	UnknownError            errors.ErrorCode = "UNKNOWN_ERROR"

	ContextNull     errors.ErrorCode = "CONTEXT_NULL"
	PathNotFound    errors.ErrorCode = "PATH_NOT_FOUND"
	UnexpectedError errors.ErrorCode = "UNEXPECTED_ERROR"

	NotImplemented errors.ErrorCode = errors.CodeNotImplemented
)

const detailKey = "detail"

// New returns a coded error with no detail.
func New(code errors.ErrorCode, message string) errors.PlatformError {
	return errors.New(code, message)
}

// WithDetail returns a coded error carrying detail in its context.
func WithDetail(code errors.ErrorCode, message, detail string) errors.PlatformError {
	return errors.WithContext(errors.New(code, message), detailKey, detail)
}

// Wrap attaches code and message to cause. The cause's text becomes the detail.
func Wrap(cause error, code errors.ErrorCode, message string) errors.PlatformError {
	if cause == nil {
		return nil
	}
	return errors.WrapWithContext(cause, code, message, map[string]interface{}{
		detailKey: cause.Error(),
	})
}

// Code returns the code of err, or UnknownError for uncoded errors.
func Code(err error) errors.ErrorCode {
	if c := errors.GetCode(err); c != errors.CodeUnknown {
		return c
	}
	return UnknownError
}

// Message returns the human-readable part of err.
func Message(err error) string {
	var pe errors.PlatformError
	if errors.As(err, &pe) {
		return pe.Message()
	}
	return err.Error()
}

// Detail returns the optional detail string attached to err.
func Detail(err error) string {
	var pe errors.PlatformError
	if !errors.As(err, &pe) {
		return ""
	}
	v, ok := pe.Context()[detailKey]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Is reports whether err carries code.
func Is(err error, code errors.ErrorCode) bool {
	return err != nil && errors.GetCode(err) == code
}

// Coded reports whether err carries any code.
func Coded(err error) bool {
	return errors.GetCode(err) != errors.CodeUnknown
}
