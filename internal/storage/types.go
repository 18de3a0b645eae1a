package storage

import (
	"errors"
	"fmt"

	"github.com/jefferyharrell/Captioner-backend/internal/config"
)

// Config alias for storage configuration
type Config = config.StorageConfig

// Error codes classifying storage failures
const (
	CodeConfiguration  = "Configuration"
	CodeRemoteAPI      = "RemoteAPI"
	CodeRemoteRequest  = "RemoteRequest"
	CodeNotImplemented = "NotImplemented"
	CodeLocalIO        = "LocalIO"
)

// Common storage errors
var (
	ErrNotImplemented         = NewError(CodeNotImplemented, "operation is not implemented for this backend")
	ErrCaptionsNotSupported   = NewError(CodeNotImplemented, "backend does not support captions")
	ErrCredentialsNotSet      = NewError(CodeConfiguration, "dropbox OAuth credentials are not set")
	ErrAccessTokenUnavailable = NewError(CodeRemoteAPI, "failed to obtain dropbox access token")
)

// StorageError represents a storage-specific error. RemoteAPI errors carry
// the provider's HTTP status and response body verbatim; RemoteRequest
// errors wrap the underlying transport failure so callers can tell the
// plausibly-transient failures apart from status errors.
type StorageError struct {
	Code       string
	Message    string
	StatusCode int
	Body       string
	Cause      error
}

func (e *StorageError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: %d %s", msg, e.StatusCode, e.Body)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewError creates a new storage error
func NewError(code, message string) *StorageError {
	return &StorageError{
		Code:    code,
		Message: message,
	}
}

// NewErrorWithCause creates a new storage error with underlying cause
func NewErrorWithCause(code, message string, cause error) *StorageError {
	return &StorageError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAPIError creates a remote API error carrying the provider's HTTP
// status code and response body.
func NewAPIError(message string, statusCode int, body string) *StorageError {
	return &StorageError{
		Code:       CodeRemoteAPI,
		Message:    message,
		StatusCode: statusCode,
		Body:       body,
	}
}

// IsConfigurationError reports whether err is a configuration failure.
func IsConfigurationError(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Code == CodeConfiguration
}

// IsRemoteAPIError reports whether err is a non-success provider status.
func IsRemoteAPIError(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Code == CodeRemoteAPI
}

// IsRemoteRequestError reports whether err is a transport-level failure.
func IsRemoteRequestError(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Code == CodeRemoteRequest
}

// IsNotImplemented reports whether err is a capability gap.
func IsNotImplemented(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Code == CodeNotImplemented
}

// IsLocalIOError reports whether err is a local filesystem failure.
func IsLocalIOError(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Code == CodeLocalIO
}
