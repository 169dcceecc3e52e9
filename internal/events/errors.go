package events

import (
	"errors"
	"os"
	"syscall"
)

// ErrorCode represents hub connection error types.
type ErrorCode int

const (
	ErrSocketNotFound ErrorCode = iota
	ErrSocketPermission
	ErrHubNotRunning
	ErrConnectionRefused
)

// ConnectionError is a structured hub connection error with a hint for
// the operator.
type ConnectionError struct {
	Code    ErrorCode
	Message string
	Hint    string
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	if e.Hint != "" {
		return e.Message + ". " + e.Hint
	}
	return e.Message
}

// ClassifyConnectionError maps common socket errors to structured
// ConnectionError values.
func ClassifyConnectionError(err error) *ConnectionError {
	if err == nil {
		return nil
	}

	if os.IsNotExist(err) {
		return &ConnectionError{
			Code:    ErrSocketNotFound,
			Message: "Socket file not found",
			Hint:    "Start the hub: taskwelld",
		}
	}

	if os.IsPermission(err) {
		return &ConnectionError{
			Code:    ErrSocketPermission,
			Message: "Permission denied",
			Hint:    "Check data directory permissions",
		}
	}

	var errno syscall.Errno
	if errors.As(err, &errno) && errno == syscall.ECONNREFUSED {
		return &ConnectionError{
			Code:    ErrConnectionRefused,
			Message: "Connection refused",
			Hint:    "The hub may have crashed. Restart: taskwelld",
		}
	}

	return &ConnectionError{
		Code:    ErrHubNotRunning,
		Message: "Notification hub not running",
		Hint:    "Start the hub: taskwelld",
	}
}
