package engine

import (
	"errors"
	"fmt"
)

type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota + 1
	ErrorBadData
	ErrorNetwork
	ErrorAccessDenied
	ErrorNotFound
	ErrorUnsupported
	ErrorCanceled
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorBadData:
		return "bad data"
	case ErrorNetwork:
		return "network failure"
	case ErrorAccessDenied:
		return "access denied"
	case ErrorNotFound:
		return "not found"
	case ErrorUnsupported:
		return "unsupported"
	case ErrorCanceled:
		return "canceled"
	}
	return "unknown failure"
}

// LoadError is an engine reported loading failure.
type LoadError struct {
	Code    ErrorCode
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("error code %d (%v): %s", int(e.Code), e.Code, e.Message)
}

var ErrInvalidFragment = errors.New("invalid fragment id")
