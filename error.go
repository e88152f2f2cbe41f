package gocontent

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAuth                  = errors.New("content: credentials rejected")
	ErrCapability            = errors.New("content: operation not supported by storage")
	ErrConfig                = errors.New("content: invalid configuration")
	ErrIO                    = errors.New("content: cannot write destination")
	ErrInvalidDefaultStorage = errors.New("content: invalid default storage")
	ErrInvalidName           = errors.New("content: invalid file name")
	ErrNotFound              = errors.New("content: file not found")
	ErrTransport             = errors.New("content: transport failure")
)

// StatusError carries a non-2xx response from a remote backend.
// It matches ErrAuth for 401/403 and ErrTransport for anything else.
type StatusError struct {
	Backend    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("content: %s responded %d %s", e.Backend, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("content: %s responded %d: %s", e.Backend, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrAuth:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrTransport:
		return e.StatusCode != http.StatusUnauthorized && e.StatusCode != http.StatusForbidden
	}
	return false
}
