package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrTransport      = errors.New("upstream transport failure")
	ErrUpstreamStatus = errors.New("upstream returned non-success status")
	ErrDecode         = errors.New("upstream payload could not be decoded")
)

// FetchError describes one failed upstream call. Kind is one of ErrTransport,
// ErrUpstreamStatus, ErrDecode or ErrDependencyUnavailable.
type FetchError struct {
	Kind       error
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Kind)
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" (status=%d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsFetchFailure reports whether err came from an upstream call rather than
// from input validation or caller cancellation.
func IsFetchFailure(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}
