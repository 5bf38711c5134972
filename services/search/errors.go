package search

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRoot      = errors.New("invalid search root")
	ErrInvalidResultCap = errors.New("result cap must be at least 1")
	ErrSearchInProgress = errors.New("a search is already in progress")
	ErrAsyncUnavailable = errors.New("background searches need a request store")
	ErrRequestNotFound  = errors.New("search request not found")
	ErrServiceStopped   = errors.New("search service is shutting down")
	errCapReached       = errors.New("result cap reached")
)

// InvalidRootError is returned before any traversal when the root cannot be walked.
type InvalidRootError struct {
	Path   string
	Reason string
}

func (e *InvalidRootError) Error() string {
	return fmt.Sprintf("invalid search root %s: %s", e.Path, e.Reason)
}

func (e *InvalidRootError) Is(target error) bool {
	return target == ErrInvalidRoot
}
