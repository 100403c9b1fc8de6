package services

import (
	"errors"
	"fmt"
)

// Error taxonomy surfaced to the API layer. The core never recovers
// silently; callers decide whether a failure is retryable.
var (
	ErrInvalidTransition = errors.New("invalid table state transition")
	ErrInvalidMerge      = errors.New("invalid merge request")
	ErrNothingToUnmerge  = errors.New("table has no merged secondaries")
	ErrTableNotFound     = errors.New("table not found")
	ErrRuleNotFound      = errors.New("pricing rule not found")
)

// PersistenceError marks a failed transactional write, as opposed to a
// validation failure, so the caller can distinguish "retry" from "fix
// your input".
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
