package board

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTitleRequired    = errors.New("title is required")
	ErrTeamRequired     = errors.New("team is required")
	ErrInvalidStatus    = errors.New("status is not a board column")
	ErrInvalidWorkType  = errors.New("work type must be FEATURE, BUG or CHORE")
	ErrInvalidPriority  = errors.New("priority must be HIGH, MEDIUM or LOW")
	ErrInvalidDateRange = errors.New("start date is after due date")
	ErrEmptyPatch       = errors.New("update touches no fields")
	ErrPendingCreate    = errors.New("task is still being created")
)

// ValidationError reports a malformed intent. The cache and the store are untouched.
type ValidationError struct {
	Op     string
	TaskID string
	Errs   []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	if e.TaskID == "" {
		return fmt.Sprintf("%s: invalid intent: %s", e.Op, strings.Join(msgs, "; "))
	}
	return fmt.Sprintf("%s %s: invalid intent: %s", e.Op, e.TaskID, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() []error {
	return e.Errs
}

// PersistenceError reports a rejected store call. By the time it is observed the
// cache has already been rolled back.
type PersistenceError struct {
	Op     string
	TaskID string
	Cause  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: store rejected change: %v", e.Op, e.TaskID, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// NotFoundError reports an intent against a task that is no longer cached.
type NotFoundError struct {
	TaskID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.TaskID)
}

func invalid(op, taskID string, errs ...error) *ValidationError {
	return &ValidationError{Op: op, TaskID: taskID, Errs: errs}
}
