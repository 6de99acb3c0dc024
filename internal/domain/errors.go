package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrSessionNotActive      = errors.New("session is not active")
	ErrSessionFinished       = errors.New("session is already finished")
	ErrNoConversationHistory = errors.New("session has no conversation history")
	ErrDuplicateMessage      = errors.New("identical message sent twice in a row")
	ErrReportExists          = errors.New("report already exists for session")
	ErrReportNotFound        = errors.New("report not found")
)

// CollaboratorError wraps a failure of one of the external LLM
// collaborators with enough context for the host to retry or display.
type CollaboratorError struct {
	Collaborator string // "judgment", "customer", "rubric", "sentiment"
	SessionID    SessionID
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s collaborator failed for session %s: %v", e.Collaborator, e.SessionID, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
