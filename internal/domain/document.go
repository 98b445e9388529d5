package domain

import "time"

// Status represents the lifecycle stage of a document.
type Status string

const (
	StatusInitiated  Status = "INITIATED"
	StatusQueued     Status = "QUEUED"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// allowedTransitions is the single source of truth for status changes.
// COMPLETED and FAILED are terminal and have no outgoing transitions.
var allowedTransitions = map[Status][]Status{
	StatusInitiated:  {StatusQueued},
	StatusQueued:     {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusCompleted:  {},
	StatusFailed:     {},
}

// EnsureTransition validates that moving from the current status to the
// target status is allowed. Every status change in the system goes through
// this check before anything is persisted.
func EnsureTransition(from, to Status) error {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &TransitionError{From: from, To: to}
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(s Status) bool {
	return len(allowedTransitions[s]) == 0
}

// Document is the persisted record for one uploaded file.
type Document struct {
	ID          string
	Filename    string
	ContentType string
	ObjectKey   string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastError   string
}

// WithStatus returns a copy of the document moved to the given status with
// UpdatedAt bumped. The receiver is left untouched so callers can diff old
// and new state.
func (d Document) WithStatus(status Status, now time.Time) Document {
	d.Status = status
	d.UpdatedAt = now
	return d
}

// WithFailure returns a copy of the document moved to FAILED with the
// failure message recorded in LastError.
func (d Document) WithFailure(message string, now time.Time) Document {
	d.Status = StatusFailed
	d.LastError = message
	d.UpdatedAt = now
	return d
}
