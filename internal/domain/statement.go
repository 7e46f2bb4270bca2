package domain

import "time"

// StatementStatus is the processing state of an uploaded statement.
// Transitions are forward-only: processing -> completed or processing -> failed.
type StatementStatus string

const (
	StatementProcessing StatementStatus = "processing"
	StatementCompleted  StatementStatus = "completed"
	StatementFailed     StatementStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s StatementStatus) Terminal() bool {
	return s == StatementCompleted || s == StatementFailed
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
// A completed statement can never be re-opened; a new upload creates a new
// statement. A failed statement may still reach completed or update its
// failure reason, because the processing job re-runs end to end on each retry.
func (s StatementStatus) CanTransitionTo(next StatementStatus) bool {
	switch s {
	case StatementProcessing, StatementFailed:
		return next == StatementCompleted || next == StatementFailed
	case StatementCompleted:
		return false
	}
	return false
}

// Statement is one uploaded bank/card document and its processing metadata.
type Statement struct {
	ID            string
	UserID        string
	CardID        string
	FileName      string
	FileType      string
	Status        StatementStatus
	FailureReason string
	RetryCount    int
	UploadedAt    time.Time
}
