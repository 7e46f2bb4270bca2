package domain

import "time"

// KeywordStatus is the lifecycle state of a categorization keyword.
// "categorizing" is transient: exactly one lifecycle job run resolves it to
// active or failed.
type KeywordStatus string

const (
	KeywordCategorizing KeywordStatus = "categorizing"
	KeywordActive       KeywordStatus = "active"
	KeywordFailed       KeywordStatus = "failed"
)

// CanTransitionTo reports whether moving from s to next is a legal transition.
// A failed keyword may still resolve to active when the lifecycle job retries.
func (s KeywordStatus) CanTransitionTo(next KeywordStatus) bool {
	switch s {
	case KeywordCategorizing, KeywordFailed:
		return next == KeywordActive || next == KeywordFailed
	case KeywordActive:
		return false
	}
	return false
}

// CategoryKeyword is a user-defined matching rule: a substring that assigns
// transactions to a category. CategorizedCount reflects the last completed
// lifecycle job run, not a running total.
type CategoryKeyword struct {
	ID               string
	UserID           string
	CategoryID       string
	Keyword          string
	Status           KeywordStatus
	CategorizedCount int
	FailureReason    string
	CreatedAt        time.Time
}

// Category is a user-owned spending category. Preset categories ship with the
// product; custom ones are user-created. The pipeline only treats categories
// as foreign-key targets.
type Category struct {
	ID     string
	UserID string
	Name   string
	Preset bool
}

// ExcludedKeyword is a user-level suppression rule. It is owned by the CRUD
// API; the automatic categorization path only consumes CategoryKeyword rules.
type ExcludedKeyword struct {
	ID      string
	UserID  string
	Keyword string
}
