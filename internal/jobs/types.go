package jobs

import (
	"context"
	"encoding/json"
	"time"
)

// EventName identifies what kind of work a job carries.
type EventName string

const (
	// EventProcessStatement runs the extract-and-insert pipeline for an
	// uploaded statement.
	EventProcessStatement EventName = "statement/process"
	// EventCategorizeByKeyword applies a new keyword to a user's
	// uncategorized transactions.
	EventCategorizeByKeyword EventName = "transactions/categorize-by-keyword"
	// EventReassignKeyword re-applies an edited keyword across all of a
	// user's transactions.
	EventReassignKeyword EventName = "transactions/reassign-keyword"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job exhausted its retries.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// ProcessStatementPayload is the body of an EventProcessStatement job.
type ProcessStatementPayload struct {
	StatementID   string `json:"statementId"`
	UserID        string `json:"userId"`
	CardID        string `json:"cardId"`
	FileName      string `json:"fileName"`
	ExtractedText string `json:"extractedText"`
}

// CategorizeByKeywordPayload is the body of an EventCategorizeByKeyword job.
type CategorizeByKeywordPayload struct {
	KeywordID  string `json:"keywordId"`
	UserID     string `json:"userId"`
	Keyword    string `json:"keyword"`
	CategoryID string `json:"categoryId"`
}

// ReassignKeywordPayload is the body of an EventReassignKeyword job.
type ReassignKeywordPayload struct {
	KeywordID     string `json:"keywordId"`
	UserID        string `json:"userId"`
	Keyword       string `json:"keyword"`
	OldCategoryID string `json:"oldCategoryId"`
	NewCategoryID string `json:"newCategoryId"`
}

// Envelope wraps one unit of background work. The payload stays opaque to
// the queue; handlers decode it based on Event.
type Envelope struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"jobId"`

	// Event names the kind of work the payload describes.
	Event EventName `json:"event"`

	// Payload is the event-specific body, decoded by the handler.
	Payload json.RawMessage `json:"payload"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"createdAt"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"startedAt,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retryCount"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"maxRetries"`
}

// NewEnvelope builds a pending envelope for the given event, marshaling the
// payload struct into the envelope body.
func NewEnvelope(event EventName, payload any) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Event:     event,
		Payload:   raw,
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
	}, nil
}

// Publisher defines the interface for publishing jobs to a queue.
// This abstraction allows for different queue implementations (in-memory,
// Cloud Tasks, Pub/Sub).
type Publisher interface {
	// Publish enqueues a job for asynchronous processing.
	Publish(ctx context.Context, job *Envelope) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler Handler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// Handler is a function that processes a job.
// It should return an error if the job failed and should be retried.
type Handler func(ctx context.Context, job *Envelope) error

// JobStore defines the interface for storing and retrieving job status.
// This allows tracking job execution across service restarts.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *Envelope) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*Envelope, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*Envelope, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Event filters jobs by event name.
	Event EventName

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
