package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/centimo/centimo/internal/logger"
)

// ErrTransportUnavailable is returned by a Publisher whose backing transport
// cannot be reached. The Dispatcher treats it as a signal to run the job
// inline instead of losing it; any other publish error is surfaced as-is.
var ErrTransportUnavailable = errors.New("jobs: transport unavailable")

// ErrNonRetryable marks handler errors that retrying cannot fix, such as a
// job referencing a row that does not exist. Consumers fail the job
// immediately instead of burning the retry budget.
var ErrNonRetryable = errors.New("jobs: non-retryable")

// NonRetryable wraps err so errors.Is(err, ErrNonRetryable) holds.
func NonRetryable(err error) error {
	return fmt.Errorf("%w: %w", ErrNonRetryable, err)
}

// Dispatcher publishes jobs and falls back to executing them in-process when
// the queue transport is unreachable. The fallback keeps single-instance
// deployments working through queue outages at the cost of retry coverage:
// an inline job runs exactly once.
type Dispatcher struct {
	publisher Publisher
	inline    Handler
}

// NewDispatcher wires a publisher with the handler used for inline fallback.
// The handler is typically the same one the queue consumer runs.
func NewDispatcher(publisher Publisher, inline Handler) *Dispatcher {
	return &Dispatcher{publisher: publisher, inline: inline}
}

// Dispatch publishes the job, or runs it inline when the transport is down.
// Inline execution is fire-and-forget on a context detached from the
// caller's cancellation, so an HTTP request finishing does not kill the job.
func (d *Dispatcher) Dispatch(ctx context.Context, job *Envelope) error {
	err := d.publisher.Publish(ctx, job)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrTransportUnavailable) {
		return fmt.Errorf("Dispatch: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Warn().
		Str("job_id", job.JobID).
		Str("event", string(job.Event)).
		Msg("job transport unavailable, executing inline")

	detached := context.WithoutCancel(ctx)
	go func() {
		if herr := d.inline(detached, job); herr != nil {
			log.Error().
				Err(herr).
				Str("job_id", job.JobID).
				Str("event", string(job.Event)).
				Msg("inline job execution failed")
		}
	}()
	return nil
}
