package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/centimo/centimo/internal/jobs"
)

// HandleJob routes a queue envelope to the pipeline operation its event
// names. It satisfies jobs.Handler, so the same function serves both the
// queue consumer and the dispatcher's inline fallback.
func (p *Processor) HandleJob(ctx context.Context, job *jobs.Envelope) error {
	switch job.Event {
	case jobs.EventProcessStatement:
		var payload jobs.ProcessStatementPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("HandleJob: decode %s: %w", job.Event, err)
		}
		return p.ProcessStatement(ctx, payload)

	case jobs.EventCategorizeByKeyword:
		var payload jobs.CategorizeByKeywordPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("HandleJob: decode %s: %w", job.Event, err)
		}
		return p.CategorizeByKeyword(ctx, payload)

	case jobs.EventReassignKeyword:
		var payload jobs.ReassignKeywordPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("HandleJob: decode %s: %w", job.Event, err)
		}
		return p.ReassignKeyword(ctx, payload)

	default:
		return fmt.Errorf("HandleJob: unknown event %q", job.Event)
	}
}
