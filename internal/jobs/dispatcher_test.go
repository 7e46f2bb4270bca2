package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPublisher struct {
	publishErr error
	published  []*Envelope
}

func (p *stubPublisher) Publish(_ context.Context, job *Envelope) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.published = append(p.published, job)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

func TestDispatchPublishes(t *testing.T) {
	pub := &stubPublisher{}
	inlineCalled := false
	d := NewDispatcher(pub, func(context.Context, *Envelope) error {
		inlineCalled = true
		return nil
	})

	job, err := NewEnvelope(EventProcessStatement, ProcessStatementPayload{StatementID: "st-1"})
	require.NoError(t, err)

	require.NoError(t, d.Dispatch(context.Background(), job))
	assert.Len(t, pub.published, 1)
	assert.False(t, inlineCalled, "inline handler must not run when publish succeeds")
}

func TestDispatchFallsBackInline(t *testing.T) {
	pub := &stubPublisher{publishErr: ErrTransportUnavailable}

	var mu sync.Mutex
	var got *Envelope
	done := make(chan struct{})
	d := NewDispatcher(pub, func(_ context.Context, job *Envelope) error {
		mu.Lock()
		got = job
		mu.Unlock()
		close(done)
		return nil
	})

	job, err := NewEnvelope(EventCategorizeByKeyword, CategorizeByKeywordPayload{KeywordID: "kw-1"})
	require.NoError(t, err)

	// A cancelled caller context must not stop the inline run.
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Dispatch(ctx, job))
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("inline handler was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, EventCategorizeByKeyword, got.Event)
}

func TestDispatchSurfacesOtherErrors(t *testing.T) {
	boom := errors.New("queue rejected job")
	pub := &stubPublisher{publishErr: boom}
	d := NewDispatcher(pub, func(context.Context, *Envelope) error {
		t.Fatal("inline handler must not run for non-transport errors")
		return nil
	})

	job, err := NewEnvelope(EventReassignKeyword, ReassignKeywordPayload{KeywordID: "kw-2"})
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), job)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestNewEnvelopeDefaults(t *testing.T) {
	job, err := NewEnvelope(EventProcessStatement, ProcessStatementPayload{
		StatementID: "st-9",
		UserID:      "u-1",
	})
	require.NoError(t, err)

	assert.Equal(t, JobStatusPending, job.Status)
	assert.False(t, job.CreatedAt.IsZero())
	assert.JSONEq(t,
		`{"statementId":"st-9","userId":"u-1","cardId":"","fileName":"","extractedText":""}`,
		string(job.Payload))
}
