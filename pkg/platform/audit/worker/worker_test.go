package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "healx/pkg/platform/audit"
	"healx/pkg/platform/audit/store/memory"
)

type failingStore struct{ calls int }

func (f *failingStore) Append(context.Context, audit.Event) error {
	f.calls++
	return errors.New("sink down")
}

func TestWorker_DrainsUntilInboxCloses(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 3)
	inbox <- audit.Event{BatchID: "B-1", Action: audit.EventBatchRegistered.String()}
	inbox <- audit.Event{BatchID: "B-1", Action: audit.EventBatchApproved.String()}
	close(inbox)

	NewWorker(store, inbox, nil).Run(context.Background())

	events, err := store.ListByBatch(context.Background(), "B-1")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestWorker_SkipsFailedAppends(t *testing.T) {
	store := &failingStore{}
	inbox := make(chan audit.Event, 2)
	inbox <- audit.Event{Action: "a"}
	inbox <- audit.Event{Action: "b"}
	close(inbox)

	NewWorker(store, inbox, nil).Run(context.Background())

	assert.Equal(t, 2, store.calls)
}

// stallingStore blocks until the write's context ends.
type stallingStore struct{ calls int }

func (s *stallingStore) Append(ctx context.Context, _ audit.Event) error {
	s.calls++
	<-ctx.Done()
	return ctx.Err()
}

func TestWorker_BoundsEachAppend(t *testing.T) {
	store := &stallingStore{}
	inbox := make(chan audit.Event, 3)
	for range 3 {
		inbox <- audit.Event{Action: "stalled"}
	}
	close(inbox)

	done := make(chan struct{})
	go func() {
		defer close(done)
		NewWorker(store, inbox, nil, WithAppendTimeout(10*time.Millisecond)).Run(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stuck on a stalled store")
	}
	assert.Equal(t, 3, store.calls)
}
