package failover

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "healx/pkg/platform/audit"
	"healx/pkg/platform/audit/store/memory"
	"healx/pkg/platform/circuit"
)

type flakyStore struct {
	err   error
	calls int
}

func (f *flakyStore) Append(context.Context, audit.Event) error {
	f.calls++
	return f.err
}

func TestSink_UsesPrimaryWhenHealthy(t *testing.T) {
	primary := memory.NewInMemoryStore()
	fallback := memory.NewInMemoryStore()
	sink := NewSink(primary, fallback, circuit.New("kafka"), nil)

	require.NoError(t, sink.Append(context.Background(), audit.Event{BatchID: "B-1", Action: "batch_registered"}))

	got, _ := primary.ListByBatch(context.Background(), "B-1")
	assert.Len(t, got, 1)
	got, _ = fallback.ListByBatch(context.Background(), "B-1")
	assert.Empty(t, got)
}

func TestSink_FallsBackAndOpens(t *testing.T) {
	primary := &flakyStore{err: errors.New("broker down")}
	fallback := memory.NewInMemoryStore()
	breaker := circuit.New("kafka", circuit.WithFailureThreshold(2))
	sink := NewSink(primary, fallback, breaker, nil)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, sink.Append(ctx, audit.Event{BatchID: "B-1"}))
	}

	assert.True(t, breaker.IsOpen())
	got, _ := fallback.ListByBatch(ctx, "B-1")
	assert.Len(t, got, 3)
}

func TestSink_SkipsPrimaryWhileOpen(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	primary := &flakyStore{err: errors.New("broker down")}
	fallback := memory.NewInMemoryStore()
	breaker := circuit.New("kafka",
		circuit.WithFailureThreshold(1),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }))
	sink := NewSink(primary, fallback, breaker, nil)
	ctx := context.Background()

	for range 5 {
		require.NoError(t, sink.Append(ctx, audit.Event{BatchID: "B-1"}))
	}

	assert.Equal(t, 1, primary.calls, "an open circuit must not touch the primary")
	got, _ := fallback.ListByBatch(ctx, "B-1")
	assert.Len(t, got, 5)
}

func TestSink_RecoversThroughHalfOpenTrials(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	primary := &flakyStore{err: errors.New("broker down")}
	fallback := memory.NewInMemoryStore()
	breaker := circuit.New("kafka",
		circuit.WithFailureThreshold(1),
		circuit.WithSuccessThreshold(2),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }))
	sink := NewSink(primary, fallback, breaker, nil)
	ctx := context.Background()

	_ = sink.Append(ctx, audit.Event{BatchID: "B-1"})
	require.True(t, breaker.IsOpen())

	primary.err = nil
	_ = sink.Append(ctx, audit.Event{BatchID: "B-1"})
	assert.Equal(t, 1, primary.calls, "still cooling down")

	now = now.Add(time.Minute)
	_ = sink.Append(ctx, audit.Event{BatchID: "B-1"})
	_ = sink.Append(ctx, audit.Event{BatchID: "B-1"})
	assert.Equal(t, 3, primary.calls)
	assert.False(t, breaker.IsOpen())
}

func TestSink_FallbackIgnoresExpiredDeadline(t *testing.T) {
	primary := &flakyStore{err: context.DeadlineExceeded}
	fallback := &ctxStore{}
	sink := NewSink(primary, fallback, circuit.New("kafka"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, sink.Append(ctx, audit.Event{BatchID: "B-1"}))
	assert.Equal(t, 1, fallback.calls)
}

// ctxStore fails like a real store would once its context is done.
type ctxStore struct{ calls int }

func (c *ctxStore) Append(ctx context.Context, _ audit.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.calls++
	return nil
}

func TestFanout_ReturnsFirstError(t *testing.T) {
	a := memory.NewInMemoryStore()
	bad := &flakyStore{err: errors.New("nope")}
	err := Fanout{a, bad}.Append(context.Background(), audit.Event{BatchID: "B-1"})
	assert.EqualError(t, err, "nope")
	got, _ := a.ListByBatch(context.Background(), "B-1")
	assert.Len(t, got, 1)
}
