package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"healx/internal/batch/models"
	id "healx/pkg/domain"
	"healx/pkg/platform/sentinel"
)

// InMemoryStore keeps every lifecycle table behind one lock so the status
// guards and the writes they protect happen together.
type InMemoryStore struct {
	mu            sync.RWMutex
	batches       map[id.BatchID]*models.Batch
	approvals     map[id.BatchID]*models.Approval
	events        map[id.BatchID][]*models.TransferEvent
	verifications []*models.VerificationRecord
	seq           int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		batches:   make(map[id.BatchID]*models.Batch),
		approvals: make(map[id.BatchID]*models.Approval),
		events:    make(map[id.BatchID][]*models.TransferEvent),
	}
}

func (s *InMemoryStore) CreateBatch(_ context.Context, b *models.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.batches[b.ID]; ok {
		return fmt.Errorf("batch %s: %w", b.ID, sentinel.ErrAlreadyUsed)
	}
	stored := *b
	s.batches[b.ID] = &stored
	return nil
}

func (s *InMemoryStore) FindBatch(_ context.Context, batchID id.BatchID) (*models.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[batchID]
	if !ok {
		return nil, fmt.Errorf("batch %s: %w", batchID, sentinel.ErrNotFound)
	}
	out := *b
	return &out, nil
}

// ListBatches returns matching batches, newest first.
func (s *InMemoryStore) ListBatches(_ context.Context, filter ListFilter) ([]*models.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Batch, 0)
	for _, b := range s.batches {
		if filter.matches(b) {
			c := *b
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *models.Batch) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(out) > filter.limit() {
		out = out[:filter.limit()]
	}
	return out, nil
}

// DecideIfPending applies the approval's decision when the batch is still
// pending and records the approval. It is a compare-and-set on status.
func (s *InMemoryStore) DecideIfPending(_ context.Context, approval *models.Approval) (*models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[approval.BatchID]
	if !ok {
		return nil, fmt.Errorf("batch %s: %w", approval.BatchID, sentinel.ErrNotFound)
	}
	if b.Status != models.StatusPending {
		return nil, fmt.Errorf("batch %s is %s: %w", b.ID, b.Status, sentinel.ErrInvalidState)
	}
	b.Status = approval.Status()
	b.UpdatedAt = approval.DecidedAt
	stored := *approval
	s.approvals[approval.BatchID] = &stored
	out := *b
	return &out, nil
}

func (s *InMemoryStore) FindApproval(_ context.Context, batchID id.BatchID) (*models.Approval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.approvals[batchID]
	if !ok {
		return nil, fmt.Errorf("approval for %s: %w", batchID, sentinel.ErrNotFound)
	}
	out := *a
	return &out, nil
}

// AppendEvent stores the event if the batch is approved and assigns its Seq.
func (s *InMemoryStore) AppendEvent(_ context.Context, event *models.TransferEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[event.BatchID]
	if !ok {
		return fmt.Errorf("batch %s: %w", event.BatchID, sentinel.ErrNotFound)
	}
	if b.Status != models.StatusApproved {
		return fmt.Errorf("batch %s is %s: %w", b.ID, b.Status, sentinel.ErrInvalidState)
	}
	s.seq++
	event.Seq = s.seq
	stored := *event
	s.events[event.BatchID] = append(s.events[event.BatchID], &stored)
	return nil
}

// ListEvents returns the batch's events oldest first.
func (s *InMemoryStore) ListEvents(_ context.Context, batchID id.BatchID) ([]*models.TransferEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := cloneEvents(s.events[batchID])
	slices.SortStableFunc(out, compareEvents)
	return out, nil
}

func (s *InMemoryStore) LastEvent(ctx context.Context, batchID id.BatchID) (*models.TransferEvent, error) {
	events, err := s.ListEvents(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("events for %s: %w", batchID, sentinel.ErrNotFound)
	}
	return events[len(events)-1], nil
}

// RecentEvents returns the newest events across all batches, newest first.
func (s *InMemoryStore) RecentEvents(_ context.Context, limit int) ([]*models.TransferEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []*models.TransferEvent
	for _, events := range s.events {
		all = append(all, cloneEvents(events)...)
	}
	slices.SortFunc(all, func(a, b *models.TransferEvent) int { return compareEvents(b, a) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *InMemoryStore) AppendVerification(_ context.Context, record *models.VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *record
	s.verifications = append(s.verifications, &stored)
	return nil
}

// Verifications returns the audit rows for a batch in insertion order.
func (s *InMemoryStore) Verifications(batchID id.BatchID) []*models.VerificationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.VerificationRecord
	for _, v := range s.verifications {
		if v.BatchID == batchID {
			c := *v
			out = append(out, &c)
		}
	}
	return out
}

func cloneEvents(events []*models.TransferEvent) []*models.TransferEvent {
	out := make([]*models.TransferEvent, 0, len(events))
	for _, e := range events {
		c := *e
		out = append(out, &c)
	}
	return out
}

func compareEvents(a, b *models.TransferEvent) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.Seq, b.Seq)
}


