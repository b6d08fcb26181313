package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"healx/internal/batch/models"
	batchservice "healx/internal/batch/service"
	"healx/internal/batch/store"
	distservice "healx/internal/distribution/service"
	"healx/internal/provenance"
	reviewservice "healx/internal/review/service"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/audit"
	"healx/pkg/platform/audit/publisher"
	auditmemory "healx/pkg/platform/audit/store/memory"
	"healx/pkg/requestcontext"
	"healx/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store    *store.InMemoryStore
	auditLog *auditmemory.InMemoryStore
	service  *Service
	ctx      context.Context
	now      time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	s.auditLog = auditmemory.NewInMemoryStore()
	s.service = New(s.store, WithAuditPublisher(publisher.NewPublisher(s.auditLog)))
	s.now = time.Date(2026, 4, 2, 11, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) seed(batchID id.BatchID) *models.Batch {
	b, err := models.NewBatch(models.BatchParams{
		ID:                 batchID,
		DrugName:           "Paracetamol",
		Manufacturer:       "Acme Pharma",
		ManufactureDate:    s.now.AddDate(0, -1, 0),
		ExpiryDate:         s.now.AddDate(2, 0, 0),
		Quantity:           250,
		ProducerWallet:     "PRODUCER-1",
		RegistrationMarker: "REG-" + batchID.String(),
	}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateBatch(s.ctx, b))
	return b
}

func (s *ServiceSuite) TestVerifyPendingBatch() {
	s.seed("B-1")

	report, err := s.service.Verify(s.ctx, "B-1", models.MethodManual)
	s.Require().NoError(err)

	s.False(report.IsAuthentic)
	s.Equal(models.StatusPending, report.Batch.Status)
	s.Nil(report.Approval)
	s.Empty(report.Events)
}

func (s *ServiceSuite) TestVerifyMissingBatch() {
	report, err := s.service.Verify(s.ctx, "NOPE", models.MethodQRScan)
	s.Nil(report)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal("medicine not found", dErrors.MessageOf(err))
	s.Empty(s.store.Verifications("NOPE"))
}

func (s *ServiceSuite) TestVerifyRecordsEveryCall() {
	s.seed("B-1")
	ctx := requestcontext.WithClientMetadata(s.ctx, "10.0.0.1", "")

	first, err := s.service.Verify(ctx, "B-1", models.MethodQRScan)
	s.Require().NoError(err)
	second, err := s.service.Verify(ctx, "B-1", models.MethodManual)
	s.Require().NoError(err)

	s.Equal(first.IsAuthentic, second.IsAuthentic)
	s.Equal(first.Batch, second.Batch)

	records := s.store.Verifications("B-1")
	s.Require().Len(records, 2)
	s.Equal(models.MethodQRScan, records[0].Method)
	s.Equal(models.MethodManual, records[1].Method)
	s.Equal("Unknown Device", records[0].Client)
	s.Equal(s.now, records[0].RecordedAt)

	events, _ := s.auditLog.ListByBatch(s.ctx, "B-1")
	s.Require().Len(events, 2)
	s.Equal(audit.EventBatchVerified.String(), events[0].Action)
	s.Equal("qr_scan", events[0].Detail)
}

func (s *ServiceSuite) TestVerifyToleratesRecordFailure() {
	s.seed("B-1")
	svc := New(failingRecords{s.store})

	report, err := svc.Verify(s.ctx, "B-1", models.MethodQRScan)
	s.Require().NoError(err)
	s.Equal(id.BatchID("B-1"), report.Batch.ID)
}

func (s *ServiceSuite) approve(batchID id.BatchID) {
	approval, err := models.NewApproval(batchID, "REGULATOR-1", models.Approved{ComplianceScore: 90}, "APR-"+batchID.String(), s.now)
	s.Require().NoError(err)
	_, err = s.store.DecideIfPending(s.ctx, approval)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestVerifyRereadsAcrossADecision() {
	s.seed("B-1")
	s.approve("B-1")
	stale := &staleBatch{InMemoryStore: s.store, reads: 1}
	svc := New(stale)

	report, err := svc.Verify(s.ctx, "B-1", models.MethodQRScan)
	s.Require().NoError(err)

	s.Equal(2, stale.calls, "the torn first read is discarded")
	s.Equal(models.StatusApproved, report.Batch.Status)
	s.Require().NotNil(report.Approval)
	s.True(report.IsAuthentic)
}

func (s *ServiceSuite) TestVerifyGivesUpOnPersistentlyTornReads() {
	s.seed("B-1")
	s.approve("B-1")
	svc := New(&staleBatch{InMemoryStore: s.store, reads: maxReadAttempts})

	report, err := svc.Verify(s.ctx, "B-1", models.MethodQRScan)
	s.Nil(report)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Empty(s.store.Verifications("B-1"))
}

func (s *ServiceSuite) TestVerifyLabelsBots() {
	s.Equal("bot", clientLabel("Googlebot/2.1 (+http://www.google.com/bot.html)"))
	s.Equal("Unknown Device", clientLabel(""))
}

type failingRecords struct {
	*store.InMemoryStore
}

func (failingRecords) AppendVerification(context.Context, *models.VerificationRecord) error {
	return errors.New("disk full")
}

// staleBatch serves the batch as it was before its decision for the first
// reads calls, as if the decision landed between the concurrent reads.
type staleBatch struct {
	*store.InMemoryStore
	reads int

	mu    sync.Mutex
	calls int
}

func (s *staleBatch) FindBatch(ctx context.Context, batchID id.BatchID) (*models.Batch, error) {
	s.mu.Lock()
	s.calls++
	calls := s.calls
	s.mu.Unlock()

	b, err := s.InMemoryStore.FindBatch(ctx, batchID)
	if err != nil || calls > s.reads {
		return b, err
	}
	before := *b
	before.Status = models.StatusPending
	return &before, nil
}

// TestBatchLifecycle drives a batch from registration to distribution and
// checks what a consumer sees at each step.
func TestBatchLifecycle(t *testing.T) {
	signer, err := provenance.GenerateLocalSigner()
	require.NoError(t, err)
	attestor := provenance.NewAttestor(
		provenance.NewNotary(signer, signer.Address()),
		provenance.NewMemoryReplayGuard(0),
	)
	batches := store.NewInMemoryStore()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	registry := batchservice.New(batches, attestor)
	review := reviewservice.New(batches, attestor)
	ledger := distservice.New(batches, attestor)
	verifier := New(batches)

	testutil.Given(t, "a freshly registered batch", func(t *testing.T) {
		_, err := registry.Register(ctx, models.BatchParams{
			ID:              "LOT-42",
			DrugName:        "Metformin",
			Manufacturer:    "Acme Pharma",
			ManufactureDate: now.AddDate(0, -1, 0),
			ExpiryDate:      now.AddDate(3, 0, 0),
			Quantity:        1200,
			ProducerWallet:  "PRODUCER-1",
		}, "")
		require.NoError(t, err)

		testutil.Then(t, "verification reports it pending and not authentic", func(t *testing.T) {
			report, err := verifier.Verify(ctx, "LOT-42", models.MethodQRScan)
			require.NoError(t, err)
			assert.False(t, report.IsAuthentic)
			assert.Equal(t, models.StatusPending, report.Batch.Status)
			assert.Empty(t, report.Events)
		})
	})

	testutil.When(t, "a regulator approves it", func(t *testing.T) {
		score := 90
		_, err := review.Decide(ctx, reviewservice.DecideCommand{
			BatchID:         "LOT-42",
			Regulator:       "REGULATOR-1",
			Status:          models.StatusApproved,
			ComplianceScore: &score,
		})
		require.NoError(t, err)

		testutil.Then(t, "verification reports it authentic", func(t *testing.T) {
			report, err := verifier.Verify(ctx, "LOT-42", models.MethodQRScan)
			require.NoError(t, err)
			assert.True(t, report.IsAuthentic)
			require.NotNil(t, report.Approval)
			assert.Equal(t, &score, report.Approval.ComplianceScore())
		})

		testutil.Then(t, "a second decision is refused", func(t *testing.T) {
			_, err := review.Decide(ctx, reviewservice.DecideCommand{
				BatchID:         "LOT-42",
				Regulator:       "REGULATOR-2",
				Status:          models.StatusRejected,
				RejectionReason: "late objection",
			})
			assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyReviewed))
		})
	})

	testutil.When(t, "a distributor logs a transfer", func(t *testing.T) {
		_, err := ledger.LogTransfer(ctx, distservice.TransferCommand{
			BatchID:  "LOT-42",
			Sender:   "PRODUCER-1",
			Receiver: "PHARMACY-1",
			Location: "Pune warehouse",
			Marker:   "TX-LOT42-1",
		})
		require.NoError(t, err)

		testutil.Then(t, "the report lists exactly that event", func(t *testing.T) {
			report, err := verifier.Verify(ctx, "LOT-42", models.MethodManual)
			require.NoError(t, err)
			require.Len(t, report.Events, 1)
			assert.Equal(t, models.EventTypeTransfer, report.Events[0].EventType)
			assert.Equal(t, "Pune warehouse", report.Events[0].Location)
		})
	})

	assert.Len(t, batches.Verifications("LOT-42"), 3)
}
