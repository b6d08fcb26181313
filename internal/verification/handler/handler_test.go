package handler_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"healx/internal/batch/models"
	"healx/internal/verification/handler"
	"healx/internal/verification/handler/mocks"
	"healx/internal/verification/service"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/testutil"
)

func newRouter(t *testing.T) (*mocks.MockService, http.Handler) {
	t.Helper()
	svc := mocks.NewMockService(gomock.NewController(t))
	h := handler.New(svc, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	r := chi.NewRouter()
	h.Register(r)
	return svc, r
}

func approvedReport() *service.Report {
	at := time.Date(2026, 4, 2, 11, 0, 0, 0, time.UTC)
	return &service.Report{
		Batch: &models.Batch{
			ID:                 "B-1",
			DrugName:           "Paracetamol",
			Manufacturer:       "Acme Pharma",
			ExpiryDate:         time.Date(2028, 4, 1, 0, 0, 0, 0, time.UTC),
			Quantity:           250,
			Status:             models.StatusApproved,
			RegistrationMarker: "REG-1",
		},
		Approval: &models.Approval{
			ID:       id.ApprovalID(uuid.New()),
			BatchID:  "B-1",
			Decision: models.Approved{ComplianceScore: 95},
			Marker:   "APPROVAL-1",
		},
		Events: []*models.TransferEvent{{
			ID:        id.EventID(uuid.New()),
			BatchID:   "B-1",
			EventType: models.EventTypeTransfer,
			Location:  "Delhi",
			Marker:    "TX-1",
			CreatedAt: at,
		}},
		IsAuthentic: true,
	}
}

func verify(t *testing.T, body map[string]any) *http.Request {
	return testutil.NewJSONRequest(t, http.MethodPost, "/functions/verify-medicine", body)
}

func TestHandleVerifyMedicine(t *testing.T) {
	t.Run("returns the report without a session", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Verify(gomock.Any(), id.BatchID("B-1"), models.MethodQRScan).Return(approvedReport(), nil)

		rr := testutil.DoRequest(router, verify(t, map[string]any{"batchId": "B-1"}))

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := testutil.UnmarshalResponse[handler.VerificationResponse](t, rr)
		assert.True(t, resp.IsAuthentic)
		assert.Equal(t, "approved", resp.Status)
		assert.Equal(t, "2028-04-01", resp.ExpiryDate)
		assert.Equal(t, "REG-1", resp.RegistrationTxHash)
		assert.Equal(t, "APPROVAL-1", resp.ApprovalTxHash)
		require.Len(t, resp.SupplyChainEvents, 1)
		assert.Equal(t, "TX-1", resp.SupplyChainEvents[0].BlockchainTxHash)
	})

	t.Run("accepts the raw QR payload", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Verify(gomock.Any(), id.BatchID("B-1"), models.MethodManual).Return(approvedReport(), nil)

		rr := testutil.DoRequest(router, verify(t, map[string]any{
			"batchId": `{"batchId":"B-1","drugName":"Paracetamol","manufacturer":"Acme Pharma","timestamp":"2026-04-02T11:00:00.000Z"}`,
			"method":  "manual",
		}))

		assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	})

	t.Run("omits the approval hash while pending", func(t *testing.T) {
		svc, router := newRouter(t)
		report := approvedReport()
		report.Approval = nil
		report.Events = nil
		report.IsAuthentic = false
		report.Batch.Status = models.StatusPending
		svc.EXPECT().Verify(gomock.Any(), id.BatchID("B-1"), models.MethodQRScan).Return(report, nil)

		rr := testutil.DoRequest(router, verify(t, map[string]any{"batchId": "B-1"}))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, rr.Body.String(), "approvalTxHash")
		assert.Contains(t, rr.Body.String(), `"supplyChainEvents":[]`)
	})

	t.Run("requires a batch id", func(t *testing.T) {
		_, router := newRouter(t)

		rr := testutil.DoRequest(router, verify(t, map[string]any{"batchId": "  "}))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	t.Run("rejects an unknown method", func(t *testing.T) {
		_, router := newRouter(t)

		rr := testutil.DoRequest(router, verify(t, map[string]any{"batchId": "B-1", "method": "nfc"}))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	t.Run("reports an unknown batch as a failed action", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Verify(gomock.Any(), id.BatchID("GHOST"), models.MethodQRScan).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "medicine not found"))

		rr := testutil.DoRequest(router, verify(t, map[string]any{"batchId": "GHOST"}))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeNotFound))
	})
}
