package handler_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"healx/internal/batch/handler"
	"healx/internal/batch/handler/mocks"
	"healx/internal/batch/models"
	"healx/internal/batch/service"
	"healx/internal/batch/store"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/testutil"
)

func newRouter(t *testing.T) (*mocks.MockService, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	h := handler.New(svc, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	r := chi.NewRouter()
	h.Register(r)
	return svc, r
}

func sampleBatch() *models.Batch {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &models.Batch{
		ID:                 "B-1",
		DrugName:           "Amoxicillin",
		Manufacturer:       "Acme Pharma",
		ManufactureDate:    time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		ExpiryDate:         time.Date(2028, 1, 10, 0, 0, 0, 0, time.UTC),
		Quantity:           500,
		ProducerWallet:     "PRODUCER-1",
		Status:             models.StatusPending,
		RegistrationMarker: "PAYTX-1",
		AppID:              "APP_42",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func registerBody() map[string]any {
	return map[string]any{
		"batchId":         "B-1",
		"drugName":        "Amoxicillin",
		"manufacturer":    "Acme Pharma",
		"manufactureDate": "2026-01-10",
		"expiryDate":      "2028-01-10",
		"quantity":        500,
		"paymentTxId":     "PAYTX-1",
	}
}

func TestHandleRegisterMedicine(t *testing.T) {
	t.Run("registers for the session producer", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().
			Register(gomock.Any(), gomock.Any(), "PAYTX-1").
			DoAndReturn(func(_ context.Context, p models.BatchParams, _ string) (*service.Registration, error) {
				assert.Equal(t, id.BatchID("B-1"), p.ID)
				assert.Equal(t, id.WalletAddress("PRODUCER-1"), p.ProducerWallet)
				assert.Equal(t, 500, p.Quantity)
				return &service.Registration{Batch: sampleBatch(), QRCodeImage: "data:image/png;base64,AAA"}, nil
			})

		req := testutil.WithSession(testutil.NewJSONRequest(t, http.MethodPost, "/functions/register-medicine", registerBody()), "PRODUCER-1", id.RoleProducer)
		rr := testutil.DoRequest(router, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := testutil.UnmarshalResponse[handler.RegisterMedicineResponse](t, rr)
		assert.True(t, resp.Success)
		assert.Equal(t, "PAYTX-1", resp.TransactionHash)
		assert.Equal(t, "APP_42", resp.AppID)
		assert.Equal(t, "B-1", resp.Medicine.BatchID)
		assert.Equal(t, "2028-01-10", resp.Medicine.ExpiryDate)
		assert.Equal(t, "pending", resp.Medicine.Status)
	})

	t.Run("wrong role is forbidden", func(t *testing.T) {
		_, router := newRouter(t)
		req := testutil.WithSession(testutil.NewJSONRequest(t, http.MethodPost, "/functions/register-medicine", registerBody()), "DIST-1", id.RoleDistributor)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	t.Run("body wallet must match the session", func(t *testing.T) {
		_, router := newRouter(t)
		body := registerBody()
		body["producerWallet"] = "PRODUCER-2"
		req := testutil.WithSession(testutil.NewJSONRequest(t, http.MethodPost, "/functions/register-medicine", body), "PRODUCER-1", id.RoleProducer)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "forbidden")
	})

	t.Run("validation failures answer 400", func(t *testing.T) {
		cases := map[string]func(map[string]any){
			"missing batch id":  func(b map[string]any) { delete(b, "batchId") },
			"bad date":          func(b map[string]any) { b["expiryDate"] = "10/01/2028" },
			"zero quantity":     func(b map[string]any) { b["quantity"] = 0 },
			"missing drug name": func(b map[string]any) { b["drugName"] = "  " },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				_, router := newRouter(t)
				body := registerBody()
				mutate(body)
				req := testutil.WithSession(testutil.NewJSONRequest(t, http.MethodPost, "/functions/register-medicine", body), "PRODUCER-1", id.RoleProducer)
				rr := testutil.DoRequest(router, req)
				assert.Equal(t, http.StatusBadRequest, rr.Code)
			})
		}
	})

	t.Run("service errors answer 400 with their code", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeDuplicateBatch, "batch id is already registered"))

		req := testutil.WithSession(testutil.NewJSONRequest(t, http.MethodPost, "/functions/register-medicine", registerBody()), "PRODUCER-1", id.RoleProducer)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "duplicate_batch")
	})
}

func TestHandleGetBatch(t *testing.T) {
	svc, router := newRouter(t)
	svc.EXPECT().Get(gomock.Any(), id.BatchID("B-1")).Return(sampleBatch(), nil)
	svc.EXPECT().Get(gomock.Any(), id.BatchID("B-9")).Return(nil, dErrors.New(dErrors.CodeNotFound, "medicine batch not found"))

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/batches/B-1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[handler.MedicineResponse](t, rr)
	assert.Equal(t, "PAYTX-1", resp.BlockchainTxHash)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/batches/B-9", nil))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestHandleListBatches(t *testing.T) {
	svc, router := newRouter(t)
	svc.EXPECT().
		List(gomock.Any(), store.ListFilter{Status: models.StatusPending, Producer: "PRODUCER-1", Limit: 5}).
		Return([]*models.Batch{sampleBatch()}, nil)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/batches?status=pending&producer=PRODUCER-1&limit=5", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[handler.ListMedicinesResponse](t, rr)
	assert.Equal(t, 1, resp.Total)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/batches?status=shipped", nil))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
}
