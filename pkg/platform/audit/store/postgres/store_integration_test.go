//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	audit "healx/pkg/platform/audit"
	auditpostgres "healx/pkg/platform/audit/store/postgres"
	txcontext "healx/pkg/platform/tx"
	"healx/pkg/testutil/containers"
)

var errAbort = errors.New("abort")

type StoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *auditpostgres.Store
}

func TestStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = auditpostgres.New(s.postgres.DB)
}

func (s *StoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "lifecycle_events"))
}

func (s *StoreSuite) count(batchID string) int {
	var n int
	s.Require().NoError(s.postgres.DB.QueryRowContext(context.Background(),
		`SELECT count(*) FROM lifecycle_events WHERE batch_id = $1`, batchID).Scan(&n))
	return n
}

func (s *StoreSuite) TestAppend() {
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		BatchID:     "B-PG",
		Action:      audit.EventBatchRejected.String(),
		ActorWallet: "REG-1",
		Status:      "rejected",
		Detail:      "label mismatch",
		Timestamp:   at,
	}))

	var (
		category, action string
		marker           sql.NullString
		occurredAt       time.Time
	)
	err := s.postgres.DB.QueryRowContext(ctx, `
		SELECT category, action, marker, occurred_at FROM lifecycle_events WHERE batch_id = $1`, "B-PG").
		Scan(&category, &action, &marker, &occurredAt)
	s.Require().NoError(err)
	s.Equal(string(audit.CategoryCompliance), category)
	s.Equal("batch_rejected", action)
	s.False(marker.Valid)
	s.True(at.Equal(occurredAt))
}

func (s *StoreSuite) TestAppendJoinsTransaction() {
	ctx := context.Background()
	event := audit.Event{BatchID: "B-TX", Action: audit.EventTransferLogged.String(), Timestamp: time.Now()}

	err := txcontext.Run(ctx, s.postgres.DB, func(ctx context.Context) error {
		s.Require().NoError(s.store.Append(ctx, event))
		return errAbort
	})
	s.Require().ErrorIs(err, errAbort)
	s.Equal(0, s.count("B-TX"))

	s.Require().NoError(txcontext.Run(ctx, s.postgres.DB, func(ctx context.Context) error {
		return s.store.Append(ctx, event)
	}))
	s.Equal(1, s.count("B-TX"))
}
