package postgres

import (
	"context"
	"database/sql"
	"fmt"

	audit "healx/pkg/platform/audit"
	txcontext "healx/pkg/platform/tx"

	"github.com/google/uuid"
)

// Store appends lifecycle events to the lifecycle_events table. When the
// caller's context carries a transaction the insert joins it, so an event can
// commit atomically with the state change it describes.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO lifecycle_events (
			id, category, action, batch_id, actor_wallet,
			status, marker, detail, request_id, occurred_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(audit.AuditEvent(event.Action).Category()),
		event.Action,
		nullIfEmpty(event.BatchID.String()),
		nullIfEmpty(event.ActorWallet.String()),
		nullIfEmpty(event.Status),
		nullIfEmpty(event.Marker),
		nullIfEmpty(event.Detail),
		nullIfEmpty(event.RequestID),
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert lifecycle event: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
