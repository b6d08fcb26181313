package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"healx/internal/batch/models"
	"healx/internal/platform/postgres"
	id "healx/pkg/domain"
	"healx/pkg/platform/sentinel"
	txcontext "healx/pkg/platform/tx"
)

// PostgresStore persists the lifecycle tables in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const batchColumns = `batch_id, drug_name, manufacturer, manufacture_date, expiry_date, quantity,
	producer_wallet, status, registration_tx_marker, app_id, qr_code_data, qr_code_hash, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*models.Batch, error) {
	var (
		b      models.Batch
		status string
	)
	err := row.Scan(&b.ID, &b.DrugName, &b.Manufacturer, &b.ManufactureDate, &b.ExpiryDate, &b.Quantity,
		&b.ProducerWallet, &status, &b.RegistrationMarker, &b.AppID, &b.QRCodeData, &b.QRCodeHash,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Status = models.Status(status)
	return &b, nil
}

func (s *PostgresStore) CreateBatch(ctx context.Context, b *models.Batch) error {
	query := `INSERT INTO medicines (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		b.ID, b.DrugName, b.Manufacturer, b.ManufactureDate, b.ExpiryDate, b.Quantity,
		b.ProducerWallet, b.Status, b.RegistrationMarker, b.AppID, b.QRCodeData, b.QRCodeHash,
		b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("batch %s: %w", b.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindBatch(ctx context.Context, batchID id.BatchID) (*models.Batch, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+batchColumns+` FROM medicines WHERE batch_id = $1`, batchID)
	b, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("batch %s: %w", batchID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find batch: %w", err)
	}
	return b, nil
}

func (s *PostgresStore) ListBatches(ctx context.Context, filter ListFilter) ([]*models.Batch, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if !filter.Producer.IsNil() {
		args = append(args, filter.Producer)
		where = append(where, fmt.Sprintf("producer_wallet = $%d", len(args)))
	}
	query := `SELECT ` + batchColumns + ` FROM medicines`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filter.limit())
	query += fmt.Sprintf(` ORDER BY created_at DESC, batch_id LIMIT $%d`, len(args))

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Batch, 0)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DecideIfPending flips status with a conditional update and inserts the
// approval in the same transaction. Zero rows updated means the batch is
// missing or no longer pending.
func (s *PostgresStore) DecideIfPending(ctx context.Context, approval *models.Approval) (*models.Batch, error) {
	var decided *models.Batch
	err := txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		row := s.execer(ctx).QueryRowContext(ctx, `
			UPDATE medicines SET status = $2, updated_at = $3
			WHERE batch_id = $1 AND status = 'pending'
			RETURNING `+batchColumns,
			approval.BatchID, approval.Status(), approval.DecidedAt)
		b, err := scanBatch(row)
		if errors.Is(err, sql.ErrNoRows) {
			return s.guardFailure(ctx, approval.BatchID)
		}
		if err != nil {
			return fmt.Errorf("decide batch: %w", err)
		}

		var reason sql.NullString
		if r := approval.RejectionReason(); r != "" {
			reason = sql.NullString{String: r, Valid: true}
		}
		_, err = s.execer(ctx).ExecContext(ctx, `
			INSERT INTO regulatory_approvals
				(id, batch_id, regulator_wallet, status, compliance_score, rejection_reason, approval_tx_marker, decided_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.UUID(approval.ID), approval.BatchID, approval.RegulatorWallet, approval.Status(),
			approval.ComplianceScore(), reason, approval.Marker, approval.DecidedAt)
		if err != nil {
			if postgres.IsUniqueViolation(err) {
				return fmt.Errorf("approval for %s: %w", approval.BatchID, sentinel.ErrInvalidState)
			}
			return fmt.Errorf("insert approval: %w", err)
		}
		decided = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

// guardFailure distinguishes a missing batch from one in the wrong status.
func (s *PostgresStore) guardFailure(ctx context.Context, batchID id.BatchID) error {
	var status string
	err := s.execer(ctx).QueryRowContext(ctx, `SELECT status FROM medicines WHERE batch_id = $1`, batchID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("batch %s: %w", batchID, sentinel.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check batch status: %w", err)
	}
	return fmt.Errorf("batch %s is %s: %w", batchID, status, sentinel.ErrInvalidState)
}

func (s *PostgresStore) FindApproval(ctx context.Context, batchID id.BatchID) (*models.Approval, error) {
	var (
		a      models.Approval
		rawID  uuid.UUID
		status string
		score  sql.NullInt64
		reason sql.NullString
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, batch_id, regulator_wallet, status, compliance_score, rejection_reason, approval_tx_marker, decided_at
		FROM regulatory_approvals WHERE batch_id = $1`, batchID).
		Scan(&rawID, &a.BatchID, &a.RegulatorWallet, &status, &score, &reason, &a.Marker, &a.DecidedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("approval for %s: %w", batchID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find approval: %w", err)
	}

	var scorePtr *int
	if score.Valid {
		v := int(score.Int64)
		scorePtr = &v
	}
	decision, err := models.DecisionFromRow(status, scorePtr, reason.String)
	if err != nil {
		return nil, fmt.Errorf("decode approval: %w", err)
	}
	a.ID = id.ApprovalID(rawID)
	a.Decision = decision
	return &a, nil
}

// AppendEvent inserts only when the batch is approved; the guard and the
// insert are one statement.
func (s *PostgresStore) AppendEvent(ctx context.Context, event *models.TransferEvent) error {
	err := s.execer(ctx).QueryRowContext(ctx, `
		INSERT INTO supply_chain_events
			(id, batch_id, event_type, sender_wallet, receiver_wallet, location, tx_marker, created_at)
		SELECT $1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text, $7::text, $8::timestamptz
		FROM medicines WHERE batch_id = $2 AND status = 'approved'
		RETURNING seq`,
		uuid.UUID(event.ID), event.BatchID, event.EventType, event.SenderWallet, event.ReceiverWallet,
		event.Location, event.Marker, event.CreatedAt).Scan(&event.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return s.guardFailure(ctx, event.BatchID)
	}
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

const eventColumns = `id, seq, batch_id, event_type, sender_wallet, receiver_wallet, location, tx_marker, created_at`

func (s *PostgresStore) queryEvents(ctx context.Context, query string, args ...any) ([]*models.TransferEvent, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := make([]*models.TransferEvent, 0)
	for rows.Next() {
		var (
			e     models.TransferEvent
			rawID uuid.UUID
		)
		if err := rows.Scan(&rawID, &e.Seq, &e.BatchID, &e.EventType, &e.SenderWallet, &e.ReceiverWallet,
			&e.Location, &e.Marker, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.ID = id.EventID(rawID)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListEvents(ctx context.Context, batchID id.BatchID) ([]*models.TransferEvent, error) {
	return s.queryEvents(ctx, `SELECT `+eventColumns+` FROM supply_chain_events
		WHERE batch_id = $1 ORDER BY created_at ASC, seq ASC`, batchID)
}

func (s *PostgresStore) LastEvent(ctx context.Context, batchID id.BatchID) (*models.TransferEvent, error) {
	events, err := s.queryEvents(ctx, `SELECT `+eventColumns+` FROM supply_chain_events
		WHERE batch_id = $1 ORDER BY created_at DESC, seq DESC LIMIT 1`, batchID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("events for %s: %w", batchID, sentinel.ErrNotFound)
	}
	return events[0], nil
}

func (s *PostgresStore) RecentEvents(ctx context.Context, limit int) ([]*models.TransferEvent, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.queryEvents(ctx, `SELECT `+eventColumns+` FROM supply_chain_events
		ORDER BY created_at DESC, seq DESC LIMIT $1`, limit)
}

func (s *PostgresStore) AppendVerification(ctx context.Context, record *models.VerificationRecord) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO verifications (id, batch_id, method, is_authentic, client, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(record.ID), record.BatchID, record.Method, record.IsAuthentic, record.Client, record.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}
