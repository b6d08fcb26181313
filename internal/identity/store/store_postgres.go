package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"healx/internal/identity/models"
	"healx/internal/platform/postgres"
	id "healx/pkg/domain"
	"healx/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (wallet_address, full_name, email, phone, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.Wallet, p.Name, p.Email, p.Phone, p.Role, p.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("profile %s: %w", p.Wallet, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindProfile(ctx context.Context, wallet id.WalletAddress) (*models.Profile, error) {
	var (
		p    models.Profile
		role string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT wallet_address, full_name, email, phone, role, created_at
		FROM profiles WHERE wallet_address = $1`, wallet).
		Scan(&p.Wallet, &p.Name, &p.Email, &p.Phone, &role, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", wallet, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	p.Role = id.Role(role)
	return &p, nil
}
