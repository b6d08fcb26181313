package handler

import (
	"time"

	"healx/internal/identity/models"
	"healx/internal/identity/service"
)

type ProfileResponse struct {
	WalletAddress string    `json:"wallet_address"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
}

type SessionResponse struct {
	User        ProfileResponse `json:"user"`
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

func FromProfile(p *models.Profile) ProfileResponse {
	return ProfileResponse{
		WalletAddress: p.Wallet.String(),
		Name:          p.Name,
		Email:         p.Email,
		Phone:         p.Phone,
		Role:          p.Role.String(),
		CreatedAt:     p.CreatedAt,
	}
}

func FromSession(s *service.Session) *SessionResponse {
	return &SessionResponse{
		User:        FromProfile(s.Profile),
		AccessToken: s.Token,
		TokenType:   "Bearer",
		ExpiresAt:   s.ExpiresAt,
	}
}
