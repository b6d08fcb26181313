package jwttoken

import (
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	authmw "healx/pkg/platform/middleware/auth"
)

// SessionValidatorAdapter exposes JWTService to the session middleware.
type SessionValidatorAdapter struct {
	service *JWTService
}

func NewSessionValidatorAdapter(service *JWTService) *SessionValidatorAdapter {
	return &SessionValidatorAdapter{service: service}
}

func (a *SessionValidatorAdapter) ValidateSession(tokenString string) (*authmw.SessionClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	wallet, err := id.ParseWalletAddress(claims.Wallet)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &authmw.SessionClaims{Wallet: wallet, Role: role}, nil
}
