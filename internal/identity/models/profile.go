package models

import (
	"strings"
	"time"

	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/email"
)

// Profile binds a wallet to a role and contact details. Profiles are never
// updated once created.
type Profile struct {
	Wallet    id.WalletAddress
	Name      string
	Email     string
	Phone     string
	Role      id.Role
	CreatedAt time.Time
}

type ProfileParams struct {
	Wallet id.WalletAddress
	Name   string
	Email  string
	Phone  string
	Role   id.Role
}

func NewProfile(p ProfileParams, now time.Time) (*Profile, error) {
	name := strings.TrimSpace(p.Name)
	addr := email.Normalize(p.Email)
	phone := strings.TrimSpace(p.Phone)
	switch {
	case p.Wallet.IsNil():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "wallet address is required")
	case name == "":
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "full name is required")
	case addr == "":
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email is required")
	case !email.Valid(addr):
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email is not a valid address")
	case phone == "":
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "phone is required")
	case !p.Role.IsValid():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "role must be producer, regulator or distributor")
	}
	return &Profile{
		Wallet:    p.Wallet,
		Name:      name,
		Email:     addr,
		Phone:     phone,
		Role:      p.Role,
		CreatedAt: now,
	}, nil
}
