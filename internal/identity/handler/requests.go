package handler

import (
	"strings"

	"healx/internal/identity/models"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
)

type SignupRequest struct {
	WalletAddress string `json:"wallet_address"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Role          string `json:"role"`

	params models.ProfileParams
}

func (r *SignupRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	wallet, err := id.ParseWalletAddress(strings.TrimSpace(r.WalletAddress))
	if err != nil {
		return err
	}
	role, err := id.ParseRole(strings.TrimSpace(r.Role))
	if err != nil {
		return err
	}
	r.params = models.ProfileParams{
		Wallet: wallet,
		Name:   r.Name,
		Email:  r.Email,
		Phone:  r.Phone,
		Role:   role,
	}
	return nil
}

func (r *SignupRequest) Params() models.ProfileParams {
	return r.params
}

type LoginRequest struct {
	WalletAddress string `json:"wallet_address"`

	wallet id.WalletAddress
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	wallet, err := id.ParseWalletAddress(strings.TrimSpace(r.WalletAddress))
	if err != nil {
		return err
	}
	r.wallet = wallet
	return nil
}

func (r *LoginRequest) Wallet() id.WalletAddress {
	return r.wallet
}
