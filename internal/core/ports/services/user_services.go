package services

import (
	"context"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
)

// AuthSvcFacade handles credential verification and JWT issuance.
type AuthSvcFacade interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest) error
}

// UserSvcFacade exposes the user directory.
type UserSvcFacade interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}
