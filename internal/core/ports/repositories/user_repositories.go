package repositories

import (
	"context"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
)

// UserRepository persists the internal users and their role claims.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) error
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
