package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/orcaplan/orcaplan-backend/internal/apperrors"
	portsrepo "github.com/orcaplan/orcaplan-backend/internal/core/ports/repositories"
	portssvc "github.com/orcaplan/orcaplan-backend/internal/core/ports/services"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
	"github.com/orcaplan/orcaplan-backend/internal/middleware"
	"github.com/orcaplan/orcaplan-backend/internal/platform/config"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords, so login responses don't leak which one failed.
var ErrInvalidCredentials = fmt.Errorf("%w: credenciais inválidas", apperrors.ErrUnauthorized)

type authService struct {
	cfg      *config.Config
	userRepo portsrepo.UserRepository
}

// NewAuthService creates a new auth service.
func NewAuthService(cfg *config.Config, userRepo portsrepo.UserRepository) portssvc.AuthSvcFacade {
	return &authService{cfg: cfg, userRepo: userRepo}
}

// Ensure authService implements the portssvc.AuthSvcFacade interface
var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Login verifies the credentials and issues a signed token carrying the
// user's role claim.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user for login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("Login failed", slog.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.cfg.JWTExpiryDuration)
	claims := middleware.AuthClaims{
		Name: user.Name,
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			Issuer:    s.cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	logger.Info("User logged in", slog.String("user_id", user.UserID))
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.ToUserResponse(user),
	}, nil
}

// ChangePassword rotates the caller's own password after re-verifying the
// current one.
func (s *authService) ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return fmt.Errorf("%w: senha atual incorreta", apperrors.ErrForbidden)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
