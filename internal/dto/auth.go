package dto

import (
	"time"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
)

// LoginRequest authenticates a user by email/password.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"senha" binding:"required"`
}

// LoginResponse carries the issued token and the identity claim the SPA keys on.
type LoginResponse struct {
	Token     string       `json:"access_token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"usuario"`
}

// ChangePasswordRequest rotates the caller's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"senha_atual" binding:"required"`
	NewPassword     string `json:"senha_nova" binding:"required,min=8"`
}

// UserResponse is the wire shape of one user; the password hash never leaves
// the repository layer.
type UserResponse struct {
	UserID    string      `json:"id_usuario"`
	Name      string      `json:"nome"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"papel"`
	CreatedAt time.Time   `json:"criado_em"`
}

// ToUserResponse maps a domain user to its wire shape.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// ToUserResponses maps a slice of domain users.
func ToUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}
