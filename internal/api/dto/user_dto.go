package dto

import (
	"time"

	"github.com/spec-kit/saas-backend/internal/domain"
)

// UserResponse is the public view of an account. Password hash and the
// encrypted API key never leave the service.
type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	PlanID    string          `json:"plan_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// FromUser maps a domain user to its public view.
func FromUser(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		PlanID:    user.PlanID,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// FromUsers maps a list of accounts.
func FromUsers(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, FromUser(user))
	}
	return out
}

// UpdateUserRequest payload for profile changes.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Username *string `json:"username,omitempty"`
}
