package dto

import (
	"time"

	"github.com/noah-isme/projecthub-api/internal/models"
)

// RegisterRequest creates a student or supervisor account.
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	Role       string `json:"role" validate:"required,oneof=student supervisor"`
	FullName   string `json:"fullName" validate:"required,min=1,max=255"`
	RegNo      string `json:"regNo" validate:"required_if=Role student,max=64"`
	Program    string `json:"program" validate:"omitempty,max=128"`
	Department string `json:"department" validate:"omitempty,max=128"`
}

// LoginRequest exchanges credentials for tokens.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest exchanges a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	FullName   string    `json:"fullName"`
	RegNo      string    `json:"regNo,omitempty"`
	Program    string    `json:"program,omitempty"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AuthResponse carries an issued token pair.
type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TokenType    string       `json:"tokenType"`
	ExpiresAt    time.Time    `json:"expiresAt"`
	User         UserResponse `json:"user"`
}

// NewUserResponse converts an account into its public view.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		Role:       string(user.Role),
		FullName:   user.Profile.FullName,
		RegNo:      user.Profile.RegNo,
		Program:    user.Profile.Program,
		Department: user.Profile.Department,
		CreatedAt:  user.CreatedAt,
	}
}

// SupervisorResponse is a supervisor directory entry.
type SupervisorResponse struct {
	ID         uint   `json:"id"`
	FullName   string `json:"fullName"`
	Department string `json:"department,omitempty"`
}

// NewSupervisorResponseSlice converts supervisor accounts into directory entries.
func NewSupervisorResponseSlice(users []models.User) []SupervisorResponse {
	responses := make([]SupervisorResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, SupervisorResponse{
			ID:         user.ID,
			FullName:   user.Profile.FullName,
			Department: user.Profile.Department,
		})
	}
	return responses
}

// SeedAdminRequest lists administrator accounts to bootstrap.
type SeedAdminRequest struct {
	Items []SeedAdminItem `json:"items" validate:"required,min=1,dive"`
}

// SeedAdminItem is a single administrator to create.
type SeedAdminItem struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"fullName" validate:"required"`
}
